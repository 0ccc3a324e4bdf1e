package database

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/koustreak/sqlbrowser/internal/dialect"
)

// Driver opens connections for one engine. Engine packages register a
// Driver from init, the same way database/sql drivers register themselves:
//
//	import _ "github.com/koustreak/sqlbrowser/internal/database/mysql"
type Driver struct {
	// Connect opens a handle for p, whose host has already been normalized
	// by policy. The returned release func undoes any driver-level
	// registration made for the handle; it is called after the handle is closed.
	Connect func(ctx context.Context, p Params, policy dialect.Policy) (db *sql.DB, release func(), err error)

	// Describe returns driver-specific fields (error codes, SQLSTATE) for
	// logging. It may be nil.
	Describe func(err error) map[string]interface{}
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[dialect.Driver]Driver)
)

// Register makes an engine available to every Session. Registering the same
// engine twice replaces the earlier Driver.
func Register(d dialect.Driver, drv Driver) {
	if drv.Connect == nil {
		panic("database: Register with nil Connect for " + string(d))
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d] = drv
}

func lookupDriver(d dialect.Driver) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	drv, ok := drivers[d]
	return drv, ok
}

// Engines lists the engines with a registered Driver, sorted by name.
func Engines() []dialect.Driver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	out := make([]dialect.Driver, 0, len(drivers))
	for d := range drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Drivers lists the low-level database/sql drivers linked into the process.
// Filtering them for presentation is up to the caller (see dialect.Supported).
func Drivers() []string {
	return sql.Drivers()
}
