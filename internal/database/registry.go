package database

import (
	"sort"
	"sync"
)

// registry tracks the live handle of every open Session, keyed by the
// session's connection name. A name is present exactly while its session
// is open.
var registry = struct {
	sync.Mutex
	names map[string]struct{}
}{names: make(map[string]struct{})}

func register(name string) {
	registry.Lock()
	defer registry.Unlock()
	registry.names[name] = struct{}{}
}

func unregister(name string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.names, name)
}

// IsRegistered reports whether a connection is currently registered under name.
func IsRegistered(name string) bool {
	registry.Lock()
	defer registry.Unlock()
	_, ok := registry.names[name]
	return ok
}

// Registered returns the names of all live connections, sorted.
func Registered() []string {
	registry.Lock()
	defer registry.Unlock()
	out := make([]string, 0, len(registry.names))
	for name := range registry.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
