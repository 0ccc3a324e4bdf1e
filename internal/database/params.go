package database

import (
	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
)

// Params describes one server endpoint and its credentials.
//
// It is a plain value: a Session copies it on Open, and the settings store
// persists it under a user-chosen server name. The password is kept in the
// form it was supplied.
type Params struct {
	Driver   dialect.Driver `yaml:"driver" json:"driver"`
	Host     string         `yaml:"host" json:"host"`
	Port     uint16         `yaml:"port" json:"port"`
	Database string         `yaml:"database" json:"database"`
	User     string         `yaml:"user" json:"user"`
	Password string         `yaml:"password" json:"password"`
}

// Valid reports whether p can be used to connect: driver, host, database and
// user must be non-empty and the port must be in 1..65535.
func (p Params) Valid() bool {
	return p.Validate() == nil
}

// Validate returns an ErrKindInvalidParams error naming the first field that
// makes p unusable, or nil.
func (p Params) Validate() error {
	switch {
	case p.Driver == "":
		return errs.New(errs.ErrKindInvalidParams, "driver is required")
	case p.Host == "":
		return errs.New(errs.ErrKindInvalidParams, "host is required")
	case p.Database == "":
		return errs.New(errs.ErrKindInvalidParams, "database is required")
	case p.User == "":
		return errs.New(errs.ErrKindInvalidParams, "user is required")
	case p.Port == 0:
		return errs.New(errs.ErrKindInvalidParams, "port must be between 1 and 65535")
	}
	return nil
}

// WithDatabase returns a copy of p pointing at another database.
func (p Params) WithDatabase(name string) Params {
	p.Database = name
	return p
}
