// Package settings persists saved servers and user preferences.
//
// Everything lives in one YAML document:
//
//	preferences:
//	  defaultDriver: mysql
//	servers:
//	  local:
//	    driver: mysql
//	    host: localhost
//	    port: 3306
//	    database: shop
//	    user: root
//	    password: secret
//
// Passwords are stored as supplied, in clear text.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/sqlbrowser/internal/database"
	"github.com/koustreak/sqlbrowser/internal/dialect"
	"github.com/koustreak/sqlbrowser/internal/errs"
)

// Store is keyed persistence of server params plus preferences.
type Store interface {
	Save(ctx context.Context, name string, p database.Params) error
	Load(ctx context.Context, name string) (database.Params, error)
	List(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error

	Preferences(ctx context.Context) (Preferences, error)
	SetPreferences(ctx context.Context, prefs Preferences) error
}

// Preferences are user choices not tied to one server.
type Preferences struct {
	DefaultDriver dialect.Driver `yaml:"defaultDriver" json:"defaultDriver"`
}

// DefaultPreferences is what an empty store reports.
func DefaultPreferences() Preferences {
	return Preferences{DefaultDriver: dialect.Default}
}

type document struct {
	Preferences Preferences                `yaml:"preferences"`
	Servers     map[string]database.Params `yaml:"servers"`
}

func decode(raw []byte) (*document, error) {
	doc := &document{}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, doc); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid settings document", err)
		}
	}
	if doc.Servers == nil {
		doc.Servers = make(map[string]database.Params)
	}
	if doc.Preferences.DefaultDriver == "" {
		doc.Preferences.DefaultDriver = dialect.Default
	}
	return doc, nil
}

func encode(doc *document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// backend reads and writes the raw document. A missing document reads as nil.
type backend interface {
	read(ctx context.Context) ([]byte, error)
	write(ctx context.Context, raw []byte) error
}

// docStore implements Store over a backend. Every call reads the document
// fresh, so concurrent writers in other processes are last-write-wins.
type docStore struct {
	mu sync.Mutex
	b  backend
}

func (s *docStore) view(ctx context.Context) (*document, error) {
	raw, err := s.b.read(ctx)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func (s *docStore) update(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.view(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	raw, err := encode(doc)
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to encode settings", err)
	}
	return s.b.write(ctx, raw)
}

// Save stores p under name, replacing any earlier entry.
func (s *docStore) Save(ctx context.Context, name string, p database.Params) error {
	if err := checkName(name); err != nil {
		return err
	}
	return s.update(ctx, func(doc *document) error {
		doc.Servers[name] = p
		return nil
	})
}

// Load returns the params saved under name.
func (s *docStore) Load(ctx context.Context, name string) (database.Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.view(ctx)
	if err != nil {
		return database.Params{}, err
	}
	p, ok := doc.Servers[name]
	if !ok {
		return database.Params{}, errs.New(errs.ErrKindNotFound, fmt.Sprintf("server %q not found", name))
	}
	return p, nil
}

// List returns the saved server names, sorted.
func (s *docStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Servers))
	for name := range doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the entry saved under name.
func (s *docStore) Remove(ctx context.Context, name string) error {
	return s.update(ctx, func(doc *document) error {
		if _, ok := doc.Servers[name]; !ok {
			return errs.New(errs.ErrKindNotFound, fmt.Sprintf("server %q not found", name))
		}
		delete(doc.Servers, name)
		return nil
	})
}

// Preferences returns the stored preferences, defaulted.
func (s *docStore) Preferences(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.view(ctx)
	if err != nil {
		return Preferences{}, err
	}
	return doc.Preferences, nil
}

// SetPreferences replaces the stored preferences. The default driver must
// be a known engine.
func (s *docStore) SetPreferences(ctx context.Context, prefs Preferences) error {
	if prefs.DefaultDriver == "" {
		prefs.DefaultDriver = dialect.Default
	}
	if !dialect.Known(prefs.DefaultDriver) {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown driver %q", prefs.DefaultDriver))
	}
	return s.update(ctx, func(doc *document) error {
		doc.Preferences = prefs
		return nil
	})
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.New(errs.ErrKindInvalidInput, "server name is required")
	}
	return nil
}
