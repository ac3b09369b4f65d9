package creds

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tapigen/tapigen/inifile"
)

// StoreFilename is the name of the saved connections file.
const StoreFilename = "connections.ini"

// ErrConnNotFound is returned when a named connection does not exist.
var ErrConnNotFound = errors.New("connection not found")

// Connection is one saved connection. Password is only populated by Get.
type Connection struct {
	Name     string
	Driver   string // postgres | mysql | sqlite
	DSN      string
	User     string
	Password string
}

// Store reads and writes named connections in an INI file, one section per
// connection.
type Store struct {
	path string
	file *inifile.File
}

// OpenStore loads the connections file at path, starting empty when the file
// does not exist yet.
func OpenStore(path string) (*Store, error) {
	f, err := inifile.ParseFile(path)
	if os.IsNotExist(err) {
		f, _ = inifile.Parse(strings.NewReader(""))
		return &Store{path: path, file: f}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read connections file %s: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

// Save adds or replaces a connection, sealing its password under the
// passphrase, and writes the file back.
func (s *Store) Save(conn Connection, passphrase string) error {
	sealed, err := Seal(passphrase, conn.Password)
	if err != nil {
		return err
	}

	s.file.Set(conn.Name, "driver", conn.Driver)
	s.file.Set(conn.Name, "dsn", conn.DSN)
	s.file.Set(conn.Name, "user", conn.User)
	s.file.Set(conn.Name, "password", sealed)

	if err := s.file.WriteFile(s.path); err != nil {
		return fmt.Errorf("write connections file %s: %w", s.path, err)
	}
	return nil
}

// Get returns the named connection with its password opened under the
// passphrase.
func (s *Store) Get(name, passphrase string) (Connection, error) {
	sec := s.file.Section(name)
	if sec == nil {
		return Connection{}, fmt.Errorf("%w: %s", ErrConnNotFound, name)
	}

	password, err := Open(passphrase, sec.Get("password"))
	if err != nil {
		return Connection{}, fmt.Errorf("connection %s: %w", name, err)
	}

	return Connection{
		Name:     name,
		Driver:   sec.Get("driver"),
		DSN:      sec.Get("dsn"),
		User:     sec.Get("user"),
		Password: password,
	}, nil
}

// List returns every saved connection without passwords, sorted by name.
func (s *Store) List() []Connection {
	var conns []Connection
	for _, sec := range s.file.SectionsWithPrefix("") {
		conns = append(conns, Connection{
			Name:   sec.Name,
			Driver: sec.Get("driver"),
			DSN:    sec.Get("dsn"),
			User:   sec.Get("user"),
		})
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Name < conns[j].Name })
	return conns
}
