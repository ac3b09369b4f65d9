// Package templates loads the generator's source templates from a project
// directory. Templates live under <root>/<category>/<type>/<name>.tpt, for
// example packages/procedures/insert.tpt or packages/spec/package_header.tpt.
// Column expression templates have their own layout and loader, see
// expressions.go.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Ext is the template file extension.
const Ext = ".tpt"

var ErrTemplateNotFound = errors.New("template not found")

// Store is a read-through cache over a template directory tree. It is safe
// for concurrent use; generation workers share one Store.
type Store struct {
	root string

	mu    sync.RWMutex
	cache map[string]string
}

// NewStore returns a store rooted at dir. The directory need not exist yet;
// missing templates surface as ErrTemplateNotFound at Load time.
func NewStore(dir string) *Store {
	return &Store{
		root:  dir,
		cache: make(map[string]string),
	}
}

// Root returns the template directory the store reads from.
func (s *Store) Root() string {
	return s.root
}

// Load returns the template <root>/<category>/<typ>/<name>.tpt. The name may
// be given with or without the .tpt extension.
func (s *Store) Load(category, typ, name string) (string, error) {
	name = strings.TrimSuffix(name, Ext) + Ext
	key := category + "/" + typ + "/" + name

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := filepath.Join(s.root, category, typ, name)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", key, err)
	}

	text := string(raw)
	s.mu.Lock()
	s.cache[key] = text
	s.mu.Unlock()
	return text, nil
}

// List returns the base names (extension stripped) of every template under
// <root>/<category>/<typ>, sorted. A missing directory yields an empty list.
func (s *Store) List(category, typ string) ([]string, error) {
	dir := filepath.Join(s.root, category, typ)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates in %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Ext))
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate drops every cached template so the next Load re-reads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}
