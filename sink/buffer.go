package sink

import (
	"context"
	"sort"
	"sync"
)

// Buffer collects artifacts in memory. Used by tests and dry runs.
type Buffer struct {
	mu        sync.Mutex
	artifacts map[string][]byte
}

// NewBuffer returns an empty in-memory sink.
func NewBuffer() *Buffer {
	return &Buffer{artifacts: make(map[string][]byte)}
}

func (b *Buffer) WriteArtifact(_ context.Context, kind Kind, name string, content []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.artifacts[kind.String()+"/"+name] = append([]byte(nil), content...)
	return nil
}

// Get returns the artifact stored under kind and name.
func (b *Buffer) Get(kind Kind, name string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.artifacts[kind.String()+"/"+name]
	return content, ok
}

// Names returns every stored artifact key (kind/name), sorted.
func (b *Buffer) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.artifacts))
	for name := range b.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored artifacts.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.artifacts)
}
