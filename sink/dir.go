package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir writes artifacts beneath a staging directory, one subdirectory per
// artifact kind.
type Dir struct {
	root string
	dirs map[Kind]string
}

// NewDir builds a directory sink rooted at root. The per-kind subdirectory
// names come from configuration (spec_dir, body_dir, trigger_dir, view_dir).
func NewDir(root, specDir, bodyDir, triggerDir, viewDir string) *Dir {
	return &Dir{
		root: root,
		dirs: map[Kind]string{
			KindSpec:    specDir,
			KindBody:    bodyDir,
			KindTrigger: triggerDir,
			KindView:    viewDir,
		},
	}
}

// Prepare creates the staging subdirectories. The staging root itself must
// already exist; a missing root usually means a mistyped path and should not
// be silently materialised.
func (d *Dir) Prepare() error {
	info, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("staging directory %s: %w", d.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("staging path %s is not a directory", d.root)
	}
	for _, sub := range d.dirs {
		if err := os.MkdirAll(filepath.Join(d.root, sub), 0o755); err != nil {
			return fmt.Errorf("create staging subdirectory %s: %w", sub, err)
		}
	}
	return nil
}

func (d *Dir) WriteArtifact(_ context.Context, kind Kind, name string, content []byte) error {
	sub, ok := d.dirs[kind]
	if !ok {
		return fmt.Errorf("no destination configured for %s artifacts", kind)
	}
	path := filepath.Join(d.root, sub, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s artifact %s: %w", kind, name, err)
	}
	return nil
}
