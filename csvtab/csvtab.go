// Package csvtab manages the per-table control file: a CSV that records, per
// schema and table, whether packages, views and triggers are generated.
// Tables referenced for the first time are added with everything enabled, so
// the file doubles as an inventory a user can edit between runs.
package csvtab

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
)

var headers = []string{"Schema Name", "Table Name", "Packages Enabled", "Views Enabled", "Triggers Enabled"}

// Feature selects one of the per-table toggles.
type Feature int

const (
	Packages Feature = iota
	Views
	Triggers
)

func (f Feature) String() string {
	switch f {
	case Packages:
		return "packages"
	case Views:
		return "views"
	case Triggers:
		return "triggers"
	}
	return "unknown"
}

type toggles struct {
	packages bool
	views    bool
	triggers bool
}

type key struct {
	schema string
	table  string
}

// File is the loaded control file. Not safe for concurrent mutation; the
// controller consults it before fanning tables out to workers.
type File struct {
	path    string
	entries map[key]toggles
	dirty   bool
}

// Load reads the control file at path, creating it with only the header row
// when absent. A header mismatch is an error: silently proceeding would risk
// misreading hand-edited toggle columns.
func Load(path string) (*File, error) {
	f := &File{path: path, entries: make(map[key]toggles)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		f.dirty = true
		return f, f.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("read control file %s: %w", path, err)
	}

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse control file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("control file %s is empty, expected header row %v", path, headers)
	}
	if !equalFold(records[0], headers) {
		return nil, fmt.Errorf("control file %s has unexpected headers %v (expected %v)", path, records[0], headers)
	}

	for i, rec := range records[1:] {
		if len(rec) != len(headers) {
			return nil, fmt.Errorf("control file %s row %d has %d fields, expected %d", path, i+2, len(rec), len(headers))
		}
		k := key{schema: strings.ToLower(rec[0]), table: strings.ToLower(rec[1])}
		f.entries[k] = toggles{
			packages: parseToggle(rec[2]),
			views:    parseToggle(rec[3]),
			triggers: parseToggle(rec[4]),
		}
	}
	return f, nil
}

// Enabled reports whether a feature is enabled for schema.table. A table not
// yet present is added with every feature enabled and marked for write-back.
func (f *File) Enabled(schema, table string, feature Feature) bool {
	k := key{schema: strings.ToLower(schema), table: strings.ToLower(table)}
	entry, ok := f.entries[k]
	if !ok {
		entry = toggles{packages: true, views: true, triggers: true}
		f.entries[k] = entry
		f.dirty = true
	}

	switch feature {
	case Packages:
		return entry.packages
	case Views:
		return entry.views
	case Triggers:
		return entry.triggers
	}
	panic(fmt.Sprintf("csvtab: invalid feature %d", int(feature)))
}

// Dirty reports whether entries were added since the last Save.
func (f *File) Dirty() bool {
	return f.dirty
}

// Save writes the control file back, rows sorted by schema then table.
func (f *File) Save() error {
	keys := make([]key, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].schema != keys[j].schema {
			return keys[i].schema < keys[j].schema
		}
		return keys[i].table < keys[j].table
	})

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, k := range keys {
		entry := f.entries[k]
		rec := []string{
			k.schema,
			k.table,
			formatToggle(entry.packages),
			formatToggle(entry.views),
			formatToggle(entry.triggers),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := os.WriteFile(f.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write control file %s: %w", f.path, err)
	}
	f.dirty = false
	return nil
}

func parseToggle(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on", "enabled":
		return true
	}
	return false
}

func formatToggle(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(strings.TrimSpace(a[i]), b[i]) {
			return false
		}
	}
	return true
}
