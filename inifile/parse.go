// Package inifile implements the INI format used for tapigen.ini and saved
// connection files: ordered sections of key = value pairs, # or ; comments,
// and ${section:key} value interpolation.
package inifile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// File represents a parsed INI file.
type File struct {
	Sections []Section
}

// Section represents a named section in an INI file.
type Section struct {
	Name   string     // e.g., "api_controls", "connection.hr_dev"
	Values []KeyValue // preserves order
}

// KeyValue represents a key-value pair.
type KeyValue struct {
	Key   string
	Value string
}

// Parse reads INI text from r. Section names and keys fold to lower case.
// Comment lines, lines without an equals sign, and keys that appear before
// the first section header are ignored.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", line[0] == '#', line[0] == ';':
		case line[0] == '[' && strings.HasSuffix(line, "]"):
			f.Sections = append(f.Sections, Section{
				Name: strings.ToLower(line[1 : len(line)-1]),
			})
		case len(f.Sections) > 0:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			cur := &f.Sections[len(f.Sections)-1]
			cur.Values = append(cur.Values, KeyValue{
				Key:   strings.ToLower(strings.TrimSpace(key)),
				Value: strings.TrimSpace(value),
			})
		}
	}
	return f, sc.Err()
}

// ParseFile reads and parses an INI file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Section returns the section with the given name (case-insensitive),
// or nil if absent.
func (f *File) Section(name string) *Section {
	name = strings.ToLower(name)
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i]
		}
	}
	return nil
}

// SectionsWithPrefix returns sections whose names start with prefix.
func (f *File) SectionsWithPrefix(prefix string) []Section {
	prefix = strings.ToLower(prefix)
	var result []Section
	for _, s := range f.Sections {
		if strings.HasPrefix(s.Name, prefix) {
			result = append(result, s)
		}
	}
	return result
}

// interpRe matches ${section:key} interpolation references.
var interpRe = regexp.MustCompile(`\$\{([^:}]+):([^}]+)\}`)

// Lookup returns the value for section.key with interpolation applied,
// and whether the key was present.
func (f *File) Lookup(section, key string) (string, bool) {
	s := f.Section(section)
	if s == nil {
		return "", false
	}
	raw, ok := s.lookup(key)
	if !ok {
		return "", false
	}
	return f.interpolate(raw, 0), true
}

// Get returns the value for section.key, or "" when absent.
func (f *File) Get(section, key string) string {
	v, _ := f.Lookup(section, key)
	return v
}

// GetDefault returns the value for section.key, or def when absent.
func (f *File) GetDefault(section, key, def string) string {
	if v, ok := f.Lookup(section, key); ok {
		return v
	}
	return def
}

// interpolate expands ${section:key} references in value. Expansion is
// bounded to avoid reference cycles; unresolvable references are left as-is.
func (f *File) interpolate(value string, depth int) string {
	if depth > 8 || !strings.Contains(value, "${") {
		return value
	}
	return interpRe.ReplaceAllStringFunc(value, func(ref string) string {
		m := interpRe.FindStringSubmatch(ref)
		s := f.Section(m[1])
		if s == nil {
			return ref
		}
		raw, ok := s.lookup(m[2])
		if !ok {
			return ref
		}
		return f.interpolate(raw, depth+1)
	})
}

// Flatten merges every section's key-value pairs into one map, later sections
// winning on key collisions. Interpolation is applied to each value.
func (f *File) Flatten() map[string]string {
	flat := make(map[string]string)
	for _, s := range f.Sections {
		for _, kv := range s.Values {
			flat[kv.Key] = f.interpolate(kv.Value, 0)
		}
	}
	return flat
}

// lookup returns the last raw value for a key (case-insensitive). The last
// occurrence wins, matching how repeated keys behave in the config loader.
func (s *Section) lookup(key string) (string, bool) {
	key = strings.ToLower(key)
	for i := len(s.Values) - 1; i >= 0; i-- {
		if s.Values[i].Key == key {
			return s.Values[i].Value, true
		}
	}
	return "", false
}

// Get returns the last value for a key (case-insensitive), without
// interpolation.
func (s *Section) Get(key string) string {
	v, _ := s.lookup(key)
	return v
}

// HasKey returns true if the section contains the given key.
func (s *Section) HasKey(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Set replaces the value of section.key, creating the section or key when
// absent. Names fold to lower case like everything Parse produces.
func (f *File) Set(section, key, value string) {
	key = strings.ToLower(key)

	s := f.Section(section)
	if s == nil {
		f.Sections = append(f.Sections, Section{Name: strings.ToLower(section)})
		s = &f.Sections[len(f.Sections)-1]
	}
	for i := range s.Values {
		if s.Values[i].Key == key {
			s.Values[i].Value = value
			return
		}
	}
	s.Values = append(s.Values, KeyValue{Key: key, Value: value})
}

// Write serializes the file as INI text, one blank line between sections.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, s := range f.Sections {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "[%s]\n", s.Name)
		for _, kv := range s.Values {
			fmt.Fprintf(bw, "%s = %s\n", kv.Key, kv.Value)
		}
	}
	return bw.Flush()
}

// WriteFile writes the serialized file to path, replacing what is there.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := f.Write(out); err != nil {
		return err
	}
	return out.Sync()
}
