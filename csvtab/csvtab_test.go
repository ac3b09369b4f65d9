package csvtab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesHeaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.Dirty() {
		t.Error("freshly created file should not be dirty after the initial save")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("control file was not created: %v", err)
	}
	want := "Schema Name,Table Name,Packages Enabled,Views Enabled,Triggers Enabled\n"
	if string(raw) != want {
		t.Errorf("created file = %q, want header only", raw)
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")
	content := "Schema Name,Table Name,Packages Enabled,Views Enabled,Triggers Enabled\n" +
		"HR,Employees,true,false,yes\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Keys are case-insensitive; toggle spellings are tolerant.
	if !f.Enabled("hr", "employees", Packages) {
		t.Error("packages should be enabled")
	}
	if f.Enabled("HR", "EMPLOYEES", Views) {
		t.Error("views should be disabled")
	}
	if !f.Enabled("hr", "employees", Triggers) {
		t.Error("'yes' should parse as enabled")
	}
	if f.Dirty() {
		t.Error("reading known tables should not dirty the file")
	}
}

func TestEnabledAddsUnknownTable(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "tapigen.csv"))
	if err != nil {
		t.Fatal(err)
	}

	if !f.Enabled("hr", "departments", Views) {
		t.Error("unknown tables default to enabled")
	}
	if !f.Dirty() {
		t.Error("adding a table should mark the file dirty")
	}
}

func TestSaveSortedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	f.Enabled("sales", "orders", Packages)
	f.Enabled("hr", "employees", Packages)
	f.Enabled("hr", "departments", Packages)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if f.Dirty() {
		t.Error("Save() should clear the dirty flag")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	want := []string{
		"Schema Name,Table Name,Packages Enabled,Views Enabled,Triggers Enabled",
		"hr,departments,true,true,true",
		"hr,employees,true,true,true",
		"sales,orders,true,true,true",
	}
	if len(lines) != len(want) {
		t.Fatalf("saved %d lines, want %d:\n%s", len(lines), len(want), raw)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if !back.Enabled("sales", "orders", Triggers) {
		t.Error("toggles should survive the round trip")
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should reject a zero-byte control file")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("Load() error = %v, want mention of the empty file", err)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")
	if err := os.WriteFile(path, []byte("Wrong,Header\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should reject a header mismatch")
	}
}

func TestLoadRejectsShortRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapigen.csv")
	content := "Schema Name,Table Name,Packages Enabled,Views Enabled,Triggers Enabled\n" +
		"hr,employees,true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should reject rows with missing fields")
	}
}
