package dbstrings

import (
	"reflect"
	"testing"

	"github.com/tapigen/tapigen/proptest"
)

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  string
	}{
		{"pads short string", "id", 5, "id   "},
		{"exact width unchanged", "id", 2, "id"},
		{"beyond width unchanged", "employee_id", 4, "employee_id"},
		{"empty string", "", 3, "   "},
		{"zero width", "x", 0, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PadRight(tt.s, tt.width); got != tt.want {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want []string
	}{
		{"two entries", "created_by, created_on", []string{"created_by", "created_on"}},
		{"no spaces", "a,b,c", []string{"a", "b", "c"}},
		{"empty string", "", nil},
		{"only separators", " , ,, ", nil},
		{"trailing comma", "a,", []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestLowerList(t *testing.T) {
	got := LowerList([]string{"Created_By", "UPDATED_ON"})
	want := []string{"created_by", "updated_on"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LowerList() = %v, want %v", got, want)
	}
	if LowerList(nil) != nil {
		t.Error("LowerList(nil) should be nil")
	}
}

func TestContainsFold(t *testing.T) {
	names := []string{"created_by", "updated_on"}
	if !ContainsFold(names, "CREATED_BY") {
		t.Error("ContainsFold should match case-insensitively")
	}
	if ContainsFold(names, "row_version") {
		t.Error("ContainsFold matched an absent name")
	}
	if ContainsFold(nil, "x") {
		t.Error("ContainsFold on nil slice should be false")
	}
}

func TestMaxLen(t *testing.T) {
	if got := MaxLen([]string{"id", "employee_id", "name"}); got != 11 {
		t.Errorf("MaxLen() = %d, want 11", got)
	}
	if got := MaxLen(nil); got != 0 {
		t.Errorf("MaxLen(nil) = %d, want 0", got)
	}
}

func TestPadRightProperty(t *testing.T) {
	proptest.QuickCheck(t, "padded string has at least the requested width", func(g *proptest.Generator) bool {
		s := g.StringAlphaLower(20)
		width := g.IntRange(0, 40)
		padded := PadRight(s, width)
		if len(s) >= width {
			return padded == s
		}
		return len(padded) == width && padded[:len(s)] == s
	})
}
