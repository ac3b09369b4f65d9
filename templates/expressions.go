package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Expression templates supply the value expression for auto-maintained
// columns when the expression maintenance policy is in effect. They live
// under <root>/column_expressions/inserts and .../updates, one file per
// column, named after the column in lowercase.
//
// Filenames with characters outside [a-z0-9_] are ignored so that stray
// editor artifacts never become column expressions.
var expressionFileRe = regexp.MustCompile(`^[a-z0-9_]+\.tpt$`)

// ExpressionStore holds the loaded insert and update column expressions,
// keyed by lowercase column name.
type ExpressionStore struct {
	Inserts map[string]string
	Updates map[string]string
}

// LoadExpressions reads both expression directories beneath the template
// root. Missing directories are treated as empty, not as errors.
func LoadExpressions(root string) (*ExpressionStore, error) {
	base := filepath.Join(root, "column_expressions")
	inserts, err := loadExpressionDir(filepath.Join(base, "inserts"))
	if err != nil {
		return nil, err
	}
	updates, err := loadExpressionDir(filepath.Join(base, "updates"))
	if err != nil {
		return nil, err
	}
	return &ExpressionStore{Inserts: inserts, Updates: updates}, nil
}

func loadExpressionDir(dir string) (map[string]string, error) {
	exprs := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return exprs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read expression directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !expressionFileRe.MatchString(entry.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read expression %s: %w", entry.Name(), err)
		}
		column := strings.TrimSuffix(entry.Name(), Ext)
		exprs[column] = strings.TrimRight(string(raw), "\n")
	}
	return exprs, nil
}
