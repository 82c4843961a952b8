// Package schema compares introspected ledger table columns against the
// layout the migrations create.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Column describes one table column as reported by the database catalog.
type Column struct {
	Type     string
	Nullable bool
}

// Columns maps column names to their definitions.
type Columns map[string]Column

// MismatchError lists every difference found in a single table.
type MismatchError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed:", e.Table)

	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " missing columns: %s;", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, " mismatched columns: %s;", strings.Join(e.Mismatched, "; "))
	}

	return strings.TrimSuffix(b.String(), ";")
}

// Compare reports every column of want that is absent from got or differs in
// type or nullability. Extra columns in got are ignored. Types are compared
// case-insensitively.
func Compare(table string, want, got Columns) error {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	mismatch := &MismatchError{Table: table}
	for _, name := range names {
		expected := want[name]

		actual, ok := got[name]
		if !ok {
			mismatch.Missing = append(mismatch.Missing, name)
			continue
		}

		if !strings.EqualFold(actual.Type, expected.Type) {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", name, expected.Type, strings.ToLower(actual.Type)))
		}
		if actual.Nullable != expected.Nullable {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s: expected nullable=%t, got nullable=%t", name, expected.Nullable, actual.Nullable))
		}
	}

	if len(mismatch.Missing) == 0 && len(mismatch.Mismatched) == 0 {
		return nil
	}
	return mismatch
}
