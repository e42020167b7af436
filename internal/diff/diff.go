package diff

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/koba/schema-diff/internal/snapshot"
)

// Options controls how snapshots are compared
type Options struct {
	// Partial treats the new snapshot as a set of hints: tables and columns
	// it does not mention are left alone instead of dropped.
	Partial bool

	// Dialect, when set, resolves the index types asked for by the new
	// snapshot to the types that dialect reports back after creating them.
	Dialect string
}

// DiffResult holds the complete comparison result
type DiffResult struct {
	SchemaDiffs map[string]*SchemaDiff
}

// TableNames returns the names of the changed tables in sorted order
func (r *DiffResult) TableNames() []string {
	names := make([]string, 0, len(r.SchemaDiffs))
	for name := range r.SchemaDiffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compare compares two snapshots and returns the changes that turn old into new
func Compare(old, new *snapshot.Snapshot, opts Options) *DiffResult {
	result := &DiffResult{
		SchemaDiffs: make(map[string]*SchemaDiff),
	}

	// Find all unique table names
	tableNames := make(map[string]bool)
	for name := range old.Tables {
		tableNames[name] = true
	}
	for name := range new.Tables {
		tableNames[name] = true
	}

	// Compare each table
	for tableName := range tableNames {
		table1, exists1 := old.Tables[tableName]
		table2, exists2 := new.Tables[tableName]

		if !exists1 {
			// Table added in new
			result.SchemaDiffs[tableName] = &SchemaDiff{
				TableName: tableName,
				Action:    ActionAdd,
				NewSchema: table2,
			}
			continue
		}

		if !exists2 {
			if opts.Partial {
				continue
			}
			// Table removed in new
			result.SchemaDiffs[tableName] = &SchemaDiff{
				TableName: tableName,
				Action:    ActionDrop,
				OldSchema: table1,
			}
			continue
		}

		fp1, ok1 := old.Fingerprints[tableName]
		fp2, ok2 := new.Fingerprints[tableName]
		if ok1 && ok2 && fp1 == fp2 {
			continue
		}

		if schemaDiff := compareSchemas(table1, table2, opts); schemaDiff != nil {
			result.SchemaDiffs[tableName] = schemaDiff
		}
	}

	return result
}

// Fprint writes the diff result in a human-readable format
func Fprint(w io.Writer, result *DiffResult) {
	if len(result.SchemaDiffs) == 0 {
		fmt.Fprintln(w, "No differences found.")
		return
	}

	fmt.Fprintln(w, "=== Schema Differences ===")
	fmt.Fprintln(w)
	for _, tableName := range result.TableNames() {
		printSchemaDiff(w, tableName, result.SchemaDiffs[tableName])
	}
}

func printSchemaDiff(w io.Writer, tableName string, diff *SchemaDiff) {
	fmt.Fprintf(w, "Table: %s\n", tableName)

	switch diff.Action {
	case ActionAdd:
		fmt.Fprintf(w, "  Action: ADD (new table)\n")
		fmt.Fprintf(w, "  Columns: %d\n", len(diff.NewSchema.Columns))
	case ActionDrop:
		fmt.Fprintf(w, "  Action: DROP (removed table)\n")
	case ActionModify:
		fmt.Fprintf(w, "  Action: MODIFY\n")
		if len(diff.ColumnChanges) > 0 {
			fmt.Fprintf(w, "  Column changes:\n")
			for _, change := range diff.ColumnChanges {
				fmt.Fprintf(w, "    - %s: %s%s\n", change.ColumnName, change.Action, describe(change))
			}
		}
		if len(diff.IndexChanges) > 0 {
			fmt.Fprintf(w, "  Index changes:\n")
			for _, change := range diff.IndexChanges {
				fmt.Fprintf(w, "    - %s: %s\n", change.IndexName, change.Action)
			}
		}
	}
	fmt.Fprintln(w)
}

func describe(change ColumnChange) string {
	if change.Action != ActionModify {
		return ""
	}
	var parts []string
	if change.TypeChanged {
		parts = append(parts, fmt.Sprintf("type %s -> %s", change.OldColumn.Type(), change.NewColumn.Type()))
	}
	if change.NullableChanged {
		parts = append(parts, fmt.Sprintf("nullable %s -> %s", change.OldColumn.Nullable(), change.NewColumn.Nullable()))
	}
	if !change.IndexesAdded.IsEmpty() {
		parts = append(parts, "+index "+change.IndexesAdded.String())
	}
	if !change.IndexesDropped.IsEmpty() {
		parts = append(parts, "-index "+change.IndexesDropped.String())
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
