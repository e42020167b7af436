package diff

import (
	"log"

	"github.com/koba/schema-diff/internal/database"
	"github.com/koba/schema-diff/internal/schema"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
)

// SchemaDiff represents schema differences for a table
type SchemaDiff struct {
	TableName     string
	Action        Action
	OldSchema     *schema.TableSchema
	NewSchema     *schema.TableSchema
	ColumnChanges []ColumnChange
	IndexChanges  []IndexChange
}

// ColumnChange represents a change to a column.
//
// For ActionModify, NewColumn is the desired column with every attribute the
// caller left unspecified filled in from OldColumn.
type ColumnChange struct {
	ColumnName string
	Action     Action
	OldColumn  *schema.ColumnInfo
	NewColumn  *schema.ColumnInfo

	TypeChanged     bool
	NullableChanged bool
	IndexesAdded    schema.IndexTypeSet
	IndexesDropped  schema.IndexTypeSet
}

// IndexChange represents a change to a table-level index
type IndexChange struct {
	IndexName string
	Action    Action
	OldIndex  *schema.Index
	NewIndex  *schema.Index
}

// compareSchemas compares two table schemas. It returns nil if the new
// schema asks for nothing the old one does not already have.
func compareSchemas(old, new *schema.TableSchema, opts Options) *SchemaDiff {
	diff := &SchemaDiff{
		TableName:     new.Name,
		Action:        ActionModify,
		OldSchema:     old,
		NewSchema:     new,
		ColumnChanges: []ColumnChange{},
		IndexChanges:  []IndexChange{},
	}

	seen := make(map[string]bool)

	// Find added and modified columns
	for _, newCol := range new.Columns {
		name, ok := newCol.Name().Get()
		if !ok {
			log.Printf("table %s: ignoring column without a name", new.Name)
			continue
		}
		seen[name] = true

		oldCol, exists := old.Column(name)
		if !exists {
			added := newCol
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{
				ColumnName:   name,
				Action:       ActionAdd,
				NewColumn:    &added,
				IndexesAdded: opts.resolve(newCol.IndexTypes().OrElse(schema.IndexTypeSet{})),
			})
			continue
		}

		if change, changed := compareColumns(name, oldCol, newCol, opts); changed {
			diff.ColumnChanges = append(diff.ColumnChanges, change)
		}
	}

	// Find deleted columns
	if !opts.Partial {
		for _, oldCol := range old.Columns {
			name, ok := oldCol.Name().Get()
			if !ok || seen[name] {
				continue
			}
			dropped := oldCol
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{
				ColumnName: name,
				Action:     ActionDrop,
				OldColumn:  &dropped,
			})
		}
	}

	diff.IndexChanges = compareIndexes(old, new, opts)

	// Return nil if no changes
	if len(diff.ColumnChanges) == 0 && len(diff.IndexChanges) == 0 {
		return nil
	}

	return diff
}

// compareIndexes matches table-level indexes by name. A changed index is
// reported as ActionModify and has to be rebuilt.
func compareIndexes(old, new *schema.TableSchema, opts Options) []IndexChange {
	changes := []IndexChange{}

	oldIndexes := make(map[string]schema.Index)
	for _, idx := range old.TableIndexes() {
		oldIndexes[idx.Name] = idx
	}
	newIndexes := make(map[string]schema.Index)
	for _, idx := range new.TableIndexes() {
		newIndexes[idx.Name] = idx
	}

	for _, newIdx := range new.TableIndexes() {
		added := newIdx
		oldIdx, exists := oldIndexes[newIdx.Name]
		if !exists {
			changes = append(changes, IndexChange{
				IndexName: newIdx.Name,
				Action:    ActionAdd,
				NewIndex:  &added,
			})
			continue
		}
		if !oldIdx.Equal(newIdx) {
			changes = append(changes, IndexChange{
				IndexName: newIdx.Name,
				Action:    ActionModify,
				OldIndex:  &oldIdx,
				NewIndex:  &added,
			})
		}
	}

	if opts.Partial {
		return changes
	}
	for _, oldIdx := range old.TableIndexes() {
		if _, exists := newIndexes[oldIdx.Name]; exists {
			continue
		}
		dropped := oldIdx
		changes = append(changes, IndexChange{
			IndexName: oldIdx.Name,
			Action:    ActionDrop,
			OldIndex:  &dropped,
		})
	}

	return changes
}

// compareColumns reports what it takes to turn old into new. Attributes left
// unspecified in new never count as a change.
func compareColumns(name string, old, new schema.ColumnInfo, opts Options) (ColumnChange, bool) {
	target := new.WithDefaults(old)

	oldIndexes := old.IndexTypes().OrElse(schema.IndexTypeSet{})
	newIndexes := target.IndexTypes().OrElse(schema.IndexTypeSet{})
	if new.IndexTypes().IsSpecified() {
		newIndexes = opts.resolve(newIndexes)
	}

	change := ColumnChange{
		ColumnName:      name,
		Action:          ActionModify,
		OldColumn:       &old,
		NewColumn:       &target,
		TypeChanged:     target.Type() != old.Type(),
		NullableChanged: target.Nullable() != old.Nullable(),
		IndexesAdded:    newIndexes.Difference(oldIndexes),
		IndexesDropped:  oldIndexes.Difference(newIndexes),
	}

	changed := change.TypeChanged || change.NullableChanged ||
		!change.IndexesAdded.IsEmpty() || !change.IndexesDropped.IsEmpty()
	return change, changed
}

// resolve maps index types to what opts.Dialect stores for them. Types the
// dialect cannot create are left out.
func (o Options) resolve(set schema.IndexTypeSet) schema.IndexTypeSet {
	if o.Dialect == "" {
		return set
	}
	var kinds []schema.IndexType
	for _, kind := range set.Slice() {
		stored, ok := database.StoredIndexType(o.Dialect, kind)
		if !ok {
			log.Printf("%s cannot create %s indexes; ignoring", o.Dialect, kind)
			continue
		}
		kinds = append(kinds, stored)
	}
	return schema.NewIndexTypeSet(kinds...)
}
