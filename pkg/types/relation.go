package types

import (
	"fmt"
	"slices"
	"strings"
)

// RelationType is the cardinality of a relation as seen from its FromTable.
type RelationType string

// Relation types.
const (
	HasOne    RelationType = "has_one"
	HasMany   RelationType = "has_many"
	BelongsTo RelationType = "belongs_to"
)

// ForeignKeyAction is a referential action for ON DELETE / ON UPDATE.
type ForeignKeyAction string

// Referential actions. The zero value means no action was declared.
const (
	ActionNone       ForeignKeyAction = ""
	ActionCascade    ForeignKeyAction = "CASCADE"
	ActionRestrict   ForeignKeyAction = "RESTRICT"
	ActionSetNull    ForeignKeyAction = "SET NULL"
	ActionSetDefault ForeignKeyAction = "SET DEFAULT"
	ActionNoAction   ForeignKeyAction = "NO ACTION"
)

// RelationDef is a declared foreign-key edge between two entity tables.
// FromColumns[i] joins to ToColumns[i].
type RelationDef struct {
	FromTable   string           `json:"from_table"`
	ToTable     string           `json:"to_table"`
	FromColumns []string         `json:"from_columns"`
	ToColumns   []string         `json:"to_columns"`
	Type        RelationType     `json:"type"`
	IsOwner     bool             `json:"is_owner"`
	OnDelete    ForeignKeyAction `json:"on_delete,omitempty"`
	OnUpdate    ForeignKeyAction `json:"on_update,omitempty"`
	FKName      string           `json:"fk_name,omitempty"`
}

// Reverse returns the same edge traversed in the opposite direction: the
// tables and column lists swap roles and ownership flips. Type and the
// referential actions are kept. FKName is cleared because the constraint
// name belongs to the declaring side. The receiver is not modified.
func (d RelationDef) Reverse() RelationDef {
	return RelationDef{
		FromTable:   d.ToTable,
		ToTable:     d.FromTable,
		FromColumns: slices.Clone(d.ToColumns),
		ToColumns:   slices.Clone(d.FromColumns),
		Type:        d.Type,
		IsOwner:     !d.IsOwner,
		OnDelete:    d.OnDelete,
		OnUpdate:    d.OnUpdate,
	}
}

// Validate checks that the definition names both tables and pairs every
// column. It returns ErrInvalidRelation on failure.
func (d RelationDef) Validate() error {
	if d.FromTable == "" || d.ToTable == "" {
		return fmt.Errorf("%w: table names must not be empty", ErrInvalidRelation)
	}
	if len(d.FromColumns) == 0 || len(d.FromColumns) != len(d.ToColumns) {
		return fmt.Errorf("%w: %s -> %s has %d from columns and %d to columns",
			ErrInvalidRelation, d.FromTable, d.ToTable, len(d.FromColumns), len(d.ToColumns))
	}
	switch d.Type {
	case HasOne, HasMany, BelongsTo:
	default:
		return fmt.Errorf("%w: unknown relation type %q", ErrInvalidRelation, d.Type)
	}
	return nil
}

// Equal reports whether two definitions describe the same edge field for field.
func (d RelationDef) Equal(o RelationDef) bool {
	return d.FromTable == o.FromTable &&
		d.ToTable == o.ToTable &&
		slices.Equal(d.FromColumns, o.FromColumns) &&
		slices.Equal(d.ToColumns, o.ToColumns) &&
		d.Type == o.Type &&
		d.IsOwner == o.IsOwner &&
		d.OnDelete == o.OnDelete &&
		d.OnUpdate == o.OnUpdate &&
		d.FKName == o.FKName
}

// String renders the edge as from_table(cols) -> to_table(cols).
func (d RelationDef) String() string {
	return fmt.Sprintf("%s(%s) -> %s(%s)",
		d.FromTable, strings.Join(d.FromColumns, ","),
		d.ToTable, strings.Join(d.ToColumns, ","))
}

// RelationDescriptor is the immutable, composed metadata describing how to
// traverse from Source to Target. For a direct relation Via is nil and
// Junction is empty. For a junction-mediated relation Via is the first hop
// (Source -> Junction) and Def is the second (Junction -> Target).
type RelationDescriptor struct {
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Junction string       `json:"junction,omitempty"`
	Def      RelationDef  `json:"def"`
	Via      *RelationDef `json:"via,omitempty"`
}

// IsDirect reports whether the descriptor needs no junction hop.
func (r RelationDescriptor) IsDirect() bool {
	return r.Via == nil
}

// Hops returns the traversal definitions in order, source first.
func (r RelationDescriptor) Hops() []RelationDef {
	if r.Via == nil {
		return []RelationDef{r.Def}
	}
	return []RelationDef{*r.Via, r.Def}
}

// String renders the descriptor as source -> [junction ->] target.
func (r RelationDescriptor) String() string {
	if r.Via == nil {
		return fmt.Sprintf("%s -> %s", r.Source, r.Target)
	}
	return fmt.Sprintf("%s -> %s -> %s", r.Source, r.Junction, r.Target)
}

// Clone returns a copy whose column slices are not shared with d.
func (d RelationDef) Clone() RelationDef {
	d.FromColumns = slices.Clone(d.FromColumns)
	d.ToColumns = slices.Clone(d.ToColumns)
	return d
}

// Clone returns a deep copy of r.
func (r RelationDescriptor) Clone() RelationDescriptor {
	r.Def = r.Def.Clone()
	if r.Via != nil {
		via := r.Via.Clone()
		r.Via = &via
	}
	return r
}
