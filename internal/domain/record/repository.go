package record

import "context"

// SchemaDescriptor reports which columns a destination table has.
type SchemaDescriptor interface {
	Columns(ctx context.Context, entity Entity) (ColumnSet, error)
}

// Session is the write surface of one ingestion unit. Find returns rows
// ordered by lower(name column) then id, so the first candidate is the
// deterministic tie-break winner.
type Session interface {
	SchemaDescriptor
	Find(ctx context.Context, entity Entity, criteria Criteria) ([]Candidate, error)
	Insert(ctx context.Context, entity Entity, fields Fields) (int64, error)
	Update(ctx context.Context, entity Entity, id int64, fields Fields) error
	UpdateWhere(ctx context.Context, entity Entity, criteria Criteria, fields Fields) (int64, error)
	Delete(ctx context.Context, entity Entity, id int64) error
}

// Store opens units. fn runs inside one transaction; a returned error or
// panic rolls the whole unit back.
type Store interface {
	WithinUnit(ctx context.Context, name string, fn func(ctx context.Context, session Session) error) error
}
