package history

import (
	"context"
)

// Recorder stores completed careers.
type Recorder interface {
	Record(ctx context.Context, rec CareerRecord) error
}

// Nop drops every record. It is used when no DSN is configured.
type Nop struct{}

func (Nop) Record(context.Context, CareerRecord) error { return nil }

// Open connects to dsn and migrates the table. An empty dsn returns Nop.
func Open(ctx context.Context, dsn string) (Recorder, error) {
	if dsn == "" {
		return Nop{}, nil
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return NewRepo(db), nil
}
