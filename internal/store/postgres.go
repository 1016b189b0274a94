package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection text        NOT NULL,
	id         text        NOT NULL,
	data       jsonb       NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_created_idx ON documents (collection, created_at);
`

// Postgres keeps every collection in a single jsonb table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, collection string, doc any) (string, error) {
	data, err := encodeJSON(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, string(data),
	)
	if err != nil {
		return "", mapPgErr(fmt.Errorf("insert %s: %w", collection, err))
	}
	return id, nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapPgErr(fmt.Errorf("get %s/%s: %w", collection, id, err))
	}
	return newJSONSnapshot(id, data)
}

func (p *Postgres) Replace(ctx context.Context, collection, id string, doc any) error {
	data, err := encodeJSON(doc)
	if err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx,
		`UPDATE documents SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, string(data),
	)
	if err != nil {
		return mapPgErr(fmt.Errorf("update %s/%s: %w", collection, id, err))
	}
	return requireAffected(res)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return mapPgErr(fmt.Errorf("delete %s/%s: %w", collection, id, err))
	}
	return requireAffected(res)
}

func (p *Postgres) List(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	query, args, err := buildListQuery(collection, q.Where)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPgErr(fmt.Errorf("list %s: %w", collection, err))
	}
	defer rows.Close()

	var docs []*jsonSnapshot
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		s, err := newJSONSnapshot(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(fmt.Errorf("list %s: %w", collection, err))
	}

	return toSnapshots(applyQuery(docs, q)), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	err := p.db.QueryRowContext(ctx, `SELECT 1 FROM documents LIMIT 1`).Scan(&one)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return mapPgErr(fmt.Errorf("postgres ping: %w", err))
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func buildListQuery(collection string, where []Filter) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}

	for _, f := range where {
		value, err := encodeFilterValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		args = append(args, f.Field, value)
		fmt.Fprintf(&sb, ` AND data -> $%d = $%d::jsonb`, len(args)-1, len(args))
	}
	sb.WriteString(` ORDER BY created_at, id`)

	return sb.String(), args, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapPgErr turns "relation does not exist" and "database does not exist"
// into ErrNotProvisioned.
func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "3D000":
			return fmt.Errorf("%w: %v", ErrNotProvisioned, err)
		}
	}
	return err
}
