package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// collection implements driven.Collection over the entries table.
type collection struct {
	store *Store
	name  string
}

var _ driven.Collection = (*collection)(nil)

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Add writes entries in one transaction.
func (c *collection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", storeErr(err))
	}
	defer tx.Rollback() //nolint:errcheck

	var dims int
	if err := tx.QueryRowContext(ctx,
		`SELECT dimensions FROM collections WHERE name = ?`, c.name).Scan(&dims); err != nil {
		return fmt.Errorf("reading collection %s: %w", c.name, storeErr(err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection, id, kind, file_hash, file_path, metadata, document, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.ID)
		}
		if dims == 0 {
			dims = len(e.Embedding)
			if _, err := tx.ExecContext(ctx,
				`UPDATE collections SET dimensions = ? WHERE name = ?`, dims, c.name); err != nil {
				return fmt.Errorf("setting dimensions: %w", storeErr(err))
			}
		}
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: entry %s has %d dimensions, collection %s has %d",
				domain.ErrDimensionMismatch, e.ID, len(e.Embedding), c.name, dims)
		}

		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, c.name, e.ID, string(e.Metadata.Kind), e.Metadata.Fingerprint,
			e.Metadata.FilePath, string(metadataJSON), e.Text, float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, storeErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", storeErr(err))
	}
	return nil
}

// Get returns entries matching filter in insertion order, without embeddings.
func (c *collection) Get(ctx context.Context, filter domain.MetadataFilter) ([]domain.IndexEntry, error) {
	where, args := c.where(filter)
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, metadata, document FROM entries WHERE `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("getting entries: %w", storeErr(err))
	}
	defer rows.Close()

	var out []domain.IndexEntry
	for rows.Next() {
		var e domain.IndexEntry
		var metadataJSON string
		if err := rows.Scan(&e.ID, &metadataJSON, &e.Text); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Query ranks every entry by cosine distance to vector and returns the first n.
func (c *collection) Query(ctx context.Context, vector []float32, n int) ([]domain.Neighbor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive", domain.ErrInvalidInput)
	}

	var dims int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT dimensions FROM collections WHERE name = ?`, c.name).Scan(&dims)
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", c.name, storeErr(err))
	}
	if dims != 0 && dims != len(vector) {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrDimensionMismatch, len(vector), c.name, dims)
	}

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, metadata, document, embedding FROM entries WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", storeErr(err))
	}
	defer rows.Close()

	var neighbors []domain.Neighbor
	for rows.Next() {
		var e domain.IndexEntry
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&e.ID, &metadataJSON, &e.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata of %s: %w", e.ID, err)
		}
		e.Embedding = bytesToFloat32Slice(blob)

		d, err := vectormath.CosineDistance(vector, e.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", e.ID, err)
		}
		neighbors = append(neighbors, domain.Neighbor{Entry: e, Distance: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}

// Delete removes entries matching filter. An emptied collection forgets its
// vector size so a different model can be used afterwards.
func (c *collection) Delete(ctx context.Context, filter domain.MetadataFilter) (int, error) {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", storeErr(err))
	}
	defer tx.Rollback() //nolint:errcheck

	where, args := c.where(filter)
	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting entries: %w", storeErr(err))
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted entries: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE collections SET dimensions = 0
		WHERE name = ? AND NOT EXISTS (SELECT 1 FROM entries WHERE collection = ?)
	`, c.name, c.name); err != nil {
		return 0, fmt.Errorf("resetting dimensions: %w", storeErr(err))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", storeErr(err))
	}
	return int(removed), nil
}

// Count returns the number of entries in the collection.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE collection = ?`, c.name).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", storeErr(err))
	}
	return n, nil
}

// where builds the WHERE clause for filter, scoped to this collection.
func (c *collection) where(filter domain.MetadataFilter) (string, []any) {
	clauses := []string{"collection = ?"}
	args := []any{c.name}
	if filter.Fingerprint != "" {
		clauses = append(clauses, "file_hash = ?")
		args = append(args, filter.Fingerprint)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.FilePath != "" {
		clauses = append(clauses, "file_path = ?")
		args = append(args, filter.FilePath)
	}
	return strings.Join(clauses, " AND "), args
}
