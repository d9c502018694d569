package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
)

type EvidenceRepository struct {
	db *sql.DB
}

func NewEvidenceRepository(db *sql.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Save appends one evidence record. The table is append-only: a duplicate
// (case_id, id) insert is an error, never an update.
func (r *EvidenceRepository) Save(ctx context.Context, item *domain.Item) error {
	const q = `
INSERT INTO evidence_items
(id, case_id, tenant_id, type, content_key, metadata, ingested_at, ordinal)
VALUES (?,?,?,?,?,?,?,?);
`
	meta, err := jsonColumn(item.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		item.ID, item.CaseID, stringOrDash(item.TenantID), string(item.Type), item.ContentKey,
		meta, item.IngestedAt, item.Ordinal,
	)
	return err
}

// Get one evidence record.
func (r *EvidenceRepository) Get(ctx context.Context, tenant, caseID, id string) (*domain.Item, error) {
	const q = `
SELECT id, case_id, type, content_key, metadata, ingested_at, ordinal
FROM evidence_items
WHERE tenant_id=? AND case_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, caseID, id)
	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evidence %s not found in case %s", id, caseID)
	}
	return item, err
}

// ListByCase returns the case's evidence in ingestion order.
func (r *EvidenceRepository) ListByCase(ctx context.Context, tenant, caseID string) ([]*domain.Item, error) {
	const q = `
SELECT id, case_id, type, content_key, metadata, ingested_at, ordinal
FROM evidence_items
WHERE tenant_id=? AND case_id=? ORDER BY ordinal ASC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountByCase returns how many items the case holds.
func (r *EvidenceRepository) CountByCase(ctx context.Context, tenant, caseID string) (int, error) {
	const q = `SELECT COUNT(*) FROM evidence_items WHERE tenant_id=? AND case_id=?;`
	var n int
	err := r.db.QueryRowContext(ctx, q, tenant, caseID).Scan(&n)
	return n, err
}

func scanItem(scan func(...any) error) (*domain.Item, error) {
	var item domain.Item
	var meta sql.NullString
	if err := scan(
		&item.ID, &item.CaseID, &item.Type, &item.ContentKey,
		&meta, &item.IngestedAt, &item.Ordinal,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(meta, &item.Metadata); err != nil {
		return nil, err
	}
	return &item, nil
}
