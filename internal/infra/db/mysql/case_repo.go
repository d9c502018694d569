package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Save insert/update case record. Metadata, evidence list, and the cached
// result live in JSON columns; the result column is NULL until analysis
// completes.
func (r *CaseRepository) Save(ctx context.Context, c *domain.Case) error {
	const q = `
INSERT INTO investigation_cases
(id, tenant_id, incident_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 state=VALUES(state), metadata=VALUES(metadata), evidence_ids=VALUES(evidence_ids),
 result=VALUES(result), failure_note=VALUES(failure_note), updated_at=VALUES(updated_at);
`
	meta, err := jsonColumn(c.Metadata)
	if err != nil {
		return err
	}
	evids, err := jsonColumn(c.EvidenceIDs)
	if err != nil {
		return err
	}
	var result any
	if c.Result != nil {
		result, err = jsonColumn(c.Result)
		if err != nil {
			return err
		}
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, q,
		c.ID, stringOrDash(c.TenantID), stringOrDash(c.Metadata.IncidentID),
		stringOrDash(string(c.State)), meta, evids, result, c.FailureNote,
		created, c.UpdatedAt,
	)
	return err
}

// Get by ID + Tenant
func (r *CaseRepository) Get(ctx context.Context, tenant string, id domain.CaseID) (*domain.Case, error) {
	const q = `
SELECT id, tenant_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at
FROM investigation_cases
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	c, err := scanCase(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// List cases per tenant, optionally filtered by state.
func (r *CaseRepository) List(ctx context.Context, tenant string, state domain.State, limit int) ([]*domain.Case, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
SELECT id, tenant_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at
FROM investigation_cases
WHERE tenant_id=?`
	args := []any{tenant}
	if state != "" {
		q += " AND state=?"
		args = append(args, string(state))
	}
	q += " ORDER BY created_at DESC LIMIT ?;"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCase(scan func(...any) error) (*domain.Case, error) {
	var c domain.Case
	var meta, evids, result sql.NullString
	if err := scan(
		&c.ID, &c.TenantID, &c.State, &meta, &evids, &result,
		&c.FailureNote, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(meta, &c.Metadata); err != nil {
		return nil, err
	}
	if err := scanJSON(evids, &c.EvidenceIDs); err != nil {
		return nil, err
	}
	if result.Valid && result.String != "" {
		c.Result = &analysis.InvestigationResult{}
		if err := scanJSON(result, c.Result); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
