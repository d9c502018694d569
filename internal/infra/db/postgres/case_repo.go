package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
)

type CaseRepository struct{ db *sql.DB }

func NewCaseRepository(db *sql.DB) *CaseRepository { return &CaseRepository{db: db} }

// Save insert/update case record
func (r *CaseRepository) Save(ctx context.Context, c *domain.Case) error {
	const q = `
INSERT INTO investigation_cases
(id, tenant_id, incident_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
 state = EXCLUDED.state,
 metadata = EXCLUDED.metadata,
 evidence_ids = EXCLUDED.evidence_ids,
 result = EXCLUDED.result,
 failure_note = EXCLUDED.failure_note,
 updated_at = EXCLUDED.updated_at;`

	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	evids, err := json.Marshal(c.EvidenceIDs)
	if err != nil {
		return fmt.Errorf("marshal evidence ids: %w", err)
	}
	var result any
	if c.Result != nil {
		b, err := json.Marshal(c.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		result = string(b)
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, q,
		c.ID, stringOrDash(c.TenantID), stringOrDash(c.Metadata.IncidentID),
		stringOrDash(string(c.State)), string(meta), string(evids), result,
		c.FailureNote, created, c.UpdatedAt,
	)
	return err
}

// Get by ID + Tenant
func (r *CaseRepository) Get(ctx context.Context, tenant string, id domain.CaseID) (*domain.Case, error) {
	const q = `
SELECT id, tenant_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at
FROM investigation_cases
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	c, err := scanCase(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// List cases per tenant, optionally filtered by state
func (r *CaseRepository) List(ctx context.Context, tenant string, state domain.State, limit int) ([]*domain.Case, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
SELECT id, tenant_id, state, metadata, evidence_ids, result, failure_note, created_at, updated_at
FROM investigation_cases
WHERE tenant_id=$1`
	args := []any{tenant}
	if state != "" {
		q += " AND state=$2 ORDER BY created_at DESC LIMIT $3;"
		args = append(args, string(state), limit)
	} else {
		q += " ORDER BY created_at DESC LIMIT $2;"
		args = append(args, limit)
	}

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
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if evids.Valid && evids.String != "" {
		if err := json.Unmarshal([]byte(evids.String), &c.EvidenceIDs); err != nil {
			return nil, fmt.Errorf("unmarshal evidence ids: %w", err)
		}
	}
	if result.Valid && result.String != "" {
		c.Result = &analysis.InvestigationResult{}
		if err := json.Unmarshal([]byte(result.String), c.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &c, nil
}

func stringOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
