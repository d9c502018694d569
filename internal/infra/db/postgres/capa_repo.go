package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/capa"
)

type CAPARepository struct{ db *sql.DB }

func NewCAPARepository(db *sql.DB) *CAPARepository {
	return &CAPARepository{db: db}
}

// Save insert/update one CAPA action.
func (r *CAPARepository) Save(ctx context.Context, a *domain.Action) error {
	const q = `
INSERT INTO capa_actions
(id, case_id, title, priority, status, timeline, cause_ref, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 priority = EXCLUDED.priority,
 updated_at = EXCLUDED.updated_at;`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.CaseID, a.Title, stringOrDash(a.Priority), stringOrDash(string(a.Status)),
		a.Timeline, a.CauseRef, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// Get one action within a case.
func (r *CAPARepository) Get(ctx context.Context, tenant, caseID, id string) (*domain.Action, error) {
	const q = `
SELECT a.id, a.case_id, a.title, a.priority, a.status, a.timeline, a.cause_ref, a.created_at, a.updated_at
FROM capa_actions a
JOIN investigation_cases c ON c.id = a.case_id
WHERE c.tenant_id=$1 AND a.case_id=$2 AND a.id=$3 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, caseID, id)
	a, err := scanAction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("capa action %s not found in case %s", id, caseID)
	}
	return a, err
}

// ListByCase returns all actions for a case in creation order.
func (r *CAPARepository) ListByCase(ctx context.Context, tenant, caseID string) ([]*domain.Action, error) {
	const q = `
SELECT a.id, a.case_id, a.title, a.priority, a.status, a.timeline, a.cause_ref, a.created_at, a.updated_at
FROM capa_actions a
JOIN investigation_cases c ON c.id = a.case_id
WHERE c.tenant_id=$1 AND a.case_id=$2 ORDER BY a.id ASC;`
	rows, err := r.db.QueryContext(ctx, q, tenant, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Action
	for rows.Next() {
		a, err := scanAction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAction(scan func(...any) error) (*domain.Action, error) {
	var a domain.Action
	if err := scan(
		&a.ID, &a.CaseID, &a.Title, &a.Priority, &a.Status,
		&a.Timeline, &a.CauseRef, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
