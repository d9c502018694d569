package capa

import "context"

// Repository port (persistence for CAPA actions)
type Repository interface {
	Save(ctx context.Context, a *Action) error
	Get(ctx context.Context, tenant, caseID, id string) (*Action, error)
	ListByCase(ctx context.Context, tenant, caseID string) ([]*Action, error)
}
