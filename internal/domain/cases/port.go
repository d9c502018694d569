package cases

import "context"

// Repository port (persistence for investigation cases)
type Repository interface {
	Save(ctx context.Context, c *Case) error
	Get(ctx context.Context, tenant string, id CaseID) (*Case, error)
	List(ctx context.Context, tenant string, state State, limit int) ([]*Case, error)
}
