package similarity

import (
	"context"
	"errors"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// ErrUnavailable indicates the similarity collaborator could not be reached.
// Recovered: the investigation degrades to empty matches.
var ErrUnavailable = errors.New("similarity store unavailable")

// Store port (external vector/semantic index of historical cases)
type Store interface {
	Query(ctx context.Context, descriptor string, topK int) ([]analysis.SimilarCaseMatch, error)
}

// Indexer adds a finished case to the historical index so later
// investigations can match against it.
type Indexer interface {
	Index(ctx context.Context, caseID, title, descriptor string) error
}
