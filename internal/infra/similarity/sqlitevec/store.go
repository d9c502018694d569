// Package sqlitevec backs the similarity matcher with a local sqlite-vec
// index of historical incident cases. The embedding column stores raw
// little-endian float32 blobs as sqlite-vec expects.
package sqlitevec

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/similarity"
)

func init() {
	// Registers sqlite-vec as an auto-loadable extension on every new
	// mattn/go-sqlite3 connection.
	vec.Auto()
}

// Embedder turns a case descriptor into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Store struct {
	db       *sql.DB
	embedder Embedder
	dims     int
	log      *zap.Logger
}

// New opens (or creates) the index at path. dims must match the embedding
// model's output width.
func New(path string, embedder Embedder, dims int, log *zap.Logger) (*Store, error) {
	if dims <= 0 {
		dims = 1536
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open similarity index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping similarity index: %w", err)
	}
	schema := fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS vec_cases USING vec0(
	embedding float[%d],
	case_id TEXT,
	title TEXT
);`, dims)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vec_cases table: %w", err)
	}
	return &Store{db: db, embedder: embedder, dims: dims, log: log}, nil
}

// Index adds one historical case to the index. Called after a case closes so
// future investigations can surface it.
func (s *Store) Index(ctx context.Context, caseID, title, descriptor string) error {
	emb, err := s.embedder.Embed(ctx, descriptor)
	if err != nil {
		return fmt.Errorf("embed case %s: %w", caseID, err)
	}
	if len(emb) != s.dims {
		return fmt.Errorf("embedding width %d, index expects %d", len(emb), s.dims)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vec_cases (embedding, case_id, title) VALUES (?, ?, ?)`,
		encodeEmbedding(emb), caseID, title,
	)
	return err
}

// Query embeds the descriptor and returns the topK nearest historical cases.
// Any failure is wrapped in similarity.ErrUnavailable so callers degrade
// instead of failing the investigation.
func (s *Store) Query(ctx context.Context, descriptor string, topK int) ([]analysis.SimilarCaseMatch, error) {
	if topK <= 0 {
		topK = 5
	}
	emb, err := s.embedder.Embed(ctx, descriptor)
	if err != nil {
		return nil, fmt.Errorf("%w: embed descriptor: %v", similarity.ErrUnavailable, err)
	}

	const q = `
SELECT case_id, title, vec_distance_cosine(embedding, ?) AS distance
FROM vec_cases
ORDER BY distance ASC
LIMIT ?;`
	rows, err := s.db.QueryContext(ctx, q, encodeEmbedding(emb), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query index: %v", similarity.ErrUnavailable, err)
	}
	defer rows.Close()

	var matches []analysis.SimilarCaseMatch
	for rows.Next() {
		var m analysis.SimilarCaseMatch
		var distance float64
		if err := rows.Scan(&m.CaseID, &m.Title, &distance); err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", similarity.ErrUnavailable, err)
		}
		// Cosine distance is 1 - similarity.
		m.SimilarityScore = clamp01(1.0 - distance)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate matches: %v", similarity.ErrUnavailable, err)
	}
	if s.log != nil {
		s.log.Debug("similarity query",
			zap.Int("top_k", topK),
			zap.Int("matches", len(matches)))
	}
	return matches, nil
}

// Ping reports whether the index file is still reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func encodeEmbedding(emb []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, emb)
	return buf.Bytes()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
