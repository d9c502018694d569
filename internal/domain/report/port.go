package report

import (
	"context"
	"errors"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
)

// ErrGeneration indicates document rendering failed. Surfaced to the caller,
// not retried automatically.
var ErrGeneration = errors.New("report generation failed")

// Request carries everything a renderer needs for one document.
type Request struct {
	Case     *cases.Case
	Result   *analysis.InvestigationResult
	Template string // OSHA_PSM, Seveso_III, NFPA_921, API_RP_754, ISO_45001
	Language string // en, tr, es, fr, de
	Format   string // md, json
}

// DiagramRequest describes one analytical diagram.
type DiagramRequest struct {
	Case   *cases.Case
	Result *analysis.InvestigationResult
	Type   string // 5_why, fishbone, fault_tree, event_tree, bowtie
	Format string // dot, md
}

// Generator port (external document-generation collaborator)
type Generator interface {
	Render(ctx context.Context, req Request) (string, error)
	Diagram(ctx context.Context, req DiagramRequest) (string, error)
}
