// Package docgen renders regulatory investigation reports and analytical
// diagrams from a cached investigation result and stores them in the
// content store.
package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/report"
)

type Generator struct {
	Content evidence.ContentStore
	Log     *zap.Logger
}

func New(content evidence.ContentStore, log *zap.Logger) *Generator {
	return &Generator{Content: content, Log: log}
}

// Render produces one regulatory report document, uploads it, and returns
// the content key.
func (g *Generator) Render(ctx context.Context, req report.Request) (string, error) {
	tpl, ok := regTemplates[req.Template]
	if !ok {
		return "", fmt.Errorf("%w: unknown template %q", report.ErrGeneration, req.Template)
	}
	format := req.Format
	if format == "" {
		format = "md"
	}
	if !reportFormats[format] {
		return "", fmt.Errorf("%w: unknown format %q", report.ErrGeneration, req.Format)
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	if req.Result == nil {
		return "", fmt.Errorf("%w: case %s has no analysis result", report.ErrGeneration, req.Case.ID)
	}

	var body string
	switch format {
	case "json":
		b, err := json.MarshalIndent(map[string]any{
			"template":     req.Template,
			"title":        tpl.Title,
			"language":     lang,
			"case_id":      req.Case.ID,
			"incident_id":  req.Case.Metadata.IncidentID,
			"generated_at": time.Now().UTC(),
			"result":       req.Result,
		}, "", "  ")
		if err != nil {
			return "", fmt.Errorf("%w: marshal report: %v", report.ErrGeneration, err)
		}
		body = string(b)
	default:
		body = g.renderMarkdown(tpl, req, lang)
	}

	key := fmt.Sprintf("cases/%s/reports/%s_%s.%s",
		req.Case.ID, strings.ToLower(req.Template), lang, format)
	if _, err := g.Content.Put(ctx, key, strings.NewReader(body), int64(len(body)), contentTypeFor(format)); err != nil {
		return "", fmt.Errorf("%w: store report: %v", report.ErrGeneration, err)
	}
	if g.Log != nil {
		g.Log.Info("report rendered",
			zap.String("case_id", string(req.Case.ID)),
			zap.String("template", req.Template),
			zap.String("format", format),
			zap.String("key", key))
	}
	return key, nil
}

// Diagram produces one analytical diagram, uploads it, and returns the
// content key.
func (g *Generator) Diagram(ctx context.Context, req report.DiagramRequest) (string, error) {
	if !diagramTypes[req.Type] {
		return "", fmt.Errorf("%w: unknown diagram type %q", report.ErrGeneration, req.Type)
	}
	format := req.Format
	if format == "" {
		format = "dot"
	}
	if !diagramFormats[format] {
		return "", fmt.Errorf("%w: unknown diagram format %q", report.ErrGeneration, req.Format)
	}
	if req.Result == nil {
		return "", fmt.Errorf("%w: case %s has no analysis result", report.ErrGeneration, req.Case.ID)
	}

	var body string
	var err error
	switch format {
	case "md":
		body = diagramMarkdown(req.Type, req.Case.Metadata.IncidentType, req.Result)
	default:
		body, err = diagramDOT(req.Type, req.Case.Metadata.IncidentType, req.Result)
		if err != nil {
			return "", fmt.Errorf("%w: %v", report.ErrGeneration, err)
		}
	}

	key := fmt.Sprintf("cases/%s/diagrams/%s.%s", req.Case.ID, req.Type, format)
	if _, err := g.Content.Put(ctx, key, strings.NewReader(body), int64(len(body)), contentTypeFor(format)); err != nil {
		return "", fmt.Errorf("%w: store diagram: %v", report.ErrGeneration, err)
	}
	if g.Log != nil {
		g.Log.Info("diagram rendered",
			zap.String("case_id", string(req.Case.ID)),
			zap.String("type", req.Type),
			zap.String("key", key))
	}
	return key, nil
}

func (g *Generator) renderMarkdown(tpl regTemplate, req report.Request, lang string) string {
	var b strings.Builder
	res := req.Result
	meta := req.Case.Metadata

	fmt.Fprintf(&b, "# %s\n\n", tpl.Title)
	if res.Degraded {
		fmt.Fprintf(&b, "> %s\n\n", label(lang, "degraded_notice"))
	}

	for _, section := range tpl.Sections {
		switch section {
		case "incident_overview":
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "incident_overview"))
			fmt.Fprintf(&b, "- Case: %s\n", req.Case.ID)
			fmt.Fprintf(&b, "- Incident: %s\n", meta.IncidentID)
			fmt.Fprintf(&b, "- Date: %s\n", meta.DateOccurred.Format("2006-01-02 15:04"))
			fmt.Fprintf(&b, "- Location: %s\n", meta.Location)
			fmt.Fprintf(&b, "- Industry: %s\n", meta.Industry)
			fmt.Fprintf(&b, "- Type: %s\n", meta.IncidentType)
			fmt.Fprintf(&b, "- Severity: %s\n\n", meta.Severity)

		case "timeline":
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "timeline"))
			for _, ev := range res.Timeline {
				fmt.Fprintf(&b, "- **%s** [%s] %s (%s)",
					ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Severity, ev.Description, ev.SourceEvidenceID)
				if len(ev.CorroboratedBy) > 0 {
					fmt.Fprintf(&b, " +%s", strings.Join(ev.CorroboratedBy, ", "))
				}
				b.WriteString("\n")
			}
			if len(res.UnanchoredFacts) > 0 {
				fmt.Fprintf(&b, "\n### %s\n\n", label(lang, "unanchored"))
				for _, f := range res.UnanchoredFacts {
					fmt.Fprintf(&b, "- %s (%s)\n", f.Description, f.SourceEvidenceID)
				}
			}
			b.WriteString("\n")

		case "inconsistencies":
			if len(res.Inconsistencies) == 0 {
				continue
			}
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "inconsistencies"))
			for _, inc := range res.Inconsistencies {
				fmt.Fprintf(&b, "- [%s] %s\n", inc.Severity, inc.Description)
				for _, v := range inc.DivergentValues {
					fmt.Fprintf(&b, "  - %s\n", v)
				}
			}
			b.WriteString("\n")

		case "root_causes":
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "root_causes"))
			byBucket := res.CausesByBucket()
			for _, bucket := range []analysis.CauseBucket{analysis.BucketImmediate, analysis.BucketContributing, analysis.BucketSystemic} {
				causes := byBucket[bucket]
				if len(causes) == 0 {
					continue
				}
				fmt.Fprintf(&b, "### %s\n\n", label(lang, string(bucket)))
				for _, c := range causes {
					fmt.Fprintf(&b, "- %s (%s, %.2f)", c.Description, c.Category, c.Confidence)
					if c.StandardViolated != "" {
						fmt.Fprintf(&b, " — %s", c.StandardViolated)
					}
					b.WriteString("\n")
				}
				b.WriteString("\n")
			}

		case "recommendations":
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "recommendations"))
			for _, rec := range res.Recommendations {
				fmt.Fprintf(&b, "- **%s** [%s / %s] %s\n", rec.ID, rec.Priority, rec.Timeline, rec.Title)
			}
			b.WriteString("\n")

		case "evidence_register":
			fmt.Fprintf(&b, "## %s\n\n", label(lang, "evidence_register"))
			fmt.Fprintf(&b, "| ID | Confidence | Facts | Events | Error |\n")
			fmt.Fprintf(&b, "|----|-----------:|------:|-------:|-------|\n")
			for _, e := range res.Evidence {
				fmt.Fprintf(&b, "| %s | %.2f | %d | %d | %s |\n",
					e.EvidenceID, e.Confidence, e.FactCount, e.EventCount, e.Error)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func contentTypeFor(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "md":
		return "text/markdown"
	case "dot":
		return "text/vnd.graphviz"
	}
	return "text/plain"
}
