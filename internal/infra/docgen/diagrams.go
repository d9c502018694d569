package docgen

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// diagramDOT renders one analytical diagram in Graphviz DOT.
func diagramDOT(kind, incidentType string, res *analysis.InvestigationResult) (string, error) {
	top := incidentType
	if top == "" {
		top = "incident"
	}
	var b strings.Builder
	switch kind {
	case "5_why":
		b.WriteString("digraph five_why {\n  rankdir=TB;\n  node [shape=box];\n")
		fmt.Fprintf(&b, "  w0 [label=%q, style=bold];\n", top)
		prev := "w0"
		for i, c := range whyChain(res) {
			id := fmt.Sprintf("w%d", i+1)
			fmt.Fprintf(&b, "  %s [label=%q];\n", id, c.Description)
			fmt.Fprintf(&b, "  %s -> %s [label=\"why?\"];\n", prev, id)
			prev = id
		}
		b.WriteString("}\n")

	case "fishbone":
		b.WriteString("digraph fishbone {\n  rankdir=LR;\n  node [shape=box];\n")
		fmt.Fprintf(&b, "  spine [label=%q, style=bold];\n", top)
		for ci, cat := range causeCategories(res) {
			catID := fmt.Sprintf("cat%d", ci)
			fmt.Fprintf(&b, "  %s [label=%q, shape=ellipse];\n", catID, string(cat))
			fmt.Fprintf(&b, "  %s -> spine;\n", catID)
			for bi, c := range causesIn(res, cat) {
				boneID := fmt.Sprintf("%s_b%d", catID, bi)
				fmt.Fprintf(&b, "  %s [label=%q];\n", boneID, c.Description)
				fmt.Fprintf(&b, "  %s -> %s;\n", boneID, catID)
			}
		}
		b.WriteString("}\n")

	case "fault_tree":
		b.WriteString("digraph fault_tree {\n  rankdir=BT;\n  node [shape=box];\n")
		fmt.Fprintf(&b, "  top [label=%q, style=bold];\n", top)
		byBucket := res.CausesByBucket()
		for bi, bucket := range []analysis.CauseBucket{analysis.BucketImmediate, analysis.BucketContributing, analysis.BucketSystemic} {
			causes := byBucket[bucket]
			if len(causes) == 0 {
				continue
			}
			gateID := fmt.Sprintf("gate%d", bi)
			fmt.Fprintf(&b, "  %s [label=\"OR\", shape=invtriangle];\n", gateID)
			fmt.Fprintf(&b, "  %s -> top [label=%q];\n", gateID, string(bucket))
			for ci, c := range causes {
				id := fmt.Sprintf("%s_c%d", gateID, ci)
				fmt.Fprintf(&b, "  %s [label=%q];\n", id, c.Description)
				fmt.Fprintf(&b, "  %s -> %s;\n", id, gateID)
			}
		}
		b.WriteString("}\n")

	case "event_tree":
		b.WriteString("digraph event_tree {\n  rankdir=LR;\n  node [shape=box];\n")
		prev := ""
		for i, ev := range res.Timeline {
			id := fmt.Sprintf("e%d", i)
			fmt.Fprintf(&b, "  %s [label=%q];\n", id, fmt.Sprintf("%s\n%s", ev.Timestamp.Format("15:04:05"), ev.Description))
			if prev != "" {
				fmt.Fprintf(&b, "  %s -> %s;\n", prev, id)
			}
			prev = id
		}
		b.WriteString("}\n")

	case "bowtie":
		b.WriteString("digraph bowtie {\n  rankdir=LR;\n  node [shape=box];\n")
		fmt.Fprintf(&b, "  hazard [label=%q, shape=diamond, style=bold];\n", top)
		for i, c := range res.Causes {
			id := fmt.Sprintf("threat%d", i)
			fmt.Fprintf(&b, "  %s [label=%q];\n", id, c.Description)
			fmt.Fprintf(&b, "  %s -> hazard;\n", id)
		}
		for i, rec := range res.Recommendations {
			id := fmt.Sprintf("barrier%d", i)
			fmt.Fprintf(&b, "  %s [label=%q, shape=ellipse];\n", id, rec.Title)
			fmt.Fprintf(&b, "  hazard -> %s;\n", id)
		}
		b.WriteString("}\n")

	default:
		return "", fmt.Errorf("unknown diagram type %q", kind)
	}
	return b.String(), nil
}

// diagramMarkdown renders the same structures as nested markdown lists for
// consumers without a DOT renderer.
func diagramMarkdown(kind, incidentType string, res *analysis.InvestigationResult) string {
	top := incidentType
	if top == "" {
		top = "incident"
	}
	var b strings.Builder
	switch kind {
	case "5_why":
		fmt.Fprintf(&b, "# 5-Why: %s\n\n", top)
		for i, c := range whyChain(res) {
			fmt.Fprintf(&b, "%d. Why? %s\n", i+1, c.Description)
		}
	case "fishbone":
		fmt.Fprintf(&b, "# Fishbone: %s\n\n", top)
		for _, cat := range causeCategories(res) {
			fmt.Fprintf(&b, "- %s\n", cat)
			for _, c := range causesIn(res, cat) {
				fmt.Fprintf(&b, "  - %s\n", c.Description)
			}
		}
	case "fault_tree":
		fmt.Fprintf(&b, "# Fault Tree: %s\n\n", top)
		byBucket := res.CausesByBucket()
		for _, bucket := range []analysis.CauseBucket{analysis.BucketImmediate, analysis.BucketContributing, analysis.BucketSystemic} {
			causes := byBucket[bucket]
			if len(causes) == 0 {
				continue
			}
			fmt.Fprintf(&b, "- OR (%s)\n", bucket)
			for _, c := range causes {
				fmt.Fprintf(&b, "  - %s\n", c.Description)
			}
		}
	case "event_tree":
		fmt.Fprintf(&b, "# Event Tree: %s\n\n", top)
		for _, ev := range res.Timeline {
			fmt.Fprintf(&b, "- %s %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Description)
		}
	case "bowtie":
		fmt.Fprintf(&b, "# Bowtie: %s\n\n## Threats\n\n", top)
		for _, c := range res.Causes {
			fmt.Fprintf(&b, "- %s\n", c.Description)
		}
		b.WriteString("\n## Barriers\n\n")
		for _, rec := range res.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec.Title)
		}
	}
	return b.String()
}

// whyChain picks the highest-confidence cause per bucket, immediate first,
// then pads with remaining causes up to five links.
func whyChain(res *analysis.InvestigationResult) []analysis.Cause {
	byBucket := res.CausesByBucket()
	var chain []analysis.Cause
	seen := map[string]bool{}
	for _, bucket := range []analysis.CauseBucket{analysis.BucketImmediate, analysis.BucketContributing, analysis.BucketSystemic} {
		if causes := byBucket[bucket]; len(causes) > 0 {
			chain = append(chain, causes[0])
			seen[causes[0].Description] = true
		}
	}
	for _, c := range res.Causes {
		if len(chain) >= 5 {
			break
		}
		if !seen[c.Description] {
			chain = append(chain, c)
			seen[c.Description] = true
		}
	}
	return chain
}

func causeCategories(res *analysis.InvestigationResult) []analysis.CauseCategory {
	var out []analysis.CauseCategory
	seen := map[analysis.CauseCategory]bool{}
	for _, c := range res.Causes {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}

func causesIn(res *analysis.InvestigationResult, cat analysis.CauseCategory) []analysis.Cause {
	var out []analysis.Cause
	for _, c := range res.Causes {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}
