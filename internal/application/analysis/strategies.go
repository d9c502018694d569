package analysis

import (
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
)

// strategy describes the extraction contract for one evidence type: what the
// oracle is asked to pull out and which top-level keys must come back.
type strategy struct {
	Instructions string
	RequiredKeys []string
}

// strategies is the static type -> extraction contract table. Dispatch is by
// enum; an unmapped type fails with evidence.ErrUnsupportedType before any
// oracle call is made.
var strategies = map[evidence.Type]strategy{
	evidence.TypeWitnessStatement: {
		Instructions: "Analyze this witness statement. Extract observed facts, a timeline of events with times where mentioned, people and equipment named, actions taken by the witness, and any uncertainty the witness expresses.",
		RequiredKeys: []string{"key_facts", "timeline_events"},
	},
	evidence.TypeSCADALog: {
		Instructions: "Analyze this SCADA/DCS log excerpt. Extract alarm activations, process parameter deviations, operator actions such as setpoint changes and valve operations, and a precise timeline of entries.",
		RequiredKeys: []string{"key_facts", "timeline_events"},
	},
	evidence.TypeMaintenanceRecord: {
		Instructions: "Analyze this maintenance record. Extract work performed, equipment affected, deviations from procedure, overdue or deferred items, and dated events.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypePhoto: {
		Instructions: "Analyze this description of an incident scene photograph. Extract visible damage, equipment condition, safety violations, and environmental conditions.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypePIDDrawing: {
		Instructions: "Analyze this P&ID description. Extract equipment identifiers, instrumentation, safety devices such as relief valves and interlocks, and process connections relevant to the incident.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypeHAZOPReport: {
		Instructions: "Analyze this HAZOP/risk study. Extract identified hazards, risk ratings, open recommendations, areas of concern, and previous incidents referenced.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypeProcedure: {
		Instructions: "Analyze this operating procedure. Extract required steps, verification requirements, and gaps or ambiguities relevant to the incident.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypeAuditReport: {
		Instructions: "Analyze this audit report. Extract findings, non-conformances, standard references, and open corrective items.",
		RequiredKeys: []string{"key_facts"},
	},
	evidence.TypeVideo: {
		Instructions: "Analyze this description of video evidence. Extract the sequence of observable events with timestamps where available.",
		RequiredKeys: []string{"key_facts"},
	},
}
