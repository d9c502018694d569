package docgen

// Regulatory template registry. Each template names the sections its
// framework expects, in the order they appear in the rendered document.
type regTemplate struct {
	Title    string
	Sections []string
}

var regTemplates = map[string]regTemplate{
	"OSHA_PSM": {
		Title: "Process Safety Incident Investigation Report (29 CFR 1910.119)",
		Sections: []string{
			"incident_overview", "timeline", "inconsistencies",
			"root_causes", "recommendations", "evidence_register",
		},
	},
	"Seveso_III": {
		Title: "Major Accident Report (Directive 2012/18/EU)",
		Sections: []string{
			"incident_overview", "timeline", "root_causes",
			"recommendations", "evidence_register",
		},
	},
	"NFPA_921": {
		Title: "Fire and Explosion Investigation Report (NFPA 921)",
		Sections: []string{
			"incident_overview", "timeline", "inconsistencies",
			"root_causes", "evidence_register", "recommendations",
		},
	},
	"API_RP_754": {
		Title: "Process Safety Event Report (API RP 754)",
		Sections: []string{
			"incident_overview", "timeline", "root_causes",
			"recommendations",
		},
	},
	"ISO_45001": {
		Title: "Occupational Incident Investigation Report (ISO 45001)",
		Sections: []string{
			"incident_overview", "timeline", "inconsistencies",
			"root_causes", "recommendations", "evidence_register",
		},
	},
}

var reportFormats = map[string]bool{"md": true, "json": true}

var diagramTypes = map[string]bool{
	"5_why": true, "fishbone": true, "fault_tree": true,
	"event_tree": true, "bowtie": true,
}

var diagramFormats = map[string]bool{"dot": true, "md": true}

// Section and field labels per supported language. Missing languages fall
// back to English.
var labels = map[string]map[string]string{
	"en": {
		"incident_overview": "Incident Overview",
		"timeline":          "Event Timeline",
		"inconsistencies":   "Evidence Inconsistencies",
		"root_causes":       "Root Cause Analysis",
		"recommendations":   "Corrective and Preventive Actions",
		"evidence_register": "Evidence Register",
		"unanchored":        "Undated Facts",
		"degraded_notice":   "This report was generated from partially degraded analysis.",
		"immediate":         "Immediate Causes",
		"contributing":      "Contributing Causes",
		"systemic":          "Systemic Causes",
	},
	"tr": {
		"incident_overview": "Olay Özeti",
		"timeline":          "Olay Zaman Çizelgesi",
		"inconsistencies":   "Kanıt Tutarsızlıkları",
		"root_causes":       "Kök Neden Analizi",
		"recommendations":   "Düzeltici ve Önleyici Faaliyetler",
		"evidence_register": "Kanıt Kaydı",
		"unanchored":        "Tarihsiz Bulgular",
		"degraded_notice":   "Bu rapor kısmen eksik analizden üretilmiştir.",
		"immediate":         "Doğrudan Nedenler",
		"contributing":      "Katkıda Bulunan Nedenler",
		"systemic":          "Sistemik Nedenler",
	},
	"es": {
		"incident_overview": "Resumen del Incidente",
		"timeline":          "Cronología de Eventos",
		"inconsistencies":   "Inconsistencias de Evidencia",
		"root_causes":       "Análisis de Causa Raíz",
		"recommendations":   "Acciones Correctivas y Preventivas",
		"evidence_register": "Registro de Evidencia",
		"unanchored":        "Hechos sin Fecha",
		"degraded_notice":   "Este informe se generó a partir de un análisis parcialmente degradado.",
		"immediate":         "Causas Inmediatas",
		"contributing":      "Causas Contribuyentes",
		"systemic":          "Causas Sistémicas",
	},
	"fr": {
		"incident_overview": "Aperçu de l'Incident",
		"timeline":          "Chronologie des Événements",
		"inconsistencies":   "Incohérences des Preuves",
		"root_causes":       "Analyse des Causes Racines",
		"recommendations":   "Actions Correctives et Préventives",
		"evidence_register": "Registre des Preuves",
		"unanchored":        "Faits non Datés",
		"degraded_notice":   "Ce rapport provient d'une analyse partiellement dégradée.",
		"immediate":         "Causes Immédiates",
		"contributing":      "Causes Contributives",
		"systemic":          "Causes Systémiques",
	},
	"de": {
		"incident_overview": "Ereignisübersicht",
		"timeline":          "Ereignis-Zeitachse",
		"inconsistencies":   "Widersprüche in den Beweisen",
		"root_causes":       "Ursachenanalyse",
		"recommendations":   "Korrektur- und Vorbeugemaßnahmen",
		"evidence_register": "Beweisregister",
		"unanchored":        "Undatierte Fakten",
		"degraded_notice":   "Dieser Bericht basiert auf einer teilweise unvollständigen Analyse.",
		"immediate":         "Unmittelbare Ursachen",
		"contributing":      "Beitragende Ursachen",
		"systemic":          "Systemische Ursachen",
	},
}

func label(lang, key string) string {
	if m, ok := labels[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return labels["en"][key]
}
