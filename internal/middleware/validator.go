package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
)

// Input validation and sanitization utilities

var evidenceTypes = map[string]bool{
	"witness_statement":  true,
	"scada_log":          true,
	"maintenance_record": true,
	"photo":              true,
	"pid_drawing":        true,
	"hazop_report":       true,
	"procedure":          true,
	"audit_report":       true,
	"video":              true,
}

// ValidateEvidenceType checks if the evidence type is recognized
func ValidateEvidenceType(t string) error {
	if !evidenceTypes[strings.ToLower(t)] {
		return fmt.Errorf("invalid evidence type: %s", t)
	}
	return nil
}

// ValidateSeverity checks incident severity against the accepted scale
func ValidateSeverity(s string) error {
	if !cases.RecognizedSeverities[cases.Severity(strings.ToLower(s))] {
		return fmt.Errorf("invalid severity: %s (allowed: minor, moderate, major, catastrophic)", s)
	}
	return nil
}

// ValidateReportTemplate checks the regulatory template name
func ValidateReportTemplate(tpl string) error {
	allowed := map[string]bool{
		"OSHA_PSM": true, "Seveso_III": true, "NFPA_921": true,
		"API_RP_754": true, "ISO_45001": true,
	}
	if !allowed[tpl] {
		return fmt.Errorf("invalid report template: %s", tpl)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateCaseID validates case ID format
func ValidateCaseID(caseID string) error {
	if caseID == "" {
		return fmt.Errorf("case ID cannot be empty")
	}

	// CASE- prefix followed by a UUID
	pattern := `^CASE-[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, caseID)
	if !matched {
		return fmt.Errorf("invalid case ID format")
	}

	return nil
}

// ValidateEvidenceID validates evidence ID format
func ValidateEvidenceID(id string) error {
	if id == "" {
		return fmt.Errorf("evidence ID cannot be empty")
	}

	pattern := `^EVD-[0-9]{3,}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid evidence ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
