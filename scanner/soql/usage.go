package soql

import (
	"regexp"
	"strings"
)

// FindDirectFieldAccess returns the subset of fields that the code following
// a query reads through varName.Field-shaped member access. Indexed access
// (varName[i].Field) counts as well. Matching is case-insensitive since the
// analyzed language resolves identifiers case-insensitively.
func FindDirectFieldAccess(varName string, codeAfter string, fields []string) []string {
	if varName == "" || codeAfter == "" {
		return nil
	}
	var used []string
	for _, field := range fields {
		pattern := `(?i)\b` + regexp.QuoteMeta(varName) + `(\[[^\]]*\])?\s*\.\s*` + regexp.QuoteMeta(normalizeFieldName(field)) + `\b`
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(codeAfter) {
			used = append(used, field)
		}
	}
	return used
}

// FindColumnsUsedInLaterSOQLs treats a field as used when a later query in
// the same method both references the variable context (a :varName bind or a
// varName.Field expression inside the query) and selects the same column.
// This approximates "the fetched value was propagated into a follow-up query".
func FindColumnsUsedInLaterSOQLs(varName string, laterQueries []string, fields []string) []string {
	if varName == "" || len(laterQueries) == 0 {
		return nil
	}
	bindRe := regexp.MustCompile(`(?i):\s*` + regexp.QuoteMeta(varName) + `\b`)
	memberRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(varName) + `\s*\.`)

	selected := map[string]bool{}
	for _, query := range laterQueries {
		if !bindRe.MatchString(query) && !memberRe.MatchString(query) {
			continue
		}
		for _, field := range ExtractFields(query) {
			selected[strings.ToLower(normalizeFieldName(field))] = true
		}
	}
	if len(selected) == 0 {
		return nil
	}

	var used []string
	for _, field := range fields {
		if selected[strings.ToLower(normalizeFieldName(field))] {
			used = append(used, field)
		}
	}
	return used
}

// normalizeFieldName drops an alias suffix ("Name n" -> "Name") so usage
// matching operates on the column itself.
func normalizeFieldName(field string) string {
	trimmed := strings.TrimSpace(field)
	if idx := strings.IndexAny(trimmed, " \t"); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
