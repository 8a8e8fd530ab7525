// Package soql provides text-level analysis helpers for SOQL query
// expressions: selected-field extraction, subquery stripping, bounding-clause
// checks and field-usage matching against surrounding code.
package soql

import (
	"regexp"
	"strings"
)

var (
	selectRe = regexp.MustCompile(`(?i)\bselect\b`)
	fromRe   = regexp.MustCompile(`(?i)\bfrom\b`)
)

// aggregateFunctions are SOQL aggregate pseudo-fields that never count as
// meaningfully "unused" when selected.
var aggregateFunctions = []string{"count", "count_distinct", "sum", "avg", "min", "max"}

// ExtractFields returns the fields selected by the outer clause of a SOQL
// query, in source order. Nested sub-selects are stripped first so their
// columns never leak into the outer field list.
func ExtractFields(query string) []string {
	outer := RemoveSubqueries(query)

	selectLoc := selectRe.FindStringIndex(outer)
	if selectLoc == nil {
		return nil
	}
	rest := outer[selectLoc[1]:]
	fromLoc := fromRe.FindStringIndex(rest)
	if fromLoc == nil {
		return nil
	}

	var fields []string
	for _, raw := range strings.Split(rest[:fromLoc[0]], ",") {
		field := strings.TrimSpace(raw)
		if field == "" {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// ExcludeSystemFields removes implicit system fields from the list: the Id
// primary key and aggregate pseudo-fields such as COUNT(Id). Their absence
// from later code is not a signal that the query over-selects.
func ExcludeSystemFields(fields []string) []string {
	var kept []string
	for _, field := range fields {
		if IsSystemField(field) {
			continue
		}
		kept = append(kept, field)
	}
	return kept
}

// IsSystemField reports whether a selected field is an implicit system field.
func IsSystemField(field string) bool {
	normalized := strings.ToLower(strings.TrimSpace(field))
	if normalized == "id" {
		return true
	}
	parenIdx := strings.Index(normalized, "(")
	if parenIdx == -1 {
		return false
	}
	function := strings.TrimSpace(normalized[:parenIdx])
	for _, aggregate := range aggregateFunctions {
		if function == aggregate {
			return true
		}
	}
	return false
}

// RemoveSubqueries strips balanced parenthesized sub-selects from a query so
// only the outer clause remains. Parentheses inside single-quoted string
// literals are ignored, both when opening a sub-select and while balancing.
func RemoveSubqueries(query string) string {
	var builder strings.Builder
	runes := []rune(query)

	outerInString := false
	for i := 0; i < len(runes); {
		if runes[i] == '\'' && !escaped(runes, i) {
			outerInString = !outerInString
		}
		if !outerInString && runes[i] == '(' && startsSubSelect(runes[i+1:]) {
			depth := 1
			j := i + 1
			inString := false
			for j < len(runes) && depth > 0 {
				switch {
				case runes[j] == '\'' && !escaped(runes, j):
					inString = !inString
				case inString:
				case runes[j] == '(':
					depth++
				case runes[j] == ')':
					depth--
				}
				j++
			}
			i = j
			continue
		}
		builder.WriteRune(runes[i])
		i++
	}
	return builder.String()
}

// HasBoundingClause reports whether the outer clause of the query carries a
// WHERE or LIMIT restriction. Sub-selects are stripped first so a bounded
// subquery never masks an unbounded outer query, and vice versa.
func HasBoundingClause(query string) bool {
	outer := stripStringLiterals(RemoveSubqueries(query))
	return boundingRe.MatchString(outer)
}

var boundingRe = regexp.MustCompile(`(?i)\b(where|limit)\b`)

// startsSubSelect reports whether the text following an opening parenthesis
// begins a SELECT statement.
func startsSubSelect(rest []rune) bool {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
		i++
	}
	if i+6 > len(rest) {
		return false
	}
	return strings.EqualFold(string(rest[i:i+6]), "select")
}

func escaped(runes []rune, idx int) bool {
	backslashes := 0
	for i := idx - 1; i >= 0 && runes[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 1
}

// stripStringLiterals blanks single-quoted literal contents so keywords inside
// them are not mistaken for clauses.
func stripStringLiterals(text string) string {
	runes := []rune(text)
	inString := false
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\'' && !escaped(runes, i) {
			inString = !inString
			continue
		}
		if inString {
			runes[i] = ' '
		}
	}
	return string(runes)
}
