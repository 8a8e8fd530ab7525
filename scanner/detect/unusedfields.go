package detect

import (
	"regexp"
	"strings"

	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/soql"
)

// UnusedFieldsDetector reports queries that select fields never subsequently
// used. A query is skipped entirely when its result cannot be traced: no
// assigned variable within the declaration window, the variable is returned
// from the method, it is a class-level field, or the complete result is
// consumed wholesale. A finding is emitted only when some but not all of the
// meaningful selected fields go unused.
type UnusedFieldsDetector struct{}

// NewUnusedFieldsDetector creates the detector. Stateless, safe to share.
func NewUnusedFieldsDetector() *UnusedFieldsDetector {
	return &UnusedFieldsDetector{}
}

// Type returns the antipattern type identifier.
func (d *UnusedFieldsDetector) Type() string {
	return TypeUnusedFields
}

// Detect analyzes every query in the class. Any internal failure is contained
// here and yields an empty finding list for the whole class rather than
// partial output.
func (d *UnusedFieldsDetector) Detect(file *apex.File) (instances []*finding.DetectedAntipattern) {
	defer func() {
		if r := recover(); r != nil {
			instances = nil
		}
	}()

	for _, query := range file.Queries {
		if instance := d.analyzeQuery(file, query); instance != nil {
			instances = append(instances, instance)
		}
	}
	return instances
}

// analyzeQuery runs one query through the exclusion gates and, when it
// survives them, computes the used/unused field split.
func (d *UnusedFieldsDetector) analyzeQuery(file *apex.File, query *apex.Query) *finding.DetectedAntipattern {
	varName := query.AssignedVariable
	if varName == "" {
		return nil
	}
	if file.IsClassField(varName) {
		return nil
	}
	method := file.EnclosingMethod(query.StartByte)
	if file.IsReturned(method, varName) {
		return nil
	}

	codeAfter := file.CodeAfter(query)
	if consumedWholesale(varName, codeAfter) {
		return nil
	}

	selected := soql.ExcludeSystemFields(query.Fields)
	if len(selected) == 0 {
		return nil
	}

	used := map[string]bool{}
	for _, field := range soql.FindDirectFieldAccess(varName, codeAfter, selected) {
		used[strings.ToLower(field)] = true
	}
	for _, alias := range iterationAliases(varName, codeAfter) {
		for _, field := range soql.FindDirectFieldAccess(alias, codeAfter, selected) {
			used[strings.ToLower(field)] = true
		}
	}

	laterQueries := file.LaterQueries(query)
	crossUsed := soql.FindColumnsUsedInLaterSOQLs(varName, laterQueries, selected)
	for _, field := range crossUsed {
		used[strings.ToLower(field)] = true
	}

	var unused []string
	for _, field := range selected {
		if !used[strings.ToLower(field)] {
			unused = append(unused, field)
		}
	}

	// Emit only when some but not all meaningful fields are unused. An
	// all-unused set almost always means the result is consumed in a way
	// the heuristics cannot see.
	if len(unused) == 0 || len(unused) >= len(selected) {
		return nil
	}

	severity := finding.SeverityMedium
	if query.InLoop {
		severity = finding.SeverityHigh
	}

	return &finding.DetectedAntipattern{
		ClassName:      file.ClassName,
		MethodName:     query.MethodName,
		LineNumber:     query.StartLine,
		CodeBefore:     file.Snippet(query.StartLine, query.EndLine),
		Severity:       severity,
		SeveritySource: finding.SourceStatic,
		Metadata: map[string]interface{}{
			"unusedFields":     unused,
			"originalFields":   query.Fields,
			"assignedVariable": varName,
			"inLoop":           query.InLoop,
			"returned":         false,
			"hasNestedQuery":   query.Text != soql.RemoveSubqueries(query.Text),
			"crossQueryUsage":  len(crossUsed) > 0,
			"completeUsage":    false,
		},
	}
}

// consumedWholesale reports whether the complete query result is consumed as
// a unit: passed as a call argument, serialized, or handed to a DML
// statement. Per-element iteration with field access does not count.
func consumedWholesale(varName, codeAfter string) bool {
	quoted := regexp.QuoteMeta(varName)

	argRe := regexp.MustCompile(`(?i)[(,]\s*` + quoted + `\s*[,)]`)
	if argRe.MatchString(codeAfter) {
		return true
	}

	dmlTargetRe := regexp.MustCompile(`(?i)\b(insert|update|upsert|delete|undelete)\s+` + quoted + `\b`)
	return dmlTargetRe.MatchString(codeAfter)
}

// iterationAliases returns loop variables introduced by for-each statements
// iterating over varName, so field access through the element variable counts
// as usage of the query result.
func iterationAliases(varName, codeAfter string) []string {
	aliasRe := regexp.MustCompile(`(?i)for\s*\(\s*[\w.<>,\s]+?\s+(\w+)\s*:\s*` + regexp.QuoteMeta(varName) + `\b`)
	var aliases []string
	for _, match := range aliasRe.FindAllStringSubmatch(codeAfter, -1) {
		aliases = append(aliases, match[1])
	}
	return aliases
}
