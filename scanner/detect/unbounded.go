package detect

import (
	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/soql"
)

// UnboundedQueryDetector reports queries whose outer clause carries neither a
// WHERE nor a LIMIT restriction. Sub-selects are stripped before the check so
// a bounded subquery never masks an unbounded outer query, and vice versa.
// Multiple independent queries on one line are tested independently.
type UnboundedQueryDetector struct{}

// NewUnboundedQueryDetector creates the detector. Stateless, safe to share.
func NewUnboundedQueryDetector() *UnboundedQueryDetector {
	return &UnboundedQueryDetector{}
}

// Type returns the antipattern type identifier.
func (d *UnboundedQueryDetector) Type() string {
	return TypeUnboundedQuery
}

// Detect tests every query expression found in the class.
func (d *UnboundedQueryDetector) Detect(file *apex.File) []*finding.DetectedAntipattern {
	var instances []*finding.DetectedAntipattern

	for _, query := range file.Queries {
		if soql.HasBoundingClause(query.Text) {
			continue
		}

		severity := finding.SeverityMedium
		if query.InLoop {
			severity = finding.SeverityHigh
		}

		instances = append(instances, &finding.DetectedAntipattern{
			ClassName:      file.ClassName,
			MethodName:     query.MethodName,
			LineNumber:     query.StartLine,
			CodeBefore:     file.Snippet(query.StartLine, query.EndLine),
			Severity:       severity,
			SeveritySource: finding.SourceStatic,
			Metadata: map[string]interface{}{
				"soqlQuery": query.Text,
				"inLoop":    query.InLoop,
			},
		})
	}

	return instances
}
