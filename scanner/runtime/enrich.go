package runtime

import (
	"fmt"

	"github.com/apexinsight/apexinsight/scanner/finding"
)

const (
	// DefaultMethodTimeThreshold is the aggregated CPU+DB time in
	// milliseconds above which a method is considered hot.
	DefaultMethodTimeThreshold = 1000.0

	// DefaultQueryCostThreshold is the total execution time in milliseconds
	// above which a query site is considered hot.
	DefaultQueryCostThreshold = 1000.0
)

// MethodEnricher raises a finding's severity when telemetry shows the
// enclosing method is expensive across its entrypoints.
type MethodEnricher struct {
	threshold float64
}

// NewMethodEnricher creates a method-call-frequency based enricher. A
// non-positive threshold falls back to the default.
func NewMethodEnricher(threshold float64) *MethodEnricher {
	if threshold <= 0 {
		threshold = DefaultMethodTimeThreshold
	}
	return &MethodEnricher{threshold: threshold}
}

// Enrich looks up the enclosing method's aggregated metrics. When an entry
// exists and its total time crosses the threshold, the severity is raised to
// HIGH with runtime provenance. The static severity is a floor: telemetry
// never lowers it or suppresses the finding. Without a matching entry the
// instance passes through unchanged.
func (e *MethodEnricher) Enrich(instance *finding.DetectedAntipattern, data *ClassRuntimeData) {
	if instance == nil || data == nil || instance.MethodName == "" {
		return
	}
	methodData := data.MethodData(instance.MethodName)
	if methodData == nil {
		return
	}
	if methodData.TotalTime() >= e.threshold {
		instance.RaiseSeverity(finding.SeverityHigh)
	}
}

// QueryEnricher raises a finding's severity when telemetry shows the query
// site itself is expensive.
type QueryEnricher struct {
	threshold float64
}

// NewQueryEnricher creates a query-cost based enricher. A non-positive
// threshold falls back to the default.
func NewQueryEnricher(threshold float64) *QueryEnricher {
	if threshold <= 0 {
		threshold = DefaultQueryCostThreshold
	}
	return &QueryEnricher{threshold: threshold}
}

// Enrich looks up telemetry keyed by the query identifier
// (className.LINE_NUMBER). When the site's total execution time crosses the
// threshold the severity is raised to HIGH with runtime provenance. No
// matching entry leaves the instance untouched.
func (e *QueryEnricher) Enrich(instance *finding.DetectedAntipattern, data *ClassRuntimeData) {
	if instance == nil || data == nil {
		return
	}
	identifier := QueryIdentifier(instance.ClassName, instance.LineNumber)
	soqlData := data.SOQLData(identifier)
	if soqlData == nil {
		return
	}
	if soqlData.TotalExecutionTime >= e.threshold {
		instance.RaiseSeverity(finding.SeverityHigh)
	}
}

// QueryIdentifier builds the telemetry key for one query site.
func QueryIdentifier(className string, lineNumber int) string {
	return fmt.Sprintf("%s.%d", className, lineNumber)
}
