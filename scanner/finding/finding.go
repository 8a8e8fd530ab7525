// Package finding holds the result model shared by detectors, enrichers and
// the antipattern registry: one DetectedAntipattern per reported occurrence,
// grouped per antipattern type into an AntipatternResult, with a ScanResult
// covering a whole class.
package finding

// DetectedAntipattern is a single reported occurrence of an antipattern.
// Detectors create it with a static severity; an enricher may later raise
// the severity based on runtime telemetry. After enrichment the instance is
// treated as immutable.
type DetectedAntipattern struct {
	ClassName      string                 `json:"className" yaml:"className"`
	MethodName     string                 `json:"methodName,omitempty" yaml:"methodName,omitempty"`
	LineNumber     int                    `json:"lineNumber" yaml:"lineNumber"`
	CodeBefore     string                 `json:"codeBefore" yaml:"codeBefore"`
	Severity       Severity               `json:"severity" yaml:"severity"`
	SeveritySource SeveritySource         `json:"severitySource" yaml:"severitySource"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RaiseSeverity lifts the instance severity to the given value and tags it as
// runtime-derived. The static severity acts as a floor: a runtime value below
// the current severity never lowers it, though the provenance still flips to
// runtime since telemetry was consulted and applied.
func (d *DetectedAntipattern) RaiseSeverity(severity Severity) {
	if severity > d.Severity {
		d.Severity = severity
	}
	d.SeveritySource = SourceRuntime
}

// AntipatternResult groups every detected instance of one antipattern type
// together with the type-level fix instruction.
type AntipatternResult struct {
	AntipatternType   string                 `json:"antipatternType" yaml:"antipatternType"`
	FixInstruction    string                 `json:"fixInstruction" yaml:"fixInstruction"`
	DetectedInstances []*DetectedAntipattern `json:"detectedInstances" yaml:"detectedInstances"`
}

// ScanResult is the whole-file outcome of one registry scan. Antipattern
// types with zero instances are omitted entirely, so an empty
// AntipatternResults slice means the class is clean.
type ScanResult struct {
	ClassName          string               `json:"className" yaml:"className"`
	Fingerprint        uint64               `json:"fingerprint" yaml:"fingerprint"`
	AntipatternResults []*AntipatternResult `json:"antipatternResults" yaml:"antipatternResults"`
}

// InstanceCount returns the total number of detected instances across all
// antipattern types.
func (r *ScanResult) InstanceCount() int {
	count := 0
	for _, result := range r.AntipatternResults {
		count += len(result.DetectedInstances)
	}
	return count
}
