// Package report converts scan results into interchange formats.
package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/apexinsight/apexinsight/scanner/finding"
)

const toolName = "ApexInsight"
const toolURI = "https://github.com/apexinsight/apexinsight"

// ToSarif converts a scan result into a SARIF log with one rule per
// antipattern type and one result per detected instance. artifactURI is the
// path of the scanned file as it should appear in result locations.
func ToSarif(result *finding.ScanResult, artifactURI string) (*sarif.Report, error) {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, group := range result.AntipatternResults {
		rule := run.AddRule(group.AntipatternType).
			WithDescription(group.FixInstruction)

		for _, instance := range group.DetectedInstances {
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(artifactURI)).
					WithRegion(sarif.NewRegion().WithStartLine(instance.LineNumber)),
			)

			message := fmt.Sprintf("%s in %s.%s: %s",
				group.AntipatternType, instance.ClassName, instance.MethodName, group.FixInstruction)
			if instance.MethodName == "" {
				message = fmt.Sprintf("%s in %s: %s",
					group.AntipatternType, instance.ClassName, group.FixInstruction)
			}

			sarifResult := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(message)).
				WithLevel(toSarifLevel(instance.Severity)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(sarifResult)
		}
	}
	sarifReport.AddRun(run)
	return sarifReport, nil
}

// WriteSarif renders the scan result as pretty-printed SARIF.
func WriteSarif(w io.Writer, result *finding.ScanResult, artifactURI string) error {
	sarifReport, err := ToSarif(result, artifactURI)
	if err != nil {
		return err
	}
	return sarifReport.PrettyWrite(w)
}

func toSarifLevel(severity finding.Severity) string {
	switch severity {
	case finding.SeverityCritical, finding.SeverityHigh:
		return "error"
	case finding.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
