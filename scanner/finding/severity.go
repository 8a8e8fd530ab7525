package finding

import (
	"encoding/json"
	"fmt"
)

// Severity ranks how urgently a detected antipattern should be addressed.
// The ordering is meaningful: a higher value always outranks a lower one.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// SeveritySource records whether a severity was assigned by the static
// heuristic or confirmed/adjusted by runtime telemetry.
type SeveritySource int

const (
	SourceStatic SeveritySource = iota
	SourceRuntime
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalJSON renders the severity as its symbolic name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a symbolic severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a symbolic name back to a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	}
	return 0, fmt.Errorf("unknown severity: %q", name)
}

func (s SeveritySource) String() string {
	if s == SourceRuntime {
		return "runtime"
	}
	return "static"
}

// MarshalJSON renders the provenance tag as "static" or "runtime".
func (s SeveritySource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a provenance tag.
func (s *SeveritySource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "static":
		*s = SourceStatic
	case "runtime":
		*s = SourceRuntime
	default:
		return fmt.Errorf("unknown severity source: %q", name)
	}
	return nil
}
