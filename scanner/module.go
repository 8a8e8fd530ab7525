// Package scanner binds detectors, recommenders and runtime enrichers into
// pluggable antipattern modules and orchestrates a full scan of one class.
package scanner

import (
	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/runtime"
)

// Detector walks a parsed class once and emits raw findings. Implementations
// must hold no per-scan state so a single instance stays safe under
// concurrent scans.
type Detector interface {
	// Type returns the antipattern type identifier the detector reports.
	Type() string
	// Detect returns every occurrence found in the class.
	Detect(file *apex.File) []*finding.DetectedAntipattern
}

// Recommender produces the type-level fix instruction attached to a result
// group.
type Recommender interface {
	FixInstruction() string
}

// Enricher reconciles a statically detected instance with runtime telemetry,
// possibly raising its severity. A missing telemetry entry must leave the
// instance unchanged.
type Enricher interface {
	Enrich(instance *finding.DetectedAntipattern, data *runtime.ClassRuntimeData)
}

// AntipatternModule is one pluggable unit: a detector, its recommender and an
// optional runtime enricher.
type AntipatternModule struct {
	Detector    Detector
	Recommender Recommender
	Enricher    Enricher
}
