package scanner

import (
	"github.com/apexinsight/apexinsight/scanner/detect"
	"github.com/apexinsight/apexinsight/scanner/recommend"
	"github.com/apexinsight/apexinsight/scanner/runtime"
)

// Thresholds tune when runtime telemetry raises a finding's severity.
type Thresholds struct {
	// MethodTimeMs is the aggregated CPU+DB time above which a method
	// counts as hot.
	MethodTimeMs float64
	// QueryCostMs is the total execution time above which a query site
	// counts as hot.
	QueryCostMs float64
}

// NewDefaultRegistry builds a registry with the three built-in antipattern
// modules in their canonical order: global describe lookups, unbounded
// queries, unused selected fields.
func NewDefaultRegistry(thresholds Thresholds, opts ...Option) *Registry {
	registry := NewRegistry(opts...)

	registry.Register(&AntipatternModule{
		Detector:    detect.NewGlobalDescribeDetector(),
		Recommender: recommend.ForGlobalDescribe(),
		Enricher:    runtime.NewMethodEnricher(thresholds.MethodTimeMs),
	})
	registry.Register(&AntipatternModule{
		Detector:    detect.NewUnboundedQueryDetector(),
		Recommender: recommend.ForUnboundedQuery(),
		Enricher:    runtime.NewQueryEnricher(thresholds.QueryCostMs),
	})
	registry.Register(&AntipatternModule{
		Detector:    detect.NewUnusedFieldsDetector(),
		Recommender: recommend.ForUnusedFields(),
		Enricher:    runtime.NewQueryEnricher(thresholds.QueryCostMs),
	})

	return registry
}
