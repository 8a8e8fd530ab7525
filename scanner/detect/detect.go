// Package detect implements the antipattern detectors. Each detector walks a
// parsed class once and emits raw findings with statically assigned
// severities; runtime enrichment happens later at the registry level.
package detect

// Antipattern type identifiers. They name the detected pattern and key the
// grouped results in a ScanResult.
const (
	TypeGlobalDescribe = "UnsafeGlobalDescribe"
	TypeUnboundedQuery = "SOQLWithoutWhereOrLimit"
	TypeUnusedFields   = "UnusedSOQLFields"
)
