// Package runtime fetches per-class execution telemetry from an org endpoint
// and merges it into statically detected findings. Every failure mode of the
// fetch is folded into a typed outcome so a scan can always degrade to
// static-only severities.
package runtime

import (
	"fmt"
	"strings"
)

// FetchStatus classifies the outcome of one telemetry fetch.
type FetchStatus int

const (
	// StatusSuccess means a RuntimeReport was retrieved.
	StatusSuccess FetchStatus = iota
	// StatusAccessDenied means the remote explicitly denied the request:
	// the telemetry feature is not provisioned for the caller.
	StatusAccessDenied
	// StatusAPIError covers every other failure, including timeouts and
	// network errors after the retry budget is exhausted.
	StatusAPIError
	// StatusNoOrgConnection means no authenticated connection was available,
	// determined before any fetch was attempted.
	StatusNoOrgConnection
)

func (s FetchStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusAccessDenied:
		return "ACCESS_DENIED"
	case StatusAPIError:
		return "API_ERROR"
	case StatusNoOrgConnection:
		return "NO_ORG_CONNECTION"
	}
	return fmt.Sprintf("FetchStatus(%d)", int(s))
}

// FetchResult is the typed outcome of FetchRuntimeData. Report is non-nil
// only for StatusSuccess.
type FetchResult struct {
	Status  FetchStatus
	Message string
	Report  *RuntimeReport
}

// RuntimeReport is the full telemetry response for one request, scoped to
// that fetch and never cached across scans.
type RuntimeReport struct {
	Status    string                       `json:"status"`
	Message   string                       `json:"message"`
	ClassData map[string]*ClassRuntimeData `json:"classData"`
}

// ClassDataFor returns the telemetry for one class, or nil when the report
// holds no entry for it.
func (r *RuntimeReport) ClassDataFor(className string) *ClassRuntimeData {
	if r == nil {
		return nil
	}
	return r.ClassDataMap()[className]
}

// ClassDataMap returns the per-class telemetry map, never nil.
func (r *RuntimeReport) ClassDataMap() map[string]*ClassRuntimeData {
	if r == nil || r.ClassData == nil {
		return map[string]*ClassRuntimeData{}
	}
	return r.ClassData
}

// ClassRuntimeData is the telemetry for a single class.
type ClassRuntimeData struct {
	Methods         []MethodRuntimeData `json:"methods"`
	SOQLRuntimeData []SOQLRuntimeData   `json:"soqlRuntimeData"`
}

// MethodData returns the telemetry entry for a method, matched
// case-insensitively, or nil.
func (c *ClassRuntimeData) MethodData(methodName string) *MethodRuntimeData {
	if c == nil {
		return nil
	}
	for i := range c.Methods {
		if strings.EqualFold(c.Methods[i].MethodName, methodName) {
			return &c.Methods[i]
		}
	}
	return nil
}

// SOQLData returns the telemetry entry keyed by a query identifier
// (className.LINE_NUMBER), or nil.
func (c *ClassRuntimeData) SOQLData(queryIdentifier string) *SOQLRuntimeData {
	if c == nil {
		return nil
	}
	for i := range c.SOQLRuntimeData {
		if c.SOQLRuntimeData[i].QueryIdentifier == queryIdentifier {
			return &c.SOQLRuntimeData[i]
		}
	}
	return nil
}

// MethodRuntimeData aggregates entrypoint metrics for one method.
type MethodRuntimeData struct {
	MethodName  string              `json:"methodName"`
	Entrypoints []EntrypointMetrics `json:"entrypoints"`
}

// TotalTime sums CPU and database time across every entrypoint.
func (m *MethodRuntimeData) TotalTime() float64 {
	var total float64
	for _, entry := range m.Entrypoints {
		total += entry.SumCPUTime + entry.SumDBTime
	}
	return total
}

// EntrypointMetrics holds the aggregated cost of one top-level execution
// context (trigger, batch job, ...) that reaches the method.
type EntrypointMetrics struct {
	Name       string  `json:"name"`
	AvgCPUTime float64 `json:"avgCpuTime"`
	SumCPUTime float64 `json:"sumCpuTime"`
	AvgDBTime  float64 `json:"avgDbTime"`
	SumDBTime  float64 `json:"sumDbTime"`
}

// SOQLRuntimeData holds the aggregated execution profile of one query site.
type SOQLRuntimeData struct {
	QueryIdentifier    string  `json:"queryIdentifier"`
	ExecutionCount     int64   `json:"executionCount"`
	TotalExecutionTime float64 `json:"totalExecutionTime"`
}
