package scanner

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/runtime"
)

// Registry holds the registered antipattern modules in registration order,
// which is also the order of the grouped results in a ScanResult.
type Registry struct {
	modules []*AntipatternModule
	logger  hclog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger hclog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	registry := &Registry{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// Register appends a module. Order is stable and determines output order.
func (r *Registry) Register(module *AntipatternModule) {
	r.modules = append(r.modules, module)
}

// Scan runs every registered module against one class and groups the findings
// per antipattern type. Modules that detect nothing are omitted from the
// result entirely. classData may be nil, in which case every severity stays
// static. Scan always returns a well-formed result: detector failures are
// contained per module and a parse failure yields an empty result.
func (r *Registry) Scan(ctx context.Context, className string, source []byte, classData *runtime.ClassRuntimeData) *finding.ScanResult {
	result := &finding.ScanResult{
		ClassName:   className,
		Fingerprint: Fingerprint(className, source),
	}

	file, err := apex.Parse(ctx, className, source)
	if err != nil {
		r.logger.Warn("failed to parse class, returning empty result", "className", className, "error", err)
		return result
	}

	for _, module := range r.modules {
		instances := r.safeDetect(module, file)
		if len(instances) == 0 {
			continue
		}
		if module.Enricher != nil && classData != nil {
			for _, instance := range instances {
				module.Enricher.Enrich(instance, classData)
			}
		}
		result.AntipatternResults = append(result.AntipatternResults, &finding.AntipatternResult{
			AntipatternType:   module.Detector.Type(),
			FixInstruction:    module.Recommender.FixInstruction(),
			DetectedInstances: instances,
		})
	}
	return result
}

// ScanWithTelemetry fetches runtime telemetry for the class through the given
// service and connection, then scans. Any fetch outcome other than SUCCESS
// degrades to a static-only scan; the scan itself always completes.
func (r *Registry) ScanWithTelemetry(ctx context.Context, service *runtime.Service, conn runtime.Connection,
	orgID, userID, className string, source []byte) (*finding.ScanResult, runtime.FetchStatus) {

	request := &runtime.Request{
		RequestID: runtime.GenerateRequestID(orgID, userID),
		OrgID:     orgID,
		Classes:   []string{className},
	}
	fetch := service.FetchRuntimeData(ctx, conn, request)

	var classData *runtime.ClassRuntimeData
	if fetch.Status == runtime.StatusSuccess {
		classData = fetch.Report.ClassDataFor(className)
	} else {
		r.logger.Info("runtime telemetry unavailable, using static severities",
			"className", className, "status", fetch.Status.String(), "message", fetch.Message)
	}

	return r.Scan(ctx, className, source, classData), fetch.Status
}

// safeDetect runs one detector, containing panics at the module boundary so a
// failing detector contributes zero instances instead of aborting the scan.
func (r *Registry) safeDetect(module *AntipatternModule, file *apex.File) (instances []*finding.DetectedAntipattern) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("detector failed, skipping its results",
				"antipatternType", module.Detector.Type(), "className", file.ClassName, "panic", rec)
			instances = nil
		}
	}()
	return module.Detector.Detect(file)
}
