package scanner_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexinsight/apexinsight/scanner"
	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/detect"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/recommend"
	"github.com/apexinsight/apexinsight/scanner/runtime"
)

const mixedClassSource = `public class Mixed {
    public void run() {
        Map<String, Schema.SObjectType> types = Schema.getGlobalDescribe();
        System.debug(types);
        List<Account> everything = [SELECT Id, Name FROM Account];
        System.debug(everything[0].Name);
        List<Contact> contacts = [SELECT Id, LastName, Email FROM Contact LIMIT 10];
        System.debug(contacts[0].LastName);
    }
}`

func TestDefaultRegistry_Scan(t *testing.T) {
	registry := scanner.NewDefaultRegistry(scanner.Thresholds{})
	result := registry.Scan(context.Background(), "Mixed", []byte(mixedClassSource), nil)

	require.NotNil(t, result)
	assert.Equal(t, "Mixed", result.ClassName)
	assert.Equal(t, scanner.Fingerprint("Mixed", []byte(mixedClassSource)), result.Fingerprint)

	require.Len(t, result.AntipatternResults, 3)
	assert.Equal(t, detect.TypeGlobalDescribe, result.AntipatternResults[0].AntipatternType)
	assert.Equal(t, detect.TypeUnboundedQuery, result.AntipatternResults[1].AntipatternType)
	assert.Equal(t, detect.TypeUnusedFields, result.AntipatternResults[2].AntipatternType)

	for _, group := range result.AntipatternResults {
		assert.NotEmpty(t, group.FixInstruction)
		require.Len(t, group.DetectedInstances, 1)
		assert.Equal(t, finding.SourceStatic, group.DetectedInstances[0].SeveritySource)
	}

	assert.Equal(t, 3, result.InstanceCount())
	assert.Equal(t, 3, result.AntipatternResults[0].DetectedInstances[0].LineNumber)
	assert.Equal(t, 5, result.AntipatternResults[1].DetectedInstances[0].LineNumber)
	assert.Equal(t, 7, result.AntipatternResults[2].DetectedInstances[0].LineNumber)
}

func TestDefaultRegistry_CleanClassOmitsGroups(t *testing.T) {
	source := `public class Clean {
    public void run() {
        List<Account> accs = [SELECT Id FROM Account LIMIT 1];
        System.debug(accs);
    }
}`

	registry := scanner.NewDefaultRegistry(scanner.Thresholds{})
	result := registry.Scan(context.Background(), "Clean", []byte(source), nil)

	assert.Equal(t, "Clean", result.ClassName)
	assert.NotZero(t, result.Fingerprint)
	assert.Empty(t, result.AntipatternResults)
	assert.Equal(t, 0, result.InstanceCount())
}

func TestDefaultRegistry_ScanIsDeterministic(t *testing.T) {
	registry := scanner.NewDefaultRegistry(scanner.Thresholds{})

	first := registry.Scan(context.Background(), "Mixed", []byte(mixedClassSource), nil)
	second := registry.Scan(context.Background(), "Mixed", []byte(mixedClassSource), nil)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestDefaultRegistry_EnrichmentRaisesSeverity(t *testing.T) {
	classData := &runtime.ClassRuntimeData{
		Methods: []runtime.MethodRuntimeData{
			{
				MethodName: "run",
				Entrypoints: []runtime.EntrypointMetrics{
					{Name: "Trigger", SumCPUTime: 4000, SumDBTime: 1000},
				},
			},
		},
		SOQLRuntimeData: []runtime.SOQLRuntimeData{
			{QueryIdentifier: "Mixed.5", ExecutionCount: 100, TotalExecutionTime: 9000},
		},
	}

	registry := scanner.NewDefaultRegistry(scanner.Thresholds{MethodTimeMs: 1000, QueryCostMs: 1000})
	result := registry.Scan(context.Background(), "Mixed", []byte(mixedClassSource), classData)
	require.Len(t, result.AntipatternResults, 3)

	describe := result.AntipatternResults[0].DetectedInstances[0]
	assert.Equal(t, finding.SeverityHigh, describe.Severity)
	assert.Equal(t, finding.SourceRuntime, describe.SeveritySource)

	unbounded := result.AntipatternResults[1].DetectedInstances[0]
	assert.Equal(t, finding.SeverityHigh, unbounded.Severity)
	assert.Equal(t, finding.SourceRuntime, unbounded.SeveritySource)

	// No telemetry entry matches the unused-fields site on line 7.
	unused := result.AntipatternResults[2].DetectedInstances[0]
	assert.Equal(t, finding.SeverityMedium, unused.Severity)
	assert.Equal(t, finding.SourceStatic, unused.SeveritySource)
}

type panicDetector struct{}

func (panicDetector) Type() string { return "Exploder" }

func (panicDetector) Detect(*apex.File) []*finding.DetectedAntipattern {
	panic("boom")
}

func TestRegistry_DetectorPanicIsContained(t *testing.T) {
	registry := scanner.NewRegistry()
	registry.Register(&scanner.AntipatternModule{
		Detector:    panicDetector{},
		Recommender: recommend.NewStatic("n/a"),
	})
	registry.Register(&scanner.AntipatternModule{
		Detector:    detect.NewGlobalDescribeDetector(),
		Recommender: recommend.ForGlobalDescribe(),
	})

	source := `public class P {
    public void m() {
        Schema.getGlobalDescribe();
    }
}`
	result := registry.Scan(context.Background(), "P", []byte(source), nil)

	require.Len(t, result.AntipatternResults, 1)
	assert.Equal(t, detect.TypeGlobalDescribe, result.AntipatternResults[0].AntipatternType)
}

type staticConnection struct{ baseURL string }

func (c staticConnection) BaseURL() string     { return c.baseURL }
func (c staticConnection) AccessToken() string { return "token" }

func TestRegistry_ScanWithTelemetryDegradesToStatic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := scanner.NewDefaultRegistry(scanner.Thresholds{})
	service := runtime.NewService(runtime.WithRetryCount(0))
	conn := staticConnection{baseURL: server.URL}

	result, status := registry.ScanWithTelemetry(context.Background(), service, conn,
		"org1", "user1", "Mixed", []byte(mixedClassSource))

	assert.Equal(t, runtime.StatusAPIError, status)
	require.Len(t, result.AntipatternResults, 3)
	for _, group := range result.AntipatternResults {
		for _, instance := range group.DetectedInstances {
			assert.Equal(t, finding.SourceStatic, instance.SeveritySource)
		}
	}
}

func TestFingerprint(t *testing.T) {
	base := scanner.Fingerprint("Mixed", []byte(mixedClassSource))

	assert.Equal(t, base, scanner.Fingerprint("Mixed", []byte(mixedClassSource)))
	assert.NotEqual(t, base, scanner.Fingerprint("Other", []byte(mixedClassSource)))
	assert.NotEqual(t, base, scanner.Fingerprint("Mixed", []byte(mixedClassSource+" ")))
}
