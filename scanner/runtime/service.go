package runtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultEndpointPath is the fixed relative path serving per-class
	// runtime telemetry.
	DefaultEndpointPath = "/services/data/insights/runtime-metrics"

	// DefaultTimeout bounds one telemetry request.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryCount is the number of additional sequential attempts
	// after the first request fails.
	DefaultRetryCount = 2
)

// Connection is the authenticated-connection capability the service consumes.
// Connection management itself belongs to the caller.
type Connection interface {
	BaseURL() string
	AccessToken() string
}

// Request is the body posted to the telemetry endpoint.
type Request struct {
	RequestID string   `json:"requestId"`
	OrgID     string   `json:"orgId"`
	Classes   []string `json:"classes"`
}

// Service fetches runtime telemetry with bounded retries and timeout.
type Service struct {
	client       *resty.Client
	logger       hclog.Logger
	endpointPath string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its HTTP client.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEndpointPath overrides the telemetry endpoint path.
func WithEndpointPath(path string) Option {
	return func(s *Service) {
		s.endpointPath = path
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.client.SetTimeout(timeout)
	}
}

// WithRetryCount overrides the retry budget.
func WithRetryCount(count int) Option {
	return func(s *Service) {
		s.client.SetRetryCount(count)
	}
}

// NewService creates a telemetry service with the default timeout and retry
// budget. Retries are sequential; there is no parallel fan-out.
func NewService(opts ...Option) *Service {
	client := resty.New().
		SetTimeout(DefaultTimeout).
		SetRetryCount(DefaultRetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			return err != nil || response.StatusCode() >= http.StatusInternalServerError
		})

	service := &Service{
		client:       client,
		logger:       hclog.NewNullLogger(),
		endpointPath: DefaultEndpointPath,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.client.SetLogger(newHclogAdapter(service.logger))
	return service
}

// FetchRuntimeData performs the telemetry request and classifies the outcome.
// It never returns an error: every failure path yields a typed FetchResult so
// the scan can proceed with static-only severities.
func (s *Service) FetchRuntimeData(ctx context.Context, conn Connection, req *Request) *FetchResult {
	if conn == nil {
		return &FetchResult{
			Status:  StatusNoOrgConnection,
			Message: "no authenticated org connection available",
		}
	}

	var report RuntimeReport
	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+conn.AccessToken()).
		SetBody(req).
		SetResult(&report).
		Post(conn.BaseURL() + s.endpointPath)

	if err != nil {
		s.logger.Warn("runtime telemetry fetch failed", "requestId", req.RequestID, "error", err)
		return &FetchResult{
			Status:  StatusAPIError,
			Message: err.Error(),
		}
	}

	switch {
	case response.StatusCode() == http.StatusForbidden:
		return &FetchResult{
			Status:  StatusAccessDenied,
			Message: "runtime telemetry is not provisioned for this org",
		}
	case response.StatusCode() != http.StatusOK:
		s.logger.Warn("runtime telemetry endpoint returned non-OK status",
			"requestId", req.RequestID, "status", response.StatusCode())
		return &FetchResult{
			Status:  StatusAPIError,
			Message: fmt.Sprintf("telemetry endpoint returned HTTP %d", response.StatusCode()),
		}
	case report.Status == "FAILURE":
		return &FetchResult{
			Status:  StatusAPIError,
			Message: report.Message,
		}
	}

	return &FetchResult{
		Status:  StatusSuccess,
		Message: report.Message,
		Report:  &report,
	}
}

// GenerateRequestID produces a traceable identifier combining org, user and
// timestamp for correlation in telemetry. It is not a cache key.
func GenerateRequestID(orgID, userID string) string {
	return fmt.Sprintf("%s-%s-%d-%s", orgID, userID, time.Now().UnixMilli(), uuid.NewString()[:8])
}
