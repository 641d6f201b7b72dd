package tabular

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
	"github.com/wlvh/Process-SemanticModel/pkg/config"
	"github.com/wlvh/Process-SemanticModel/pkg/logging"
	"github.com/wlvh/Process-SemanticModel/pkg/retry"
)

// DefaultTimeout bounds a single query round-trip when the configuration
// does not say otherwise. Profiling queries over large facts can run long.
const DefaultTimeout = 120 * time.Second

// maxErrorBody caps how much of an error response body is kept for messages.
const maxErrorBody = 4 << 10

// Client executes queries through the model's executeQueries REST endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retryCfg   *retry.Config
	logger     *zap.Logger
}

var _ QueryRunner = (*Client)(nil)

// NewClient creates a query client from the service configuration.
func NewClient(cfg config.ServiceConfig, logger *zap.Logger) *Client {
	timeout := DefaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries >= 0 {
		retryCfg.MaxRetries = cfg.MaxRetries
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.AccessToken,
		retryCfg:   retryCfg,
		logger:     logger.Named("tabular"),
	}
}

type executeRequest struct {
	Queries            []queryItem        `json:"queries"`
	SerializerSettings serializerSettings `json:"serializerSettings"`
}

type queryItem struct {
	Query string `json:"query"`
}

type serializerSettings struct {
	IncludeNulls bool `json:"includeNulls"`
}

type executeResponse struct {
	Results []queryResult `json:"results"`
	Error   *serviceError `json:"error"`
}

type queryResult struct {
	Tables []resultTable `json:"tables"`
	Error  *serviceError `json:"error"`
}

type resultTable struct {
	Rows []map[string]any `json:"rows"`
}

type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusError carries the HTTP status so the retry layer can tell transient
// failures (throttling, service errors) from permanent ones (bad query,
// expired token).
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("query service returned status %d: %s", e.status, logging.TruncateString(e.body, 200))
}

func (e *statusError) IsRetryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// Execute posts one query to the executeQueries endpoint and decodes the
// first result table. Transient failures are retried with backoff; permanent
// failures (4xx, per-query errors) fail fast.
func (c *Client) Execute(ctx context.Context, dataset, query, workspace string) (*RowSet, error) {
	if c.token == "" {
		return nil, fmt.Errorf("access token is not configured")
	}
	if _, err := uuid.Parse(dataset); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", dataset, apperrors.ErrInvalidIdentifier)
	}
	if workspace != "" {
		if _, err := uuid.Parse(workspace); err != nil {
			return nil, fmt.Errorf("workspace %q: %w", workspace, apperrors.ErrInvalidIdentifier)
		}
	}

	endpoint, err := c.endpointURL(dataset, workspace)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(executeRequest{
		Queries:            []queryItem{{Query: query}},
		SerializerSettings: serializerSettings{IncludeNulls: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query request: %w", err)
	}

	start := time.Now()
	var rows *RowSet
	err = retry.DoIfRetryable(ctx, c.retryCfg, func() error {
		rs, postErr := c.post(ctx, endpoint, body)
		if postErr != nil {
			return postErr
		}
		rows = rs
		return nil
	})
	if err != nil {
		c.logger.Debug("query failed",
			zap.String("dataset", dataset),
			zap.String("query", logging.SanitizeQuery(query)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrQueryFailed, logging.SanitizeError(err))
	}

	c.logger.Debug("query executed",
		zap.String("dataset", dataset),
		zap.String("query", logging.SanitizeQuery(query)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("rows", len(rows.Rows)))

	return rows, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*RowSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call query service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &statusError{status: resp.StatusCode, body: string(msg)}
	}

	var decoded executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("query service error %s: %s", decoded.Error.Code, decoded.Error.Message)
	}

	rs := &RowSet{}
	if len(decoded.Results) == 0 {
		return rs, nil
	}
	result := decoded.Results[0]
	if result.Error != nil {
		return nil, fmt.Errorf("query error %s: %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Tables) == 0 {
		return rs, nil
	}

	raw := result.Tables[0].Rows
	rs.Rows = make([]Row, 0, len(raw))
	for _, r := range raw {
		rs.Rows = append(rs.Rows, NewRow(r))
	}
	return rs, nil
}

// endpointURL builds the executeQueries URL, optionally scoped to a
// workspace group.
func (c *Client) endpointURL(dataset, workspace string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", logging.SanitizeConnectionString(c.baseURL), err)
	}

	segments := []string{u.Path}
	if workspace != "" {
		segments = append(segments, "groups", workspace)
	}
	segments = append(segments, "datasets", dataset, "executeQueries")
	u.Path = path.Join(segments...)

	return u.String(), nil
}
