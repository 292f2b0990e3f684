package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/retry"
)

// DefaultTimeout applies when no timeout is configured
const DefaultTimeout = 15 * time.Second

// HTTPClient talks to the auth and session-listing endpoints
type HTTPClient struct {
	authURLEndpoint  string
	sessionsEndpoint string
	maxAttempts      int
	httpClient       *http.Client
	logger           *zap.Logger
	notify           func(attempt int, err error)
}

// Options configures an HTTPClient
type Options struct {
	AuthURLEndpoint  string
	SessionsEndpoint string
	MaxAttempts      int
	Timeout          time.Duration
	HTTPClient       *http.Client
	Logger           *zap.Logger
	// OnAttemptFailed is called for every failed sessions attempt
	OnAttemptFailed func(attempt int, err error)
}

// NewHTTPClient creates a client for the configured endpoints
func NewHTTPClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		authURLEndpoint:  strings.TrimSpace(opts.AuthURLEndpoint),
		sessionsEndpoint: strings.TrimSpace(opts.SessionsEndpoint),
		maxAttempts:      opts.MaxAttempts,
		httpClient:       client,
		logger:           logger.Named("remote"),
		notify:           opts.OnAttemptFailed,
	}
}

type authURLResponse struct {
	URL string `json:"url"`
}

// AuthURL fetches the authorization URL. It is a single attempt.
func (c *HTTPClient) AuthURL(ctx context.Context) (string, error) {
	if c.authURLEndpoint == "" {
		return "", fmt.Errorf("auth url endpoint is not configured")
	}

	res := retry.DoRequest[authURLResponse](ctx, c.httpClient, retry.Request{
		Method: http.MethodGet,
		URL:    c.authURLEndpoint,
	}, 1, retry.WithLogger(c.logger), retry.WithName("auth_url"))

	body, err := res.Unwrap()
	if err != nil {
		return "", fmt.Errorf("failed to fetch auth url: %w", err)
	}
	if strings.TrimSpace(body.URL) == "" {
		return "", fmt.Errorf("auth endpoint returned an empty url")
	}
	return body.URL, nil
}

type sessionsResponse struct {
	Files []domain.RemoteSession `json:"files"`
}

// ListSessions lists remote sessions stored in folderID, retrying transient failures
func (c *HTTPClient) ListSessions(ctx context.Context, accessToken, folderID string) retry.Result[[]domain.RemoteSession] {
	if c.sessionsEndpoint == "" {
		return retry.Err[[]domain.RemoteSession](retry.KindInvalid, "sessions endpoint is not configured")
	}

	endpoint, err := url.Parse(c.sessionsEndpoint)
	if err != nil {
		return retry.Err[[]domain.RemoteSession](retry.KindInvalid, fmt.Sprintf("invalid sessions endpoint: %v", err))
	}
	if folderID != "" {
		q := endpoint.Query()
		q.Set("folderId", folderID)
		endpoint.RawQuery = q.Encode()
	}

	opts := []retry.Option{retry.WithLogger(c.logger), retry.WithName("list_sessions")}
	if c.notify != nil {
		opts = append(opts, retry.WithNotify(c.notify))
	}

	res := retry.DoRequest[sessionsResponse](ctx, c.httpClient, retry.Request{
		Method:  http.MethodGet,
		URL:     endpoint.String(),
		Headers: map[string]string{"Authorization": "Bearer " + accessToken},
	}, c.maxAttempts, opts...)

	if !res.IsOk() {
		return retry.FromFailure[[]domain.RemoteSession](res.Failure())
	}
	files := res.Value().Files
	if files == nil {
		files = []domain.RemoteSession{}
	}
	return retry.Ok(files)
}
