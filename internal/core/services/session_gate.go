package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
	"github.com/tunedinout/esfiddle/pkg/retry"
)

// ErrAuthUnavailable is returned by RedirectToAuth when no auth client or navigator is wired
var ErrAuthUnavailable = errors.New("authentication is not configured")

// SessionGate decides whether the app runs offline, online, or with an expired session
type SessionGate struct {
	credentials ports.CredentialStore
	auth        ports.AuthClient
	navigator   ports.Navigator
	sessions    ports.SessionLister
	logger      *zap.Logger
	now         func() time.Time
}

// SessionGateOptions wires the gate's collaborators. Only Credentials is required.
type SessionGateOptions struct {
	Credentials ports.CredentialStore
	Auth        ports.AuthClient
	Navigator   ports.Navigator
	Sessions    ports.SessionLister
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewSessionGate creates a session gate
func NewSessionGate(opts SessionGateOptions) *SessionGate {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SessionGate{
		credentials: opts.Credentials,
		auth:        opts.Auth,
		navigator:   opts.Navigator,
		sessions:    opts.Sessions,
		logger:      logger.Named("session"),
		now:         clock,
	}
}

// GetLoginDetails returns the most recent cached credential when it carries
// both tokens, nil otherwise
func (g *SessionGate) GetLoginDetails(ctx context.Context) *domain.Credential {
	if g.credentials == nil {
		return nil
	}
	cred, err := g.credentials.Latest(ctx)
	if err != nil {
		g.logger.Warn("failed to read credential cache", zap.String("op", "login_details"), zap.Error(err))
		return nil
	}
	if !cred.HasTokens() {
		return nil
	}
	return cred
}

// IsExpired reports whether expiry (epoch milliseconds) lies in the past
func (g *SessionGate) IsExpired(expiry int64) bool {
	return expiry < g.now().UnixMilli()
}

// RedirectToAuth fetches the authorization URL once and opens it
func (g *SessionGate) RedirectToAuth(ctx context.Context) error {
	if g.auth == nil || g.navigator == nil {
		return ErrAuthUnavailable
	}

	url, err := g.auth.AuthURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth url: %w", err)
	}
	if err := g.navigator.Open(ctx, url); err != nil {
		return fmt.Errorf("failed to open auth url: %w", err)
	}

	g.logger.Info("redirected to authentication", zap.String("op", "redirect"))
	return nil
}

// Mode evaluates the connectivity state without side effects
func (g *SessionGate) Mode(ctx context.Context) (domain.Mode, *domain.Credential) {
	cred := g.GetLoginDetails(ctx)
	if cred == nil {
		return domain.ModeOffline, nil
	}
	if g.IsExpired(cred.ExpiryDate) {
		return domain.ModeExpired, cred
	}
	return domain.ModeOnline, cred
}

// Resolve evaluates the connectivity state. Entering the expired state starts
// re-authentication once; a failed redirect leaves the mode expired.
func (g *SessionGate) Resolve(ctx context.Context) (domain.Mode, *domain.Credential) {
	mode, cred := g.Mode(ctx)
	g.logger.Debug("session resolved", zap.String("op", "resolve"), zap.String("mode", string(mode)))

	if mode == domain.ModeExpired {
		if err := g.RedirectToAuth(ctx); err != nil {
			g.logger.Warn("re-authentication failed", zap.String("op", "resolve"), zap.Error(err))
		}
	}
	return mode, cred
}

// ListRemoteSessions lists remote sessions when online. An empty folderID
// falls back to the folder recorded with the credential; with neither, nothing is requested.
func (g *SessionGate) ListRemoteSessions(ctx context.Context, folderID string) retry.Result[[]domain.RemoteSession] {
	mode, cred := g.Mode(ctx)
	if mode != domain.ModeOnline {
		return retry.Err[[]domain.RemoteSession](retry.KindOffline, fmt.Sprintf("session is %s", mode))
	}
	if g.sessions == nil {
		return retry.Err[[]domain.RemoteSession](retry.KindInvalid, "remote sessions are not configured")
	}
	if folderID == "" {
		folderID = cred.DriveFolderID
	}
	if folderID == "" {
		return retry.Err[[]domain.RemoteSession](retry.KindInvalid, "no drive folder configured")
	}

	res := g.sessions.ListSessions(ctx, cred.AccessToken, folderID)
	if !res.IsOk() {
		g.logger.Warn("failed to list remote sessions", zap.String("op", "list_sessions"), zap.Error(res.Failure()))
	}
	return res
}
