package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/retry"
)

// --- MockCredentialStore ---

type MockCredentialStore struct {
	mu         sync.Mutex
	credential *domain.Credential
	err        error
}

func NewMockCredentialStore(cred *domain.Credential) *MockCredentialStore {
	return &MockCredentialStore{credential: cred}
}

func (m *MockCredentialStore) Latest(ctx context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.credential == nil {
		return nil, nil
	}
	c := *m.credential
	return &c, nil
}

func (m *MockCredentialStore) Set(cred *domain.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = cred
}

func (m *MockCredentialStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// --- MockAuthClient ---

type MockAuthClient struct {
	mu         sync.Mutex
	url        string
	shouldFail bool
	calls      int
}

func NewMockAuthClient(url string) *MockAuthClient {
	return &MockAuthClient{url: url}
}

func (m *MockAuthClient) AuthURL(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.shouldFail {
		return "", fmt.Errorf("auth endpoint unavailable")
	}
	return m.url, nil
}

func (m *MockAuthClient) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
}

func (m *MockAuthClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- MockNavigator ---

type MockNavigator struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func NewMockNavigator() *MockNavigator {
	return &MockNavigator{}
}

func (m *MockNavigator) Open(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.opened = append(m.opened, url)
	return nil
}

func (m *MockNavigator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockNavigator) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.opened))
	copy(out, m.opened)
	return out
}

// --- MockSessionLister ---

type MockSessionLister struct {
	mu       sync.Mutex
	sessions []domain.RemoteSession
	failure  *retry.Failure
	tokens   []string
}

func NewMockSessionLister(sessions ...domain.RemoteSession) *MockSessionLister {
	return &MockSessionLister{sessions: sessions}
}

func (m *MockSessionLister) ListSessions(ctx context.Context, accessToken, folderID string) retry.Result[[]domain.RemoteSession] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, accessToken)
	if m.failure != nil {
		return retry.FromFailure[[]domain.RemoteSession](m.failure)
	}
	out := make([]domain.RemoteSession, len(m.sessions))
	copy(out, m.sessions)
	return retry.Ok(out)
}

func (m *MockSessionLister) SetFailure(f *retry.Failure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = f
}

// Tokens returns the access tokens seen, one per call
func (m *MockSessionLister) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out
}
