package authsdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session is a logged-in client. It holds the current access credential;
// the refresh credential lives in the SDKClient's cookie jar.
type Session struct {
	client *SDKClient

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func newSession(client *SDKClient, tok TokenResponse) *Session {
	s := &Session{client: client, now: time.Now}
	s.store(tok)
	return s
}

// store must be called with mu held or before the session is shared.
func (s *Session) store(tok TokenResponse) {
	s.accessToken = tok.AccessToken
	switch {
	case !tok.ExpiresAt.IsZero():
		s.expiresAt = tok.ExpiresAt.Add(-refreshBuffer)
	default:
		s.expiresAt = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer)
	}
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Refresh rotates the session now. After it returns the previous refresh
// credential is no longer accepted by the service.
func (s *Session) Refresh(ctx context.Context) (*TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (*TokenResponse, error) {
	var tok TokenResponse
	if err := s.client.doJSON(ctx, http.MethodPost, PathRefresh, nil, nil, http.StatusOK, &tok); err != nil {
		return nil, err
	}
	s.store(tok)
	return &tok, nil
}

// getValidToken returns an access token that is not about to expire,
// refreshing first if needed.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// doAuthJSON is doJSON with the session's bearer credential attached.
func (s *Session) doAuthJSON(ctx context.Context, method, path string, expectedStatus int, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	return s.client.doJSON(ctx, method, path, nil, headers, expectedStatus, out)
}

// Me returns the identity carried by the session's access credential.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, PathMe, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the service. The session is unusable
// afterwards.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.doAuthJSON(ctx, http.MethodPost, PathLogout, http.StatusOK, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}
