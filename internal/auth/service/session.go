package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/pkg/cryptox"
	"github.com/wagglex2/waggle/pkg/jwtx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrRefreshInvalid     = errors.New("refresh_token_invalid")
	ErrRefreshExpired     = errors.New("refresh_token_expired")
	ErrWrongKind          = errors.New("refresh_token_wrong_kind")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrRefreshMismatch    = errors.New("refresh_token_mismatch")
	ErrPrincipalNotFound  = errors.New("principal_not_found")
)

// PrincipalDirectory resolves principals. Both lookups return an error
// matching store.ErrNotFound when nobody matches.
type PrincipalDirectory interface {
	Resolve(ctx context.Context, id string) (domain.Principal, error)
	ResolveByUsername(ctx context.Context, username string) (domain.Principal, error)
}

// passwordRehasher is implemented by directories that can store an
// upgraded password hash.
type passwordRehasher interface {
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// TokenCodec is the part of jwtx.Codec the session service uses.
type TokenCodec interface {
	Issue(subject string, kind jwtx.Kind, p jwtx.Profile, ttl time.Duration) (jwtx.Credential, error)
	VerifyKind(raw string, want jwtx.Kind) (*jwtx.Claims, error)
}

// SessionMetrics receives one outcome per operation. Outcomes are the
// labels returned by ErrorKind.
type SessionMetrics interface {
	RecordLogin(outcome string)
	RecordRefresh(outcome string)
	RecordLogout()
}

// SessionService issues, rotates and revokes credential pairs. Each
// principal has at most one live rotation record; writing a new one
// invalidates every refresh credential issued before it.
//
// Concurrent refreshes for the same principal are not serialised. The
// last Put wins and the other caller's refresh credential fails with
// ErrRefreshMismatch on its next use.
type SessionService struct {
	Codec       TokenCodec
	Credentials store.Credentials
	Directory   PrincipalDirectory
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Metrics     SessionMetrics
}

// Login checks username and password and starts a new session,
// superseding any session the principal already had.
func (s *SessionService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	pair, err := s.login(ctx, username, password)
	s.recordLogin(err)
	return pair, err
}

func (s *SessionService) login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if username == "" || password == "" {
		burnPasswordCheck(password)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	p, err := s.Directory.ResolveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			burnPasswordCheck(password)
			l.Info("login failed", slog.String("reason", "unknown_username"))
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("resolve principal: %w", err)
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("stored password hash unusable",
				slog.String("user_id", p.ID),
				slog.Any("error", err),
			)
		} else {
			l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", p.ID))
		}
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	s.maybeRehash(ctx, p, password)

	pair, err := s.issuePair(ctx, p)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("user_id", p.ID))
	return pair, nil
}

// Refresh rotates the session behind presented. The previous refresh
// credential stops working as soon as this returns successfully.
func (s *SessionService) Refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	pair, err := s.refresh(ctx, presented)
	if s.Metrics != nil {
		s.Metrics.RecordRefresh(ErrorKind(err))
	}
	return pair, err
}

func (s *SessionService) refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.VerifyKind(presented, jwtx.KindRefresh)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrWrongKind):
			return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrWrongKind, err)
		case errors.Is(err, jwtx.ErrExpired):
			return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshExpired, err)
		case errors.Is(err, jwtx.ErrBadSignature):
			l.Warn("refresh credential failed signature check", slog.Any("error", err))
		}
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshInvalid, err)
	}
	subjectID := claims.Subject

	stored, err := s.Credentials.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh without live session", slog.String("user_id", subjectID))
			return domain.TokenPair{}, ErrSessionNotFound
		}
		return domain.TokenPair{}, fmt.Errorf("load rotation record: %w", err)
	}

	if err := cryptox.VerifySecret(presented, stored); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("rotation record unreadable", slog.String("user_id", subjectID), slog.Any("error", err))
		}
		// Reuse of a rotated credential, or the losing side of a refresh race.
		l.Warn("refresh credential does not match rotation record",
			slog.String("user_id", subjectID),
			slog.String("jti", claims.ID),
		)
		return domain.TokenPair{}, ErrRefreshMismatch
	}

	p, err := s.Directory.Resolve(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if derr := s.Credentials.Delete(ctx, subjectID); derr != nil {
				l.Error("failed to drop orphaned rotation record", slog.String("user_id", subjectID), slog.Any("error", derr))
			}
			return domain.TokenPair{}, ErrPrincipalNotFound
		}
		return domain.TokenPair{}, fmt.Errorf("resolve principal: %w", err)
	}

	pair, err := s.issuePair(ctx, p)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Debug("session rotated", slog.String("user_id", subjectID))
	return pair, nil
}

// Logout ends the principal's session. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return errors.New("logout: subject id is required")
	}
	if err := s.Credentials.Delete(ctx, subjectID); err != nil {
		return fmt.Errorf("delete rotation record: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.RecordLogout()
	}
	slogx.FromContext(ctx).Info("logout", slog.String("user_id", subjectID))
	return nil
}

// UsernameAvailable reports whether no principal holds username.
func (s *SessionService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := s.Directory.ResolveByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, store.ErrNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("resolve principal: %w", err)
	}
}

// issuePair signs a fresh access/refresh pair for p and overwrites the
// rotation record with the hash of the new refresh credential.
func (s *SessionService) issuePair(ctx context.Context, p domain.Principal) (domain.TokenPair, error) {
	profile := jwtx.Profile{Username: p.Username, Nickname: p.Nickname, Role: p.Role}

	access, err := s.Codec.Issue(p.ID, jwtx.KindAccess, profile, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access credential: %w", err)
	}
	refresh, err := s.Codec.Issue(p.ID, jwtx.KindRefresh, jwtx.Profile{}, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh credential: %w", err)
	}

	hash, err := cryptox.HashSecret(refresh.Token)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("hash refresh credential: %w", err)
	}
	if err := s.Credentials.Put(ctx, p.ID, hash, s.refreshTTL()); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store rotation record: %w", err)
	}

	return domain.TokenPair{
		SubjectID:        p.ID,
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *SessionService) maybeRehash(ctx context.Context, p domain.Principal, password string) {
	if !cryptox.NeedsRehash(p.PasswordHash) {
		return
	}
	r, ok := s.Directory.(passwordRehasher)
	if !ok {
		return
	}
	l := slogx.FromContext(ctx)
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Warn("failed to rehash legacy password", slog.String("user_id", p.ID), slog.Any("error", err))
		return
	}
	if err := r.UpdatePasswordHash(ctx, p.ID, hash); err != nil {
		l.Warn("failed to store upgraded password hash", slog.String("user_id", p.ID), slog.Any("error", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.String("user_id", p.ID))
}

func (s *SessionService) recordLogin(err error) {
	if s.Metrics != nil {
		s.Metrics.RecordLogin(ErrorKind(err))
	}
}

func (s *SessionService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *SessionService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// ErrorKind maps an error returned by SessionService to a stable label.
// A nil error is "ok"; anything unrecognised is "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrRefreshExpired):
		return "expired"
	case errors.Is(err, ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, ErrRefreshInvalid) && errors.Is(err, jwtx.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrRefreshInvalid) && errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrRefreshInvalid):
		return "invalid"
	case errors.Is(err, ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, ErrRefreshMismatch):
		return "mismatch"
	case errors.Is(err, ErrPrincipalNotFound):
		return "principal_not_found"
	default:
		return "internal"
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same effort as a real verification so that
// unknown usernames are not distinguishable by response time.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("waggle-placeholder-password")
	})
	_ = cryptox.VerifyPassword(password, dummyHash)
}
