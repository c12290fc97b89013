package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap disabled")
)

type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token; empty disables bootstrap
}

// Enabled reports whether a bootstrap token is configured.
func (s *BootstrapService) Enabled() bool { return s.Token != "" }

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the first administrator. It only succeeds on an empty
// directory and with the configured token.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if !s.Enabled() {
		return domain.Principal{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Principal{}, ErrBootstrapUnauthorized
	}

	var admin domain.Principal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		admin, err = createPrincipal(ctx, tx.Users(), NewPrincipal{
			Username: req.Username,
			Nickname: req.Nickname,
			Password: req.Password,
			Role:     domain.RoleAdmin,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
		}
		return domain.Principal{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin, nil
}
