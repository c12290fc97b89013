package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/pkg/cryptox"
	"github.com/wagglex2/waggle/pkg/idx"
)

var (
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidNickname = errors.New("invalid_nickname")
	ErrWeakPassword    = errors.New("weak_password")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrUsernameTaken   = errors.New("username_taken")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{4,20}$`)
	nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9]{2,10}$`)
)

const passwordSpecials = "!@#$%^&*()_+~"

// NewPrincipal is the input for UserService.CreatePrincipal.
type NewPrincipal struct {
	Username string
	Nickname string
	Password string
	Role     string
}

// Validate applies the account rules: usernames are 4-20 word characters,
// nicknames 2-10 Hangul or alphanumerics, passwords at least 8 characters
// mixing letters, digits and one of !@#$%^&*()_+~.
func (n NewPrincipal) Validate() error {
	if err := ValidateUsername(n.Username); err != nil {
		return err
	}
	if !nicknamePattern.MatchString(n.Nickname) {
		return ErrInvalidNickname
	}
	if err := validatePassword(n.Password); err != nil {
		return err
	}
	switch n.Role {
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, n.Role)
	}
	return nil
}

// ValidateUsername applies the username rule on its own.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < 8 {
		return ErrWeakPassword
	}
	var letter, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return ErrWeakPassword
		}
	}
	if !letter || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

type UserService struct {
	Store store.Store
}

// GetPrincipal fetches a principal by id.
func (s *UserService) GetPrincipal(ctx context.Context, id string) (domain.Principal, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// DeletePrincipal removes a principal. Its live session, if any, ends at
// the next refresh.
func (s *UserService) DeletePrincipal(ctx context.Context, id string) error {
	return s.Store.Users().DeleteUser(ctx, id)
}

// CreatePrincipal validates n, hashes the password and stores the new
// principal, returning it without the hash.
func (s *UserService) CreatePrincipal(ctx context.Context, n NewPrincipal) (domain.Principal, error) {
	return createPrincipal(ctx, s.Store.Users(), n)
}

func createPrincipal(ctx context.Context, users store.Users, n NewPrincipal) (domain.Principal, error) {
	if err := n.Validate(); err != nil {
		return domain.Principal{}, err
	}

	hash, err := cryptox.HashPassword(n.Password)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	p := domain.Principal{
		ID:           idx.New().String(),
		Username:     n.Username,
		Nickname:     n.Nickname,
		Role:         n.Role,
		PasswordHash: hash,
	}
	if err := users.CreateUser(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrUsernameTaken
		}
		return domain.Principal{}, fmt.Errorf("create principal: %w", err)
	}

	p.PasswordHash = ""
	return p, nil
}
