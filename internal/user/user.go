// Package user registers and authenticates learners.
package user

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// DefaultNativeLanguage is used when a registration leaves it empty.
const DefaultNativeLanguage = "tr"

// Registration carries the fields of a new account.
type Registration struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	NativeLanguage string
}

type Service struct {
	users store.UserRepo
	log   *logger.Logger
	cost  int
	now   func() time.Time
}

func NewService(users store.UserRepo, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users: users,
		log:   log,
		cost:  bcrypt.DefaultCost,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *Service) Register(ctx context.Context, reg Registration) (*model.User, error) {
	const op = "user.Register"

	email := normalizeEmail(reg.Email)
	if email == "" {
		return nil, apperr.Validationf(op, "email is required")
	}
	if len(reg.Password) < MinPasswordLength {
		return nil, apperr.Validationf(op, "password must be at least %d characters", MinPasswordLength)
	}
	if len(reg.Password) > MaxPasswordBytes {
		return nil, apperr.Validationf(op, "password must be at most %d bytes", MaxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	lang := strings.ToLower(strings.TrimSpace(reg.NativeLanguage))
	if lang == "" {
		lang = DefaultNativeLanguage
	}
	u := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      strings.TrimSpace(reg.FirstName),
		LastName:       strings.TrimSpace(reg.LastName),
		NativeLanguage: lang,
		CreatedAt:      s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.E(apperr.Conflict, op, "email is already registered", err)
		}
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	s.log.Info("user registered", "user", u.ID)
	return u, nil
}

// Authenticate checks the credentials and records the login. Accounts
// still carrying a legacy hash are moved to bcrypt on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	const op = "user.Authenticate"

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf(op, "no account for %s", normalizeEmail(email))
	}
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	ok, legacy := verify(u.PasswordHash, password)
	if !ok {
		return nil, apperr.Validationf(op, "invalid password")
	}

	if legacy {
		if hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost); err != nil {
			s.log.Warn("rehash failed", "user", u.ID, "error", err)
		} else if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
			s.log.Warn("storing rehashed password failed", "user", u.ID, "error", err)
		} else {
			u.PasswordHash = string(hash)
			s.log.Info("upgraded legacy password hash", "user", u.ID)
		}
	}

	at := s.now()
	if err := s.users.TouchLogin(ctx, u.ID, at); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	u.LastLoginAt = &at
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// verify reports whether password matches hash and whether hash is in
// the legacy SHA-256/base64 form.
func verify(hash, password string) (ok, legacy bool) {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
	}
	return subtle.ConstantTimeCompare([]byte(legacyHash(password)), []byte(hash)) == 1, true
}

func isBcrypt(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
