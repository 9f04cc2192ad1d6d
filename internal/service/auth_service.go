// Package service orchestrates login and registration against the user
// store, the password hasher and the token codec.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/queue"
	"github.com/iliyamo/property-rental/internal/repository"
	"github.com/iliyamo/property-rental/internal/utils"
)

// Messages returned in Result. Unknown email and wrong password share one
// message so callers cannot probe which accounts exist.
const (
	MsgLoginOK            = "Login successful"
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountInactive    = "Account is inactive. Please contact support."
	MsgLoginFailed        = "An error occurred during login"
	MsgRegisterOK         = "Registration successful"
	MsgEmailRegistered    = "Email already registered"
	MsgRegisterFailed     = "An error occurred during registration"
)

// UserStore is the slice of the credential store the service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (uint64, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(c utils.Claims) (string, error)
}

// EventPublisher receives registration events.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// Result is the uniform outcome of Login and Register. Data is set only on
// success.
type Result struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
}

// AuthData is the payload of a successful Result.
type AuthData struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Credentials is a login attempt. It is never stored.
type Credentials struct {
	Email    string `json:"email" validate:"notblank,emailaddr"`
	Password string `json:"password" validate:"required"`
}

// Registration is the input of Register.
type Registration struct {
	Email       string     `json:"email" validate:"notblank,emailaddr"`
	Password    string     `json:"password" validate:"required,min=8"`
	FirstName   string     `json:"firstName" validate:"notblank"`
	LastName    string     `json:"lastName" validate:"notblank"`
	Role        model.Role `json:"role" validate:"required,oneof=admin owner tenant"`
	PhoneNumber string     `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
}

// AuthService holds collaborators only; it keeps no per-request state.
type AuthService struct {
	users        UserStore
	hasher       PasswordHasher
	tokens       TokenIssuer
	events       EventPublisher
	storeTimeout time.Duration
	now          func() time.Time
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithPublisher publishes a user.registered event after each registration.
func WithPublisher(p EventPublisher) Option {
	return func(s *AuthService) { s.events = p }
}

// WithNow replaces time.Now for event timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService wires the service. cfg supplies the store timeout.
func NewAuthService(cfg *config.Config, users UserStore, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) *AuthService {
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &AuthService{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		storeTimeout: timeout,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func fail(msg string) Result { return Result{Success: false, Message: msg} }

// Login checks credentials and issues a token. Lower-layer failures become
// a generic failure Result; no error escapes.
func (s *AuthService) Login(ctx context.Context, in Credentials) Result {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(in.Email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(MsgInvalidCredentials)
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Msg("login: user lookup failed")
		return fail(MsgLoginFailed)
	}

	if !u.IsActive {
		return fail(MsgAccountInactive)
	}
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		return fail(MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(utils.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("login: issue token failed")
		return fail(MsgLoginFailed)
	}
	return Result{Success: true, Message: MsgLoginOK, Data: &AuthData{User: u.Public(), Token: token}}
}

// Register creates an account and issues a token. An existing email fails
// without touching the store; an insert that loses the uniqueness race
// fails the same way.
func (s *AuthService) Register(ctx context.Context, in Registration) Result {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	email := repository.NormalizeEmail(in.Email)
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fail(MsgEmailRegistered)
	case !errors.Is(err, repository.ErrNotFound):
		log.Ctx(ctx).Error().Err(err).Msg("register: user lookup failed")
		return fail(MsgRegisterFailed)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("register: hash password failed")
		return fail(MsgRegisterFailed)
	}

	u := model.User{
		Email:        email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		IsActive:     true,
	}
	id, err := s.users.Create(ctx, u)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return fail(MsgEmailRegistered)
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Msg("register: insert user failed")
		return fail(MsgRegisterFailed)
	}
	u.ID = id

	token, err := s.tokens.Issue(utils.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("register: issue token failed")
		return fail(MsgRegisterFailed)
	}

	s.publishRegistered(ctx, u)
	return Result{Success: true, Message: MsgRegisterOK, Data: &AuthData{User: u.Public(), Token: token}}
}

// publishRegistered hands the event to the publisher in the background. The
// registration outcome never depends on the broker.
func (s *AuthService) publishRegistered(ctx context.Context, u model.User) {
	if s.events == nil {
		return
	}
	ev := queue.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		RegisteredAt: s.now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.events.PublishUserRegistered(pctx, ev); err != nil {
			log.Warn().Err(err).Uint64("user_id", u.ID).Msg("register: publish user.registered failed")
		}
	}()
}
