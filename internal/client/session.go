package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/model"
)

// Paths the session navigates to on its own.
const (
	PathLogin        = "/login"
	PathUnauthorized = "/unauthorized"
)

// Navigator moves the UI to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// State is the value published to subscribers.
type State struct {
	User          *model.PublicUser
	Authenticated bool
}

// Session caches the signed-in user and token, mirrors them to Storage
// and publishes every change to subscribers.
type Session struct {
	api   *API
	store Storage
	nav   Navigator
	now   func() time.Time

	mu    sync.RWMutex
	user  *model.PublicUser
	token string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	ready chan struct{}
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now for local expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession restores the session from store and wires itself into api as
// token source and response interceptor. When the restored token looks
// valid it is re-checked with the server once, in the background; a
// failed check logs the user out. store and nav may be nil.
func NewSession(api *API, store Storage, nav Navigator, opts ...SessionOption) *Session {
	s := &Session{
		api:   api,
		store: store,
		nav:   nav,
		now:   time.Now,
		subs:  make(map[int]func(State)),
		ready: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.restore()

	api.Token = s.Token
	api.Intercept = s.intercept

	if s.IsAuthenticated() {
		go s.reverify()
	} else {
		close(s.ready)
	}
	return s
}

// Ready is closed once the startup re-verification has finished.
func (s *Session) Ready() <-chan struct{} { return s.ready }

func (s *Session) restore() {
	ctx := context.Background()
	if tok, ok := s.read(ctx, KeyToken); ok {
		s.token = tok
	}
	if raw, ok := s.read(ctx, KeyUser); ok {
		var u model.PublicUser
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = &u
		}
	}
}

func (s *Session) read(ctx context.Context, key string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("session: storage read failed")
		return "", false
	}
	return v, ok
}

func (s *Session) reverify() {
	defer close(s.ready)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.api.Verify(ctx); err != nil {
		log.Debug().Err(err).Msg("session: stored token rejected")
		// A 401 has already gone through the interceptor.
		if StatusOf(err) != http.StatusUnauthorized {
			s.Logout()
		}
	}
}

func (s *Session) intercept(status int) {
	switch status {
	case http.StatusUnauthorized:
		s.Logout()
	case http.StatusForbidden:
		s.navigate(PathUnauthorized)
	}
}

func (s *Session) navigate(path string) {
	if s.nav != nil {
		s.nav.Navigate(path)
	}
}

// Token returns the stored token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *model.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated decodes the token locally and reports whether it is
// well formed and unexpired. No request is made.
func (s *Session) IsAuthenticated() bool {
	return tokenLive(s.Token(), s.now())
}

func tokenLive(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && now.Before(claims.ExpiresAt.Time)
}

// HasAnyRole reports whether a user is signed in with one of roles.
func (s *Session) HasAnyRole(roles ...model.Role) bool {
	u := s.CurrentUser()
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// HasRole reports whether the signed-in user has exactly role.
func (s *Session) HasRole(role model.Role) bool { return s.HasAnyRole(role) }

// Login signs in. On failure the session is left as it was and the
// server's message is returned.
func (s *Session) Login(ctx context.Context, email, password string) (model.PublicUser, error) {
	data, err := s.api.Login(ctx, email, password)
	if err != nil {
		return model.PublicUser{}, err
	}
	s.set(ctx, data)
	return data.User, nil
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, in RegisterRequest) (model.PublicUser, error) {
	data, err := s.api.Register(ctx, in)
	if err != nil {
		return model.PublicUser{}, err
	}
	s.set(ctx, data)
	return data.User, nil
}

func (s *Session) set(ctx context.Context, data AuthData) {
	if s.store != nil {
		if err := s.store.Set(ctx, KeyToken, data.Token); err != nil {
			log.Warn().Err(err).Msg("session: persist token failed")
		}
		if raw, err := json.Marshal(data.User); err == nil {
			if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
				log.Warn().Err(err).Msg("session: persist user failed")
			}
		}
	}

	u := data.User
	s.mu.Lock()
	s.user, s.token = &u, data.Token
	s.mu.Unlock()
	s.publish()
}

// Logout clears storage and in-memory state and navigates to the login
// view. Calling it again is harmless.
func (s *Session) Logout() {
	ctx := context.Background()
	if s.store != nil {
		for _, k := range []string{KeyToken, KeyUser} {
			if err := s.store.Remove(ctx, k); err != nil {
				log.Warn().Err(err).Str("key", k).Msg("session: storage remove failed")
			}
		}
	}
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()
	s.publish()
	s.navigate(PathLogin)
}

// Subscribe registers fn for state changes and calls it once with the
// current state. The returned func unregisters it.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	fn(s.state())
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) state() State {
	return State{User: s.CurrentUser(), Authenticated: s.IsAuthenticated()}
}

func (s *Session) publish() {
	st := s.state()
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
