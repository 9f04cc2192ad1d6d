package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/listing"
	"github.com/iliyamo/property-rental/internal/model"
	fakeuserrepo "github.com/iliyamo/property-rental/internal/repository/repofake"
	"github.com/iliyamo/property-rental/internal/router"
	"github.com/iliyamo/property-rental/internal/service"
	"github.com/iliyamo/property-rental/internal/utils"
)

const secret = "client-test-secret"

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Navigate(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type env struct {
	srv   *httptest.Server
	users *fakeuserrepo.FakeUserRepo
	codec *utils.TokenCodec
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.Config{JWTSecret: secret, TokenTTL: time.Hour, StoreTimeout: time.Second}
	users := fakeuserrepo.NewFakeUserRepo()
	codec := utils.NewTokenCodec(&cfg)
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	e := router.New(router.Deps{
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Verifier: codec,
		Auth:     service.NewAuthService(&cfg, users, hasher, codec),
		Users:    users,
		Catalog:  listing.DefaultCatalog(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	digest, err := hasher.Hash("password1")
	require.NoError(t, err)
	users.Seed(model.User{Email: "t@x.com", PasswordHash: digest, FirstName: "T", LastName: "T", Role: model.RoleTenant, IsActive: true})
	return &env{srv: srv, users: users, codec: codec}
}

func (e *env) api() *API { return NewAPI(e.srv.URL+"/api", e.srv.Client()) }

func waitReady(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(3 * time.Second):
		t.Fatal("startup verification did not finish")
	}
}

func TestSession_LoginPersistsAndPublishes(t *testing.T) {
	e := newEnv(t)
	store := NewMemoryStorage()
	nav := &recorder{}
	s := NewSession(e.api(), store, nav)
	waitReady(t, s)

	var states []State
	cancel := s.Subscribe(func(st State) { states = append(states, st) })
	defer cancel()

	u, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenant, u.Role)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.HasRole(model.RoleTenant))
	assert.False(t, s.HasAnyRole(model.RoleAdmin, model.RoleOwner))

	tok, ok, _ := store.Get(context.Background(), KeyToken)
	require.True(t, ok)
	assert.Equal(t, s.Token(), tok)
	raw, ok, _ := store.Get(context.Background(), KeyUser)
	require.True(t, ok)
	var stored model.PublicUser
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "t@x.com", stored.Email)

	require.Len(t, states, 2)
	assert.False(t, states[0].Authenticated)
	assert.True(t, states[1].Authenticated)
	assert.Empty(t, nav.all())
}

func TestSession_LoginFailureLeavesState(t *testing.T) {
	e := newEnv(t)
	nav := &recorder{}
	s := NewSession(e.api(), NewMemoryStorage(), nav)
	waitReady(t, s)
	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)
	before := s.Token()

	_, err = s.Login(context.Background(), "t@x.com", "wrong-pass")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, service.MsgInvalidCredentials, err.Error())
	assert.Equal(t, before, s.Token())
	assert.True(t, s.IsAuthenticated())
	assert.Empty(t, nav.all())
}

func TestSession_RegisterValidationError(t *testing.T) {
	e := newEnv(t)
	s := NewSession(e.api(), nil, nil)
	_, err := s.Register(context.Background(), RegisterRequest{Email: "n@x.com", Password: "short", FirstName: "N", LastName: "N", Role: model.RoleOwner})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "Password must be at least 8 characters long")
	assert.False(t, s.IsAuthenticated())
}

func TestSession_LogoutIsIdempotent(t *testing.T) {
	e := newEnv(t)
	store := NewMemoryStorage()
	nav := &recorder{}
	s := NewSession(e.api(), store, nav)
	_, err := s.Register(context.Background(), RegisterRequest{Email: "n@x.com", Password: "password1", FirstName: "N", LastName: "N", Role: model.RoleOwner})
	require.NoError(t, err)

	s.Logout()
	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
	_, ok, _ := store.Get(context.Background(), KeyToken)
	assert.False(t, ok)
	_, ok, _ = store.Get(context.Background(), KeyUser)
	assert.False(t, ok)
	assert.Equal(t, []string{PathLogin, PathLogin}, nav.all())
}

func TestSession_NilStorage(t *testing.T) {
	e := newEnv(t)
	s := NewSession(e.api(), nil, nil)
	waitReady(t, s)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())

	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	s.Logout()
	assert.False(t, s.IsAuthenticated())
}

func TestSession_RestoresAndReverifies(t *testing.T) {
	e := newEnv(t)
	tok, err := e.codec.Issue(utils.Claims{UserID: 1, Email: "t@x.com", Role: model.RoleTenant})
	require.NoError(t, err)
	store := NewMemoryStorage()
	require.NoError(t, store.Set(context.Background(), KeyToken, tok))
	require.NoError(t, store.Set(context.Background(), KeyUser, `{"id":1,"email":"t@x.com","role":"tenant"}`))

	nav := &recorder{}
	s := NewSession(e.api(), store, nav)
	waitReady(t, s)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "t@x.com", s.CurrentUser().Email)
	assert.Empty(t, nav.all())
}

func TestSession_ServerRejectsRestoredToken(t *testing.T) {
	e := newEnv(t)
	forged := utils.NewTokenCodec(&config.Config{JWTSecret: "someone-else", TokenTTL: time.Hour})
	tok, err := forged.Issue(utils.Claims{UserID: 1, Email: "t@x.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	store := NewMemoryStorage()
	require.NoError(t, store.Set(context.Background(), KeyToken, tok))

	nav := &recorder{}
	s := NewSession(e.api(), store, nav)
	waitReady(t, s)

	assert.False(t, s.IsAuthenticated())
	_, ok, _ := store.Get(context.Background(), KeyToken)
	assert.False(t, ok)
	assert.Equal(t, []string{PathLogin}, nav.all())
}

func TestSession_ExpiredTokenSkipsReverify(t *testing.T) {
	e := newEnv(t)
	tok, err := e.codec.Issue(utils.Claims{UserID: 1, Email: "t@x.com", Role: model.RoleTenant})
	require.NoError(t, err)
	store := NewMemoryStorage()
	require.NoError(t, store.Set(context.Background(), KeyToken, tok))

	nav := &recorder{}
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	s := NewSession(e.api(), store, nav, WithClock(later))

	select {
	case <-s.Ready():
	default:
		t.Fatal("ready should be closed when no verification is needed")
	}
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, nav.all())
}

func TestTokenLive(t *testing.T) {
	now := time.Now()
	assert.False(t, tokenLive("", now))
	assert.False(t, tokenLive("not-a-token", now))
	assert.False(t, tokenLive("a.b.c", now))
}

func TestInterceptor_ForbiddenNavigates(t *testing.T) {
	e := newEnv(t)
	nav := &recorder{}
	s := NewSession(e.api(), NewMemoryStorage(), nav)
	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)

	err = s.api.Get(context.Background(), "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, []string{PathUnauthorized}, nav.all())
}

func TestInterceptor_UnauthorizedLogsOut(t *testing.T) {
	e := newEnv(t)
	nav := &recorder{}
	api := e.api()
	s := NewSession(api, NewMemoryStorage(), nav)
	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)

	api.Token = func() string { return "garbage" }
	_, err = api.Me(context.Background())
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Empty(t, s.Token())
	assert.Equal(t, []string{PathLogin}, nav.all())
}

func TestAPI_Me(t *testing.T) {
	e := newEnv(t)
	s := NewSession(e.api(), nil, nil)
	_, err := s.Login(context.Background(), "T@x.com", "password1")
	require.NoError(t, err)

	me, err := s.api.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t@x.com", me.Email)
	assert.Equal(t, model.RoleTenant, me.Role)
}

func TestRouter(t *testing.T) {
	e := newEnv(t)
	nav := &recorder{}
	s := NewSession(e.api(), nil, nav)
	r := NewRouter(s, nav)

	assert.True(t, r.CanActivate("/"))
	assert.True(t, r.CanActivate("/register"))
	assert.False(t, r.CanActivate("/admin/users"))
	assert.Equal(t, []string{"/login?returnUrl=%2Fadmin%2Fusers"}, nav.all())

	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)

	assert.True(t, r.CanActivate("/tenant/properties"))
	assert.True(t, r.CanActivate("/tenant"))
	assert.False(t, r.CanActivate("/owner/dashboard"))
	assert.False(t, r.CanActivate("/administrator"))
	assert.Equal(t, []string{"/login?returnUrl=%2Fadmin%2Fusers", PathUnauthorized, PathLogin}, nav.all())
}

func TestRoleGuard_MultipleRoles(t *testing.T) {
	e := newEnv(t)
	nav := &recorder{}
	s := NewSession(e.api(), nil, nav)
	_, err := s.Login(context.Background(), "t@x.com", "password1")
	require.NoError(t, err)

	assert.True(t, RoleGuard(s, nav, model.RoleTenant, model.RoleAdmin)("/x"))
	assert.False(t, RoleGuard(s, nav, model.RoleAdmin, model.RoleOwner)("/x"))
	assert.Equal(t, []string{PathUnauthorized}, nav.all())
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	st, err := OpenSQLiteStorage(ctx, path)
	require.NoError(t, err)

	_, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, KeyToken, "one"))
	require.NoError(t, st.Set(ctx, KeyToken, "two"))
	v, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	require.NoError(t, st.Close())

	reopened, err := OpenSQLiteStorage(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	v, _, err = reopened.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, reopened.Remove(ctx, KeyToken))
	_, ok, err = reopened.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
