package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/queue"
	"github.com/iliyamo/property-rental/internal/repository"
	fakeuserrepo "github.com/iliyamo/property-rental/internal/repository/repofake"
	"github.com/iliyamo/property-rental/internal/service"
	"github.com/iliyamo/property-rental/internal/utils"
)

const (
	testSecret   = "service-test-secret"
	testEmail    = "a@x.com"
	testPassword = "password1"
)

type testFixture struct {
	users   *fakeuserrepo.FakeUserRepo
	hasher  utils.BcryptHasher
	codec   *utils.TokenCodec
	service *service.AuthService
}

func setupTestFixture(t *testing.T, opts ...service.Option) *testFixture {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, StoreTimeout: time.Second}
	f := &testFixture{
		users:  fakeuserrepo.NewFakeUserRepo(),
		hasher: utils.NewBcryptHasher(bcrypt.MinCost),
		codec:  utils.NewTokenCodec(cfg),
	}
	f.service = service.NewAuthService(cfg, f.users, f.hasher, f.codec, opts...)
	return f
}

func (f *testFixture) seedUser(t *testing.T, email, password string, role model.Role, active bool) model.User {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return f.users.Seed(model.User{
		Email: email, PasswordHash: digest, FirstName: "Test", LastName: "User",
		Role: role, IsActive: active,
	})
}

func validRegistration() service.Registration {
	return service.Registration{
		Email: testEmail, Password: testPassword, FirstName: "Ann", LastName: "Lee",
		Role: model.RoleTenant,
	}
}

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	stored := f.seedUser(t, testEmail, testPassword, model.RoleOwner, true)

	res := f.service.Login(context.Background(), service.Credentials{Email: testEmail, Password: testPassword})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, service.MsgLoginOK, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, stored.Public(), res.Data.User)

	claims, err := f.codec.Verify(res.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, stored.Email, claims.Email)
	assert.Equal(t, stored.Role, claims.Role)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.seedUser(t, testEmail, testPassword, model.RoleTenant, true)

	res := f.service.Login(context.Background(), service.Credentials{Email: "  A@X.COM ", Password: testPassword})
	assert.True(t, res.Success)
}

func TestLogin_EnumerationResistance(t *testing.T) {
	f := setupTestFixture(t)
	f.seedUser(t, testEmail, testPassword, model.RoleTenant, true)

	wrongPassword := f.service.Login(context.Background(), service.Credentials{Email: testEmail, Password: "password2"})
	unknownEmail := f.service.Login(context.Background(), service.Credentials{Email: "zzz@x.com", Password: testPassword})

	assert.False(t, wrongPassword.Success)
	assert.False(t, unknownEmail.Success)
	assert.Equal(t, service.MsgInvalidCredentials, wrongPassword.Message)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := setupTestFixture(t)
	f.seedUser(t, testEmail, testPassword, model.RoleTenant, false)

	res := f.service.Login(context.Background(), service.Credentials{Email: testEmail, Password: testPassword})

	assert.False(t, res.Success)
	assert.Equal(t, service.MsgAccountInactive, res.Message)
	assert.NotEqual(t, service.MsgInvalidCredentials, res.Message)
	assert.Nil(t, res.Data)
}

func TestLogin_StoreFailureIsGeneric(t *testing.T) {
	f := setupTestFixture(t)
	f.users.Err = errors.New("dial tcp 10.0.0.5:3306: connection refused")

	res := f.service.Login(context.Background(), service.Credentials{Email: testEmail, Password: testPassword})

	assert.False(t, res.Success)
	assert.Equal(t, service.MsgLoginFailed, res.Message)
	assert.NotContains(t, res.Message, "10.0.0.5")
}

func TestRegister_Success(t *testing.T) {
	f := setupTestFixture(t)
	in := validRegistration()
	in.Email = "  New@X.com"
	in.PhoneNumber = "+1 555 0100"

	res := f.service.Register(context.Background(), in)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, service.MsgRegisterOK, res.Message)
	assert.Equal(t, "new@x.com", res.Data.User.Email)
	assert.Equal(t, model.RoleTenant, res.Data.User.Role)
	assert.True(t, res.Data.User.IsActive)
	assert.Equal(t, 1, f.users.Creates)

	stored, err := f.users.GetByEmail(context.Background(), "new@x.com")
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify(testPassword, stored.PasswordHash))
	assert.NotEqual(t, testPassword, stored.PasswordHash)

	claims, err := f.codec.Verify(res.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
}

func TestRegister_DuplicateEmailDoesNotMutate(t *testing.T) {
	f := setupTestFixture(t)
	f.seedUser(t, testEmail, testPassword, model.RoleTenant, true)
	before := f.users.Len()

	in := validRegistration()
	in.Email = "A@x.com"
	res := f.service.Register(context.Background(), in)

	assert.False(t, res.Success)
	assert.Equal(t, service.MsgEmailRegistered, res.Message)
	assert.Equal(t, before, f.users.Len())
	assert.Zero(t, f.users.Creates)
}

func TestRegister_InsertRaceMapsToAlreadyRegistered(t *testing.T) {
	f := setupTestFixture(t)
	f.users.CreateErr = repository.ErrEmailExists

	res := f.service.Register(context.Background(), validRegistration())

	assert.False(t, res.Success)
	assert.Equal(t, service.MsgEmailRegistered, res.Message)
}

func TestRegister_StoreFailureIsGeneric(t *testing.T) {
	f := setupTestFixture(t)
	f.users.CreateErr = errors.New("Error 1213: Deadlock found")

	res := f.service.Register(context.Background(), validRegistration())

	assert.False(t, res.Success)
	assert.Equal(t, service.MsgRegisterFailed, res.Message)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.UserRegisteredEvent
	done   chan struct{}
	err    error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.done <- struct{}{}
	return p.err
}

func TestRegister_PublishesEvent(t *testing.T) {
	pub := &recordingPublisher{done: make(chan struct{}, 1)}
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	f := setupTestFixture(t, service.WithPublisher(pub), service.WithNow(func() time.Time { return fixed }))

	res := f.service.Register(context.Background(), validRegistration())
	require.True(t, res.Success)

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, res.Data.User.ID, ev.UserID)
	assert.Equal(t, testEmail, ev.Email)
	assert.Equal(t, "tenant", ev.Role)
	assert.Equal(t, "2026-03-04T05:06:07Z", ev.RegisteredAt)
	assert.NotEmpty(t, ev.EventID)
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{done: make(chan struct{}, 1), err: errors.New("broker down")}
	f := setupTestFixture(t, service.WithPublisher(pub))

	res := f.service.Register(context.Background(), validRegistration())
	assert.True(t, res.Success)
	<-pub.done
}
