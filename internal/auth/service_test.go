package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgauth "github.com/pizzaro/pizzaro-backend/pkg/auth"
	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/mail"
	"github.com/pizzaro/pizzaro-backend/pkg/security"
)

type fakeCodeStore struct {
	data     map[string]string
	counters map[string]int64
	setErr   error
	dels     int
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{data: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeCodeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCodeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeCodeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	f.dels++
	return nil
}

func (f *fakeCodeStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeCodeStore) OTPKey(email string) string { return "pz:otp:" + email }

func (f *fakeCodeStore) RateLimitKey(scope string) string { return "pz:rate_limit:" + scope }

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUsers struct {
	user *models.User
	err  error
}

func (f *fakeUsers) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeAdmins struct {
	admins map[string]*models.AdminUser
}

func (f *fakeAdmins) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	if admin, ok := f.admins[username]; ok {
		return admin, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSessions struct {
	created map[string]time.Duration
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{created: map[string]time.Duration{}}
}

func (f *fakeSessions) Create(ctx context.Context, accessID string, ttl time.Duration) error {
	f.created[accessID] = ttl
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type authFixture struct {
	svc      *service
	store    *fakeCodeStore
	mailer   *fakeMailer
	users    *fakeUsers
	admins   *fakeAdmins
	sessions *fakeSessions
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "pizzaro-test",
		ExpirationMinutes: 60,
		AdminExpiration:   30,
	}
}

func testArgonConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	fx := &authFixture{
		store:    newFakeCodeStore(),
		mailer:   &fakeMailer{},
		users:    &fakeUsers{user: &models.User{ID: 7, Email: "ivan@example.com"}},
		admins:   &fakeAdmins{admins: map[string]*models.AdminUser{}},
		sessions: newFakeSessions(),
	}
	svc, err := NewService(ServiceParams{
		Store:     fx.store,
		Mailer:    fx.mailer,
		Users:     fx.users,
		Admins:    fx.admins,
		Sessions:  fx.sessions,
		JWT:       testJWTConfig(),
		OTP:       config.OTPConfig{TTL: 5 * time.Minute, CodeLength: 6},
		RateLimit: config.OTPRateLimitConfig{Window: time.Minute, EmailLimit: 3, IPLimit: 10},
		Log:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	fx.svc = svc.(*service)
	fx.svc.generateCode = func(length int) (string, error) { return "123456", nil }
	return fx
}

func TestRequestOTPEmailsThenStoresCode(t *testing.T) {
	fx := newAuthFixture(t)

	err := fx.svc.RequestOTP(context.Background(), RequestOTPInput{Email: " IVAN@example.com "})
	if err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}

	if len(fx.mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(fx.mailer.sent))
	}
	msg := fx.mailer.sent[0]
	if msg.To != "ivan@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if !strings.Contains(msg.Text, "123456") {
		t.Fatalf("code missing from email body: %q", msg.Text)
	}
	if fx.store.data["pz:otp:ivan@example.com"] != "123456" {
		t.Fatalf("code not stored: %#v", fx.store.data)
	}
}

func TestRequestOTPMailFailureSkipsStore(t *testing.T) {
	fx := newAuthFixture(t)
	fx.mailer.err = errors.New("smtp down")

	err := fx.svc.RequestOTP(context.Background(), RequestOTPInput{Email: "ivan@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(fx.store.data) != 0 {
		t.Fatalf("code must not be stored when email fails: %#v", fx.store.data)
	}
}

func TestRequestOTPInvalidEmail(t *testing.T) {
	fx := newAuthFixture(t)

	err := fx.svc.RequestOTP(context.Background(), RequestOTPInput{Email: "not-an-email"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestOTPRateLimited(t *testing.T) {
	fx := newAuthFixture(t)
	fx.svc.limitCfg.EmailLimit = 2

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := fx.svc.RequestOTP(ctx, RequestOTPInput{Email: "ivan@example.com"}); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	err := fx.svc.RequestOTP(ctx, RequestOTPInput{Email: "ivan@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if len(fx.mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(fx.mailer.sent))
	}
}

func TestVerifyOTPIssuesCustomerToken(t *testing.T) {
	fx := newAuthFixture(t)
	fx.store.data["pz:otp:ivan@example.com"] = "123456"

	result, err := fx.svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "ivan@example.com", Code: "123456"})
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "7" || claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, ok := fx.store.data["pz:otp:ivan@example.com"]; ok {
		t.Fatal("code must be consumed after a successful verify")
	}
	if ttl, ok := fx.sessions.created[claims.ID]; !ok || ttl != time.Hour {
		t.Fatalf("expected customer session with 1h ttl, got %v (%v)", ttl, ok)
	}
}

func TestVerifyOTPWrongCodeKeepsStored(t *testing.T) {
	fx := newAuthFixture(t)
	fx.store.data["pz:otp:ivan@example.com"] = "123456"

	_, err := fx.svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "ivan@example.com", Code: "999999"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if fx.store.data["pz:otp:ivan@example.com"] != "123456" {
		t.Fatal("a failed attempt must not consume the stored code")
	}
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "ivan@example.com", Code: "123456"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	fx := newAuthFixture(t)
	hash, err := security.HashPassword("hunter2", testArgonConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	fx.admins.admins["boss"] = &models.AdminUser{ID: 1, Username: "boss", PasswordHash: hash}

	result, err := fx.svc.AdminLogin(context.Background(), AdminLoginInput{Username: "boss", Password: "hunter2"})
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleAdmin || claims.UserID != "1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if ttl := fx.sessions.created[claims.ID]; ttl != 30*time.Minute {
		t.Fatalf("expected 30m admin session, got %v", ttl)
	}
}

func TestAdminLoginBadCredentials(t *testing.T) {
	fx := newAuthFixture(t)
	hash, err := security.HashPassword("hunter2", testArgonConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	fx.admins.admins["boss"] = &models.AdminUser{ID: 1, Username: "boss", PasswordHash: hash}

	for name, input := range map[string]AdminLoginInput{
		"wrong password": {Username: "boss", Password: "nope"},
		"unknown user":   {Username: "ghost", Password: "hunter2"},
	} {
		_, err := fx.svc.AdminLogin(context.Background(), input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)

	if err := fx.svc.Logout(context.Background(), "token-id"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(fx.sessions.revoked) != 1 || fx.sessions.revoked[0] != "token-id" {
		t.Fatalf("unexpected revocations %v", fx.sessions.revoked)
	}
}
