package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/pizzaro/pizzaro-backend/pkg/auth"
	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/mail"
	redisclient "github.com/pizzaro/pizzaro-backend/pkg/redis"
	"github.com/pizzaro/pizzaro-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	invalidCodeMessage        = "invalid or expired code"
)

var validate = validator.New()

// Service defines the behavior needed by the auth controller.
type Service interface {
	RequestOTP(ctx context.Context, input RequestOTPInput) error
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (*LoginResult, error)
	AdminLogin(ctx context.Context, input AdminLoginInput) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPKey(email string) string
	RateLimitKey(scope string) string
}

type userProvider interface {
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
}

type adminFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

type sessionManager interface {
	Create(ctx context.Context, accessID string, ttl time.Duration) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	store        codeStore
	mailer       mail.Sender
	users        userProvider
	admins       adminFinder
	sessions     sessionManager
	jwtCfg       config.JWTConfig
	otpCfg       config.OTPConfig
	limitCfg     config.OTPRateLimitConfig
	log          *logger.Logger
	now          func() time.Time
	generateCode func(length int) (string, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store     codeStore
	Mailer    mail.Sender
	Users     userProvider
	Admins    adminFinder
	Sessions  sessionManager
	JWT       config.JWTConfig
	OTP       config.OTPConfig
	RateLimit config.OTPRateLimitConfig
	Log       *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("code store is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users provider is required")
	}
	if params.Admins == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		store:        params.Store,
		mailer:       params.Mailer,
		users:        params.Users,
		admins:       params.Admins,
		sessions:     params.Sessions,
		jwtCfg:       params.JWT,
		otpCfg:       params.OTP,
		limitCfg:     params.RateLimit,
		log:          params.Log,
		now:          time.Now,
		generateCode: randomCode,
	}, nil
}

// RequestOTP emails a one-time login code. The code is stored only after the
// email goes out so a delivery failure never leaves a dangling valid code.
func (s *service) RequestOTP(ctx context.Context, input RequestOTPInput) error {
	email := normalizeEmail(input.Email)
	if validate.Var(email, "required,email") != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}

	if err := s.checkRateLimit(ctx, "otp:email:"+email, s.limitCfg.EmailLimit); err != nil {
		return err
	}
	if ip := strings.TrimSpace(input.ClientIP); ip != "" {
		if err := s.checkRateLimit(ctx, "otp:ip:"+ip, s.limitCfg.IPLimit); err != nil {
			return err
		}
	}

	code, err := s.generateCode(s.otpCfg.CodeLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate login code")
	}

	minutes := int(s.otpCfg.TTL.Minutes())
	msg := mail.Message{
		To:      email,
		Subject: "Your login code",
		Text:    fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf("<p>Your login code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>", code, minutes),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send login code")
	}

	if err := s.store.Set(ctx, s.store.OTPKey(email), code, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store login code")
	}

	s.log.Info(s.log.WithField(ctx, "email", email), "login code issued")
	return nil
}

// VerifyOTP exchanges a valid code for a customer access token, creating the
// customer profile on first login. A mismatched code leaves the stored code
// in place so the customer can retry until it expires.
func (s *service) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	code := strings.TrimSpace(input.Code)
	if validate.Var(email, "required,email") != nil || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and code are required")
	}

	key := s.store.OTPKey(email)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCodeMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read login code")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCodeMessage)
	}
	if err := s.store.Del(ctx, key); err != nil {
		s.log.Warn(s.log.WithField(ctx, "email", email), "failed to consume login code")
	}

	user, err := s.users.FindOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.issueToken(ctx, strconv.FormatInt(user.ID, 10), user.Email, enums.RoleCustomer)
}

// AdminLogin authenticates admin panel credentials and returns a short-lived
// admin token.
func (s *service) AdminLogin(ctx context.Context, input AdminLoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find admin")
	}

	ok, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueToken(ctx, strconv.FormatInt(admin.ID, 10), "", enums.RoleAdmin)
}

// Logout revokes the session behind the provided access token id.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) checkRateLimit(ctx context.Context, scope string, limit int) error {
	if limit <= 0 {
		return nil
	}
	count, err := s.store.IncrWithTTL(ctx, s.store.RateLimitKey(scope), s.limitCfg.Window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
	}
	if count > int64(limit) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many code requests, try again later")
	}
	return nil
}

func (s *service) issueToken(ctx context.Context, userID, email string, role enums.Role) (*LoginResult, error) {
	jti := uuid.NewString()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  email,
		Role:   role,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	ttl := s.jwtCfg.AccessTokenTTL()
	if role == enums.RoleAdmin {
		ttl = s.jwtCfg.AdminTokenTTL()
	}
	if err := s.sessions.Create(ctx, jti, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &LoginResult{Token: token, Role: role, UserID: userID, Email: email}, nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// randomCode returns a zero-padded numeric code of the requested length.
func randomCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	bound := big.NewInt(1)
	for i := 0; i < length; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
