package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/password"
)

const minPasswordLen = 6

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Bearer string
	User   *domain.User
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// RequestPasswordReset issues a fresh reset code for the account behind
	// email and delivers it out of band. The code is also returned so the
	// transport can mirror it to the client; see the handler for the
	// trade-off note.
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// challengeRegistry is the pending-reset-code store. The in-process otp
// registry implements it; a durable TTL store could be swapped in without
// touching this service.
type challengeRegistry interface {
	Issue(email string) (string, error)
	VerifyAndConsume(email, submitted string) error
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type jwtSigner interface {
	Sign(userID, role string) (string, error)
}

type service struct {
	users         userStore
	registry      challengeRegistry
	mailer        mailSender
	sms           smsSender
	jwtProvider   jwtSigner
	notifyTimeout time.Duration
}

type ServiceDeps struct {
	UserRepo      userStore
	Registry      challengeRegistry
	Mailer        mailSender
	SMSSender     smsSender
	JWTProvider   jwtSigner
	NotifyTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	timeout := deps.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &service{
		users:         deps.UserRepo,
		registry:      deps.Registry,
		mailer:        deps.Mailer,
		sms:           deps.SMSSender,
		jwtProvider:   deps.JWTProvider,
		notifyTimeout: timeout,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password required: %w", domain.ErrMissingFields)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, User: u}, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email required: %w", domain.ErrMissingFields)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("no account for email: %w", domain.ErrNotFound)
	}

	// Issuing overwrites any pending code for this email; the old one is
	// silently superseded.
	code, err := s.registry.Issue(u.Email)
	if err != nil {
		return "", err
	}

	if err := s.deliver(ctx, u, code); err != nil {
		return "", err
	}
	return code, nil
}

// deliver sends the code by mail, falling back to SMS when the account has a
// phone number. The whole attempt is bounded by notifyTimeout; a timeout is
// reported as unavailable, never as silent success.
func (s *service) deliver(ctx context.Context, u *domain.User, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := s.mailer.SendEmail(u.Email, "Password reset code",
			fmt.Sprintf("Your reset code is: %s (valid for 5 minutes)", code))
		if err != nil && s.sms != nil && u.Phone != nil {
			err = s.sms.SendSMS(ctx, *u.Phone, "Your reset code is: "+code)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("deliver reset code: %w", domain.ErrNotifierUnavailable)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("deliver reset code timed out: %w", domain.ErrNotifierUnavailable)
	}
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return fmt.Errorf("email, otp and new_password required: %w", domain.ErrMissingFields)
	}

	// Consume first. From here on the challenge is spent no matter what
	// happens below: a failed write must not leave a consumable code behind,
	// and a retry must not verify twice. The caller requests a new code on
	// any later failure.
	if err := s.registry.VerifyAndConsume(req.Email, req.OTP); err != nil {
		return err
	}

	if len(req.NewPassword) < minPasswordLen {
		return domain.ErrWeakPassword
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("account lookup after consume: %w", domain.ErrPersistence)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
		return fmt.Errorf("store new password hash (request a new code): %w", domain.ErrPersistence)
	}
	return nil
}
