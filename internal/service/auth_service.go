package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecomauth/internal/auth"
	apperrors "ecomauth/internal/errors"
	"ecomauth/internal/mail"
	"ecomauth/internal/model"
	"ecomauth/internal/otp"
	"ecomauth/internal/repository"
)

// AuthService orchestrates signup, verification, and login flows.
//
// Operations against the same user are not serialized here; concurrent
// requests race and the last row write wins.
type AuthService interface {
	// Signup registers a new user or re-issues a challenge to an existing
	// unverified one. created reports which of the two happened.
	Signup(ctx context.Context, name, email, password string) (user *model.User, created bool, err error)
	// VerifyAccount confirms an OTP challenge and returns a bearer token.
	VerifyAccount(ctx context.Context, userID uuid.UUID, code string) (token string, err error)
	// ResendOTP issues a fresh challenge regardless of verification state.
	ResendOTP(ctx context.Context, userID uuid.UUID) (*model.User, error)
	// Login authenticates a verified user. For an unverified user it issues a
	// fresh challenge and returns ErrEmailNotVerified together with the user.
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	// ForgotPassword issues a recovery challenge to the account's email.
	ForgotPassword(ctx context.Context, email string) (*model.User, error)
	// RecoverAccount replaces the password after a successful OTP check and
	// returns a bearer token. The account comes out verified.
	RecoverAccount(ctx context.Context, userID uuid.UUID, code, newPassword string) (token string, err error)
}

type authService struct {
	users  repository.UserRepository
	jwt    *auth.JWTService
	mailer mail.Sender
}

// NewAuthService creates the auth workflow service.
func NewAuthService(users repository.UserRepository, jwt *auth.JWTService, mailer mail.Sender) AuthService {
	return &authService{users: users, jwt: jwt, mailer: mailer}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	email = model.NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up user: %w", err)
	}

	code, expiresAt := otp.New()

	if existing != nil {
		if existing.IsEmailVerified {
			return nil, false, apperrors.ErrEmailAlreadyVerified
		}
		// Unverified re-signup updates the record in place instead of
		// duplicating the email.
		existing.Name = name
		if err := existing.SetPassword(password); err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		existing.SetOTP(code, expiresAt)
		if err := s.users.Save(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("save user: %w", err)
		}
		if err := s.sendVerificationOTP(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	user := &model.User{
		Name:            name,
		Email:           email,
		IsEmailVerified: false,
		IsAccountActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user.SetOTP(code, expiresAt)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	if err := s.sendVerificationOTP(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *authService) VerifyAccount(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return "", err
	}

	// Expiry is checked before the code match in every OTP-consuming path.
	if user.OTP.Expired(time.Now()) {
		return "", apperrors.ErrOTPExpired
	}
	if !user.OTP.Matches(code) {
		return "", apperrors.ErrInvalidOTP
	}

	user.IsEmailVerified = true
	user.ClearOTP()
	if err := s.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *authService) ResendOTP(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// No verification-state check: resend stays valid for verified accounts.
	code, expiresAt := otp.New()
	user.SetOTP(code, expiresAt)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	if err := s.sendVerificationOTP(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = model.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}

	if !user.IsEmailVerified {
		// A login attempt on an unverified account re-triggers the
		// verification challenge instead of authenticating.
		code, expiresAt := otp.New()
		user.SetOTP(code, expiresAt)
		if err := s.users.Save(ctx, user); err != nil {
			return "", nil, fmt.Errorf("save user: %w", err)
		}
		if err := s.sendVerificationOTP(ctx, user); err != nil {
			return "", nil, err
		}
		return "", user, apperrors.ErrEmailNotVerified
	}

	if !user.CheckPassword(password) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	code, expiresAt := otp.New()
	user.SetOTP(code, expiresAt)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	subject, body := mail.RecoveryEmail(user.Name, code)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return nil, fmt.Errorf("send recovery email: %w", err)
	}
	return user, nil
}

func (s *authService) RecoverAccount(ctx context.Context, userID uuid.UUID, code, newPassword string) (string, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.OTP.Expired(time.Now()) {
		return "", apperrors.ErrOTPExpired
	}
	if !user.OTP.Matches(code) {
		return "", apperrors.ErrInvalidOTP
	}

	if err := user.SetPassword(newPassword); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	user.ClearOTP()
	// Recovering through an emailed code proves control of the address, so the
	// account comes out verified even if signup verification never finished.
	user.IsEmailVerified = true
	if err := s.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *authService) findByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}

// sendVerificationOTP emails the user's outstanding challenge. A delivery
// failure fails the whole operation; the already-written OTP is left in place
// and simply gets overwritten on the next attempt.
func (s *authService) sendVerificationOTP(ctx context.Context, user *model.User) error {
	subject, body := mail.VerificationEmail(user.Name, user.OTP.Code)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
