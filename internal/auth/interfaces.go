package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dsa-tracker/internal/user"
)

// TokenService defines the interface for token creation and validation
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the user persistence surface the auth service needs
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, otpCode string, otpExpires time.Time) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	SetOTP(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error
	MarkVerified(ctx context.Context, userID uuid.UUID) error
}

// EmailService defines the interface for OTP delivery
type EmailService interface {
	SendOTPEmail(ctx context.Context, toEmail, code string) error
}
