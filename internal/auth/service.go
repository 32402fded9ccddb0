package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"dsa-tracker/internal/logging"
	"dsa-tracker/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrOTPExpired         = errors.New("verification code has expired")
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Service handles signup, verification, and login
type Service struct {
	users         UserStore
	tokens        TokenService
	email         EmailService
	logger        *logging.Logger
	tokenDuration time.Duration
	otpTTL        time.Duration
	now           func() time.Time
}

func NewService(
	users UserStore,
	tokens TokenService,
	email EmailService,
	logger *logging.Logger,
	tokenDuration time.Duration,
	otpTTL time.Duration,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		email:         email,
		logger:        logger,
		tokenDuration: tokenDuration,
		otpTTL:        otpTTL,
		now:           time.Now,
	}
}

// Signup creates an unverified account and emails a one-time code
func (s *Service) Signup(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	otpExpires := s.now().Add(s.otpTTL)

	if _, err := s.users.Create(ctx, email, passwordHash, otp, otpExpires); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Deliver the code without blocking the request; the user can ask for
	// a fresh one if delivery fails.
	go func() {
		emailCtx := context.Background()
		if err := s.email.SendOTPEmail(emailCtx, email, otp); err != nil {
			s.logger.Warn("failed to send otp email", "email", email, "error", err)
		}
	}()

	return nil
}

// Verify checks the one-time code and issues a bearer token. An account
// that is already verified never gets a token here, only through Login.
func (s *Service) Verify(ctx context.Context, email, otp string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if existing.IsVerified {
		return "", ErrAlreadyVerified
	}

	if existing.OTPCode == nil || subtle.ConstantTimeCompare([]byte(*existing.OTPCode), []byte(otp)) != 1 {
		return "", ErrInvalidOTP
	}
	if existing.OTPExpires == nil || existing.OTPExpires.Before(s.now()) {
		return "", ErrOTPExpired
	}

	if err := s.users.MarkVerified(ctx, existing.ID); err != nil {
		return "", fmt.Errorf("failed to mark user as verified: %w", err)
	}

	token, err := s.tokens.CreateToken(existing.ID, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}

// Login authenticates a verified user and returns a bearer token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existing.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	if !existing.IsVerified {
		return "", ErrEmailNotVerified
	}

	token, err := s.tokens.CreateToken(existing.ID, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}

// ResendOTP issues a fresh code for an unverified account.
// Always returns nil to prevent email enumeration.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get user for otp resend", "error", err)
		return nil
	}

	if existing.IsVerified {
		return nil
	}

	otp, err := generateOTP()
	if err != nil {
		s.logger.Warn("failed to generate otp", "error", err)
		return nil
	}

	if err := s.users.SetOTP(ctx, existing.ID, otp, s.now().Add(s.otpTTL)); err != nil {
		s.logger.Warn("failed to store otp", "error", err)
		return nil
	}

	go func() {
		emailCtx := context.Background()
		if err := s.email.SendOTPEmail(emailCtx, email, otp); err != nil {
			s.logger.Warn("failed to resend otp email", "email", email, "error", err)
		}
	}()

	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	if len(email) > 254 {
		return "", ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmailFormat
	}
	return email, nil
}

// generateOTP creates a 6-digit numeric one-time code
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
