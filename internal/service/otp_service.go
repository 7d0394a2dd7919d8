package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"mercado-api/internal/email"
)

var (
	ErrOTPNotRequested  = errors.New("otp not requested or expired")
	ErrOTPInvalid       = errors.New("otp invalid")
	ErrRateLimited      = errors.New("rate limited")
	ErrEmailSendFailure = errors.New("email send failed")
)

const otpTTL = 5 * time.Minute

// OTPService emite y verifica códigos de un solo uso. El código nunca vuelve
// al cliente que lo pidió: el hash salteado queda del lado del servidor con
// TTL corto y el código viaja por correo.
type OTPService struct {
	logger  *zap.Logger
	store   OTPStore
	limiter OTPRateLimiter
	sender  email.Sender
}

func NewOTPService(logger *zap.Logger, store OTPStore, limiter OTPRateLimiter, sender email.Sender) *OTPService {
	if store == nil {
		store = NewMemoryOTPStore()
	}
	if limiter == nil {
		limiter = NewOTPRateLimiter(10*time.Minute, 3)
	}
	return &OTPService{
		logger:  logger,
		store:   store,
		limiter: limiter,
		sender:  sender,
	}
}

func (s *OTPService) Request(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || !emailPattern.MatchString(emailAddr) {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, emailAddr, hash, otpTTL); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrEmailSendFailure
	}
	if err := s.sender.SendVerificationOTP(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

// Verify consume el código: un solo intento por emisión, acierte o no.
func (s *OTPService) Verify(ctx context.Context, emailAddr, code string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return ErrOTPInvalid
	}

	stored, err := s.store.Consume(ctx, emailAddr)
	if err != nil {
		return err
	}
	if stored == "" {
		return ErrOTPNotRequested
	}
	if !verifyOTP(code, stored) {
		return ErrOTPInvalid
	}
	return nil
}

func generateOTP() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(otpTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
