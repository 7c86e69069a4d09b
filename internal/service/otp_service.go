package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"nutricare/internal/email"
)

const (
	otpTTL          = 10 * time.Minute
	otpMaxPerWindow = 3
	otpCodeMin      = 100000
	otpCodeRange    = 900000
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrOTPNotRequested  = errors.New("otp not requested")
	ErrOTPExpired       = errors.New("otp expired")
	ErrOTPInvalid       = errors.New("otp invalid")
	ErrEmailSendFailure = errors.New("email send failed")
	ErrRateLimited      = errors.New("rate limited")
)

// OTPService emite y valida codigos de un solo uso por email.
type OTPService struct {
	logger  *zap.Logger
	store   ChallengeStore
	sender  email.Sender
	limiter OTPRateLimiter
}

func NewOTPService(logger *zap.Logger, store ChallengeStore, sender email.Sender, limiter OTPRateLimiter) *OTPService {
	if store == nil {
		store = NewMemoryChallengeStore()
	}
	if limiter == nil {
		limiter = NewOTPRateLimiter(otpTTL, otpMaxPerWindow)
	}
	return &OTPService{
		logger:  logger,
		store:   store,
		sender:  sender,
		limiter: limiter,
	}
}

// RequestChallenge genera un codigo nuevo para el email, reemplazando
// cualquier challenge previo de ese email, y lo despacha por correo.
// Si el despacho falla el challenge queda inalcanzable para el usuario:
// el caller debe tratarlo como fallo duro.
func (s *OTPService) RequestChallenge(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	code, hash, expiresAt, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.store.Put(emailAddr, Challenge{CodeHash: hash, ExpiresAt: expiresAt}); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrEmailSendFailure
	}
	if err := s.sender.SendPasswordResetOTP(ctx, emailAddr, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send password reset otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}

	return nil
}

// VerifyChallenge comprueba el codigo sin consumirlo: la mutacion de
// password posterior es la que invalida el challenge. Un challenge
// expirado se limpia como efecto secundario.
func (s *OTPService) VerifyChallenge(_ context.Context, emailAddr, code string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return ErrOTPInvalid
	}

	ch, ok, err := s.store.Get(emailAddr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPNotRequested
	}
	if !time.Now().UTC().Before(ch.ExpiresAt) {
		_ = s.store.Delete(emailAddr)
		return ErrOTPExpired
	}
	if !verifyCode(code, ch.CodeHash) {
		return ErrOTPInvalid
	}

	return nil
}

// Invalidate limpia el challenge del email.
func (s *OTPService) Invalidate(_ context.Context, emailAddr string) error {
	return s.store.Delete(normalizeEmail(emailAddr))
}

// generateCode dibuja un entero uniforme en [100000, 999999], por lo que
// el codigo siempre tiene 6 digitos sin ceros a la izquierda.
func generateCode() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeRange))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := strconv.FormatInt(n.Int64()+otpCodeMin, 10)

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

func verifyCode(code, stored string) bool {
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
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

// OTPRateLimiter limita la frecuencia de solicitudes de OTP por clave.
type OTPRateLimiter interface {
	Allow(key string) bool
}

type otpRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewOTPRateLimiter crea un rate limiter en memoria.
func NewOTPRateLimiter(window time.Duration, max int) OTPRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &otpRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *otpRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}
