package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockEmailSender struct {
	lastTo      string
	lastCode    string
	lastExpires time.Time
	sent        int
	err         error
}

func (m *mockEmailSender) SendPasswordResetOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	m.sent++
	return m.err
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestGenerateCode_SixDigitsNoLeadingZero(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, hash, expiresAt, err := generateCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digit code, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code is not numeric: %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code out of range: %d", n)
		}
		if !verifyCode(code, hash) {
			t.Fatalf("generated hash does not verify its own code")
		}
		if !expiresAt.After(time.Now().UTC()) {
			t.Fatalf("expected future expiry, got %v", expiresAt)
		}
	}
}

func TestOTPService_RequestAndVerify(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, allowAllLimiter{})
	ctx := context.Background()

	if err := svc.RequestChallenge(ctx, "  User@Example.COM "); err != nil {
		t.Fatalf("request challenge: %v", err)
	}
	if sender.lastTo != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", sender.lastTo)
	}

	// El email del verify se normaliza igual que el del request.
	if err := svc.VerifyChallenge(ctx, "USER@example.com", sender.lastCode); err != nil {
		t.Fatalf("verify challenge: %v", err)
	}
}

func TestOTPService_VerifyDoesNotConsume(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, allowAllLimiter{})
	ctx := context.Background()

	if err := svc.RequestChallenge(ctx, "user@example.com"); err != nil {
		t.Fatalf("request challenge: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := svc.VerifyChallenge(ctx, "user@example.com", sender.lastCode); err != nil {
			t.Fatalf("verify attempt %d: %v", i, err)
		}
	}
}

func TestOTPService_WrongCode(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, allowAllLimiter{})
	ctx := context.Background()

	if err := svc.RequestChallenge(ctx, "user@example.com"); err != nil {
		t.Fatalf("request challenge: %v", err)
	}

	wrong := "000000"
	if wrong == sender.lastCode {
		wrong = "000001"
	}
	if err := svc.VerifyChallenge(ctx, "user@example.com", wrong); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}

	// El codigo correcto sigue vigente tras un intento fallido.
	if err := svc.VerifyChallenge(ctx, "user@example.com", sender.lastCode); err != nil {
		t.Fatalf("verify after failed attempt: %v", err)
	}
}

func TestOTPService_NotRequested(t *testing.T) {
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), &mockEmailSender{}, allowAllLimiter{})

	err := svc.VerifyChallenge(context.Background(), "nobody@example.com", "123456")
	if !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested, got %v", err)
	}
}

func TestOTPService_ExpiredChallengeIsCleared(t *testing.T) {
	store := NewMemoryChallengeStore()
	svc := NewOTPService(zap.NewNop(), store, &mockEmailSender{}, allowAllLimiter{})
	ctx := context.Background()

	if err := store.Put("user@example.com", Challenge{
		CodeHash:  "salt:hash",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	if err := svc.VerifyChallenge(ctx, "user@example.com", "123456"); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}

	// Tras la limpieza, el mismo email pasa a "nunca solicitado".
	if err := svc.VerifyChallenge(ctx, "user@example.com", "123456"); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested after cleanup, got %v", err)
	}
}

func TestOTPService_NewRequestReplacesPrevious(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, allowAllLimiter{})
	ctx := context.Background()

	if err := svc.RequestChallenge(ctx, "user@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	firstCode := sender.lastCode

	if err := svc.RequestChallenge(ctx, "user@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	secondCode := sender.lastCode

	if firstCode != secondCode {
		if err := svc.VerifyChallenge(ctx, "user@example.com", firstCode); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected old code to be invalid, got %v", err)
		}
	}
	if err := svc.VerifyChallenge(ctx, "user@example.com", secondCode); err != nil {
		t.Fatalf("verify latest code: %v", err)
	}
}

func TestOTPService_SendFailure(t *testing.T) {
	sender := &mockEmailSender{err: errors.New("smtp down")}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, allowAllLimiter{})

	err := svc.RequestChallenge(context.Background(), "user@example.com")
	if !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
}

func TestOTPService_RateLimited(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), sender, denyAllLimiter{})

	err := svc.RequestChallenge(context.Background(), "user@example.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if sender.sent != 0 {
		t.Fatalf("expected no email on rate limit, sent %d", sender.sent)
	}
}

func TestOTPService_RejectsMalformedCode(t *testing.T) {
	svc := NewOTPService(zap.NewNop(), NewMemoryChallengeStore(), &mockEmailSender{}, allowAllLimiter{})
	ctx := context.Background()

	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		if err := svc.VerifyChallenge(ctx, "user@example.com", code); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("code %q: expected ErrOTPInvalid, got %v", code, err)
		}
	}
}

func TestOTPRateLimiter_Window(t *testing.T) {
	limiter := NewOTPRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("user@example.com") {
			t.Fatalf("expected request %d to pass", i)
		}
	}
	if limiter.Allow("user@example.com") {
		t.Fatalf("expected fourth request to be limited")
	}
	if !limiter.Allow("other@example.com") {
		t.Fatalf("expected independent key to pass")
	}
}
