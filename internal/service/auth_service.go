package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nutricare/internal/domain"
	"nutricare/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password too short")
)

const minPasswordLen = 6

// AuthService coordina registro, login y mutaciones de credenciales.
type AuthService struct {
	logger     *zap.Logger
	accounts   repository.AccountRepository
	users      repository.UserRepository
	otp        *OTPService
	sessions   RefreshTokenStore
	adminEmail string
}

func NewAuthService(logger *zap.Logger, accounts repository.AccountRepository, users repository.UserRepository, otp *OTPService, sessions RefreshTokenStore, adminEmail string) *AuthService {
	return &AuthService{
		logger:     logger,
		accounts:   accounts,
		users:      users,
		otp:        otp,
		sessions:   sessions,
		adminEmail: normalizeEmail(adminEmail),
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Register crea identidad y perfil en una sola transaccion. El rol se
// decide por la regla fija de email admin y no es editable despues.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLen {
		return domain.User{}, ErrWeakPassword
	}

	_, err := s.accounts.GetIdentityByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrEmailInUse
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	role := domain.RoleUser
	if emailAddr == s.adminEmail {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	identity := domain.Identity{
		ID:           id,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    now,
	}
	user := domain.User{
		ID:        id,
		Email:     emailAddr,
		Name:      strings.TrimSpace(input.Name),
		Role:      role,
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: now,
	}

	if err := s.accounts.CreateAccount(ctx, identity, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Login valida credenciales y luego carga el perfil. Una identidad
// valida sin perfil se trata como fallo de login, no se autorepara.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	identity, err := s.accounts.GetIdentityByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if s.logger != nil {
				s.logger.Warn("identity without profile", zap.String("email", emailAddr))
			}
			return domain.User{}, ErrProfileNotFound
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

type ProfileUpdate struct {
	Name         *string
	Phone        *string
	ProfileImage *string
}

// UpdateProfile hace merge superficial de los campos editables y SIEMPRE
// persiste el resultado. Email y rol son inmutables.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, updates ProfileUpdate) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if updates.Name != nil {
		user.Name = strings.TrimSpace(*updates.Name)
	}
	if updates.Phone != nil {
		user.Phone = strings.TrimSpace(*updates.Phone)
	}
	if updates.ProfileImage != nil {
		user.ProfileImage = strings.TrimSpace(*updates.ProfileImage)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// RequestPasswordReset emite un challenge para un email registrado
// (variante anonima, "olvide mi password").
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if _, err := s.accounts.GetIdentityByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return s.otp.RequestChallenge(ctx, emailAddr)
}

// RequestPasswordChange emite un challenge para el usuario autenticado.
func (s *AuthService) RequestPasswordChange(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return s.otp.RequestChallenge(ctx, user.Email)
}

// VerifyResetCode comprueba el codigo sin consumirlo; el paso OTP de la
// UI avanza al paso de password con el challenge todavia vigente.
func (s *AuthService) VerifyResetCode(ctx context.Context, emailAddr, code string) error {
	return s.otp.VerifyChallenge(ctx, emailAddr, code)
}

// ResetPassword re-verifica el challenge, actualiza la credencial, lo
// consume y revoca todas las sesiones del usuario: la credencial cambio
// debajo de cualquier token activo.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	if err := s.otp.VerifyChallenge(ctx, emailAddr, code); err != nil {
		return err
	}

	identity, err := s.accounts.GetIdentityByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, identity.ID, string(hashBytes), time.Now().UTC()); err != nil {
		return err
	}

	if err := s.otp.Invalidate(ctx, emailAddr); err != nil && s.logger != nil {
		s.logger.Warn("invalidate otp challenge failed", zap.Error(err), zap.String("email", emailAddr))
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeAllForUser(identity.ID); err != nil && s.logger != nil {
			s.logger.Warn("revoke sessions failed", zap.Error(err), zap.String("user_id", identity.ID))
		}
	}

	return nil
}

// ChangePassword es la variante autenticada: mismo flujo que el reset,
// sobre el email del usuario en sesion.
func (s *AuthService) ChangePassword(ctx context.Context, userID, code, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return s.ResetPassword(ctx, user.Email, code, newPassword)
}
