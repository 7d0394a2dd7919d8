package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mercado-api/internal/domain"
	"mercado-api/internal/repository"
)

var (
	ErrMissingFields      = errors.New("please provide all fields")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleMismatch       = errors.New("user role mismatch")
)

// BannedError se devuelve al rechazar un login por suspensión vigente.
// Expone razón y vencimiento al llamador rechazado.
type BannedError struct {
	Reason string
	Until  *time.Time
}

func (e *BannedError) Error() string {
	if e.Until == nil {
		return "account banned permanently"
	}
	return fmt.Sprintf("account banned until %s", e.Until.UTC().Format(time.RFC3339))
}

// Chequeo sintáctico simple, no una validación RFC completa.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthService coordina registro y verificación de credenciales.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	bans   repository.BanRepository
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, bans repository.BanRepository) *AuthService {
	return &AuthService{
		logger: logger,
		users:  users,
		bans:   bans,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register crea un usuario nuevo. La unicidad email+rol la aplica el
// constraint de la base: un insert duplicado se traduce a ErrUserExists.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	role := strings.ToLower(strings.TrimSpace(input.Role))

	if name == "" || emailAddr == "" || password == "" || role == "" {
		return domain.User{}, ErrMissingFields
	}
	if !emailPattern.MatchString(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	// Los admins solo se crean vía create-admin.
	if role != domain.RoleCustomer && role != domain.RoleSeller {
		return domain.User{}, ErrInvalidRole
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		Role:         role,
		TokenEpoch:   1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate verifica credenciales para el rol indicado. El lookup va
// acotado por rol: dos usuarios pueden compartir email bajo roles distintos.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password, role string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	role = strings.ToLower(strings.TrimSpace(role))
	if emailAddr == "" || password == "" || role == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmailAndRole(ctx, emailAddr, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, s.classifyMiss(ctx, emailAddr, password)
		}
		return domain.User{}, err
	}

	if err := s.checkBan(ctx, user.ID); err != nil {
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	if user.Role != role {
		return domain.User{}, ErrRoleMismatch
	}
	return user, nil
}

// classifyMiss distingue "rol equivocado" de "credenciales malas" cuando el
// lookup acotado por rol no encontró nada. Solo se revela el mismatch si el
// password coincide con la cuenta existente: es el dueño de la cuenta.
func (s *AuthService) classifyMiss(ctx context.Context, emailAddr, password string) error {
	candidates, err := s.users.ListByEmail(ctx, emailAddr)
	if err != nil {
		return ErrInvalidCredentials
	}
	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(password)) == nil {
			return ErrRoleMismatch
		}
	}
	// Genérico a propósito: no distingue email inexistente de password malo.
	return ErrInvalidCredentials
}

// checkBan aplica la expiración perezosa: un ban vencido se borra en el
// siguiente intento de login, no hay barrido en background.
func (s *AuthService) checkBan(ctx context.Context, userID string) error {
	ban, err := s.bans.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	if !ban.Active(time.Now().UTC()) {
		if err := s.bans.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("expired ban cleanup failed", zap.Error(err), zap.String("user_id", userID))
		}
		return nil
	}
	return &BannedError{Reason: ban.Reason, Until: ban.BannedUntil}
}

func (s *AuthService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id, name, profilePicture string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, ErrMissingFields
	}
	if err := s.users.UpdateProfile(ctx, id, name, profilePicture); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
