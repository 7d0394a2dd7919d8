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

	"mercado-api/internal/domain"
	"mercado-api/internal/repository"
)

var (
	ErrAlreadyBanned = errors.New("user is already banned")
	ErrNotBanned     = errors.New("user is not banned")
)

// ModerationService agrupa las operaciones de administración: ban, unban,
// listados y alta de admins.
type ModerationService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	bans     repository.BanRepository
	versions *TokenVersions
}

func NewModerationService(logger *zap.Logger, users repository.UserRepository, bans repository.BanRepository, versions *TokenVersions) *ModerationService {
	return &ModerationService{
		logger:   logger,
		users:    users,
		bans:     bans,
		versions: versions,
	}
}

type BanInput struct {
	UserID          string
	Reason          string
	BanDurationDays int
}

// Ban suspende al usuario. El unique de bans.user_id impide dobles bans; al
// suspender se sube la época de tokens para matar los emitidos.
func (s *ModerationService) Ban(ctx context.Context, input BanInput) (domain.Ban, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return domain.Ban{}, ErrMissingFields
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ban{}, ErrUserNotFound
		}
		return domain.Ban{}, err
	}

	now := time.Now().UTC()
	ban := domain.Ban{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Reason:    strings.TrimSpace(input.Reason),
		CreatedAt: now,
	}
	if input.BanDurationDays > 0 {
		until := now.AddDate(0, 0, input.BanDurationDays)
		ban.BannedUntil = &until
	}

	if err := s.bans.Create(ctx, ban); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Ban{}, ErrAlreadyBanned
		}
		return domain.Ban{}, err
	}

	if _, err := s.users.BumpTokenEpoch(ctx, user.ID); err != nil {
		s.logger.Error("token epoch bump failed after ban", zap.Error(err), zap.String("user_id", user.ID))
	} else if s.versions != nil {
		s.versions.Invalidate(ctx, user.ID)
	}

	s.logger.Info("user banned",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Timep("banned_until", ban.BannedUntil),
	)
	return ban, nil
}

func (s *ModerationService) Unban(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingFields
	}
	if err := s.bans.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotBanned
		}
		return err
	}
	s.logger.Info("user unbanned", zap.String("user_id", userID))
	return nil
}

func (s *ModerationService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *ModerationService) ListBans(ctx context.Context) ([]domain.Ban, error) {
	return s.bans.List(ctx)
}

type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
}

// CreateAdmin da de alta un usuario con rol admin. La autorización ya la
// aplicó el middleware sobre los claims verificados; acá no se comparan
// campos provistos por el cliente.
func (s *ModerationService) CreateAdmin(ctx context.Context, input CreateAdminInput) (domain.User, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)

	if name == "" || emailAddr == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}
	if !emailPattern.MatchString(emailAddr) {
		return domain.User{}, ErrInvalidEmail
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
		Role:         domain.RoleAdmin,
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
