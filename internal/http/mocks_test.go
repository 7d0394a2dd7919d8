package http

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"mercado-api/internal/domain"
	"mercado-api/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email && existing.Role == user.Role {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *memUserRepo) GetByEmailAndRole(_ context.Context, email, role string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email && user.Role == role {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) ListByEmail(_ context.Context, email string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, user := range m.users {
		if user.Email == email {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

func (m *memUserRepo) UpdateProfile(_ context.Context, id, name, profilePicture string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Name = name
	user.ProfilePicture = profilePicture
	user.UpdatedAt = time.Now().UTC()
	m.users[id] = user
	return nil
}

func (m *memUserRepo) GetTokenEpoch(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return user.TokenEpoch, nil
}

func (m *memUserRepo) BumpTokenEpoch(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	user.TokenEpoch++
	m.users[id] = user
	return user.TokenEpoch, nil
}

type memBanRepo struct {
	mu   sync.Mutex
	bans map[string]domain.Ban
}

func newMemBanRepo() *memBanRepo {
	return &memBanRepo{bans: make(map[string]domain.Ban)}
}

func (m *memBanRepo) Create(_ context.Context, ban domain.Ban) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bans[ban.UserID]; ok {
		return repository.ErrDuplicate
	}
	m.bans[ban.UserID] = ban
	return nil
}

func (m *memBanRepo) GetByUserID(_ context.Context, userID string) (domain.Ban, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ban, ok := m.bans[userID]
	if !ok {
		return domain.Ban{}, pgx.ErrNoRows
	}
	return ban, nil
}

func (m *memBanRepo) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bans[userID]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.bans, userID)
	return nil
}

func (m *memBanRepo) List(_ context.Context) ([]domain.Ban, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Ban, 0, len(m.bans))
	for _, ban := range m.bans {
		out = append(out, ban)
	}
	return out, nil
}

type memSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
}

func (m *memSender) SendVerificationOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return nil
}
