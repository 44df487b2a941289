package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sales-voice/internal/domain"
	"sales-voice/internal/repository"
)

// UserService coordina registro y login con email + contraseña.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	limiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, limiter LoginRateLimiter) *UserService {
	if limiter == nil {
		limiter = NewLoginRateLimiter(loginWindow, loginMaxAttempts)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		limiter: limiter,
	}
}

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
)

const (
	minPasswordLength = 6
	loginWindow       = 10 * time.Minute
	loginMaxAttempts  = 5
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register crea un usuario nuevo con hash bcrypt de la contraseña.
// Sin display name explícito se usa la parte local del email.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user registered", zap.String("email", email))
	return user, nil
}

// Authenticate valida credenciales. Los intentos fallidos por email van
// contados contra el rate limiter antes de tocar bcrypt.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	email := normalizeEmail(emailAddr)
	if email == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if s.limiter != nil && !s.limiter.Allow(email) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}
	return email
}

// LoginRateLimiter limita intentos de login por clave (email).
type LoginRateLimiter interface {
	Allow(key string) bool
}

type loginRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewLoginRateLimiter crea un limiter en memoria de ventana deslizante.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &loginRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *loginRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.max {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}
