package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// DefaultTokenTTL is the lifetime of an issued access token.
const DefaultTokenTTL = 24 * time.Hour

// AuthDeps wires the collaborators of AuthService.
type AuthDeps struct {
	Users    ports.UserRepository
	Secret   string
	TokenTTL time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// AuthService registers users, checks credentials and issues bearer tokens.
type AuthService struct {
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Session is returned after a successful register or login.
type Session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type tokenClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService constructs the service. An empty secret is rejected.
func NewAuthService(deps AuthDeps) (*AuthService, error) {
	if strings.TrimSpace(deps.Secret) == "" {
		return nil, errors.New("auth: jwt secret is empty")
	}
	if deps.TokenTTL <= 0 {
		deps.TokenTTL = DefaultTokenTTL
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &AuthService{
		users:  deps.Users,
		secret: []byte(deps.Secret),
		ttl:    deps.TokenTTL,
		logger: deps.Logger,
		now:    deps.Now,
	}, nil
}

// Register creates a regular user and signs them in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (Session, error) {
	user, err := createAccount(ctx, s.users, name, email, password, domain.RoleUser)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return s.session(user)
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: Missing fields", domain.ErrValidation)
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: Invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", "email", email)
		return Session{}, fmt.Errorf("%w: Invalid credentials", domain.ErrUnauthorized)
	}
	return s.session(user)
}

// Verify parses a bearer token into the calling principal.
func (s *AuthService) Verify(token string) (domain.Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: Invalid Token", domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || !claims.Role.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: Invalid Token", domain.ErrUnauthorized)
	}
	return domain.Principal{UserID: id, Email: claims.Email, Role: claims.Role}, nil
}

// EnsureAdmin creates an administrator account unless the email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup bootstrap admin: %w", err)
	}
	user, err := createAccount(ctx, s.users, name, email, password, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", "user_id", user.ID, "email", user.Email)
	return nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user domain.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

func createAccount(ctx context.Context, users ports.UserRepository, name, email, password string, role domain.Role) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: Missing required fields", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}

	_, err := users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, fmt.Errorf("%w: User already exists", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		AvatarURL:    AvatarURL(name),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
