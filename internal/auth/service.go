package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/fuelport/backend/internal/models"
)

// ErrDuplicateEmail is returned when registering with an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned on login with a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRole is returned when registering with an unknown role.
var ErrInvalidRole = errors.New("invalid role")

type Service interface {
	Register(ctx context.Context, email, password, displayName, role string) (*models.Admin, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*models.Admin, error)
}

// adminStore is the slice of *Repository the service needs.
type adminStore interface {
	Create(ctx context.Context, email, passwordHash, displayName, role string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

var _ adminStore = (*Repository)(nil)

type service struct {
	repo   adminStore
	secret []byte
}

func NewService(repo adminStore, secret string) *service {
	return &service{repo: repo, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	DisplayName string `json:"name"`
}

func (s *service) Register(ctx context.Context, email, password, displayName, role string) (*models.Admin, error) {
	if role != models.AdminRoleAdmin && role != models.AdminRoleFinance {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin, err := s.repo.Create(ctx, email, string(hash), displayName, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return admin, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(admin)
}

func (s *service) issueToken(admin *models.Admin) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role:        admin.Role,
		DisplayName: admin.DisplayName,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// ValidateToken parses and verifies a bearer token and returns the acting
// admin (identity fields only; no repository round trip).
func (s *service) ValidateToken(ctx context.Context, token string) (*models.Admin, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, err
	}
	return &models.Admin{ID: id, Role: c.Role, DisplayName: c.DisplayName}, nil
}
