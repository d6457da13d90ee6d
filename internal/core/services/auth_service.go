package services

import (
	"context"
	"errors"
	"time"

	"github.com/blockwarden/backend/internal/config"
	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type tokenClaims struct {
	Kind   string `json:"kind"`
	HostID string `json:"host_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	OrgID  string `json:"org_id,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	users  ports.UserRepository
	orgs   ports.OrganizationRepository
	logger *logger.Logger
	secret []byte

	userTTL time.Duration
	hostTTL time.Duration
}

type AuthServiceConfig struct {
	UserRepo ports.UserRepository
	OrgRepo  ports.OrganizationRepository
	Logger   *logger.Logger
	Auth     config.AuthConfig
}

func NewAuthService(cfg AuthServiceConfig) ports.AuthService {
	userTTL := cfg.Auth.UserTokenTTL
	if userTTL == 0 {
		userTTL = 24 * time.Hour
	}
	hostTTL := cfg.Auth.HostTokenTTL
	if hostTTL == 0 {
		hostTTL = 365 * 24 * time.Hour
	}
	return &authService{
		users:   cfg.UserRepo,
		orgs:    cfg.OrgRepo,
		logger:  cfg.Logger,
		secret:  []byte(cfg.Auth.JWTSecret),
		userTTL: userTTL,
		hostTTL: hostTTL,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", translateStoreErr(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warnw("auth_login_bad_password", "email", email)
		return "", ErrInvalidCredentials
	}

	token, err := s.sign(tokenClaims{
		Kind:   string(ports.PrincipalUser),
		UserID: user.ID,
		OrgID:  user.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.userTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	if err != nil {
		return "", err
	}
	s.logger.Infow("auth_login_ok", "user_id", user.ID)
	return token, nil
}

func (s *authService) Register(ctx context.Context, email, password, orgName string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if existing, _ := s.users.GetByEmail(ctx, email); existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{Name: orgName}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, translateStoreErr(err)
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		OrgID:        org.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateStoreErr(err)
	}
	s.logger.Infow("auth_register_ok", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *authService) IssueHostToken(hostID string) (string, error) {
	return s.sign(tokenClaims{
		Kind:   string(ports.PrincipalHost),
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   hostID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.hostTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (s *authService) ParseToken(token string) (ports.Principal, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ports.Principal{}, ErrInvalidToken
	}

	switch ports.PrincipalKind(claims.Kind) {
	case ports.PrincipalHost:
		if claims.HostID == "" {
			return ports.Principal{}, ErrInvalidToken
		}
		return ports.Principal{Kind: ports.PrincipalHost, HostID: claims.HostID}, nil
	case ports.PrincipalUser:
		if claims.UserID == "" {
			return ports.Principal{}, ErrInvalidToken
		}
		return ports.Principal{Kind: ports.PrincipalUser, UserID: claims.UserID, OrgID: claims.OrgID}, nil
	default:
		return ports.Principal{}, ErrInvalidToken
	}
}

func (s *authService) sign(claims tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
