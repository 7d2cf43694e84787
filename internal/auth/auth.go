package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ksred/fxjournal/pkg/response"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingUsername    = errors.New("token does not name an admin")
	// ErrUsernameTaken matches gorm.ErrDuplicatedKey so it maps to a conflict
	ErrUsernameTaken = fmt.Errorf("username already registered: %w", gorm.ErrDuplicatedKey)
)

const (
	// PasswordCost is the bcrypt work factor for stored passwords
	PasswordCost = 10
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
)

// Service handles admin accounts and token issuance
type Service struct {
	db        *Database
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new authentication service with the given JWT secret and token lifetime
func NewService(gormDB *gorm.DB, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		db:        NewDatabase(gormDB),
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates an admin account with a bcrypt hashed password
func (s *Service) Register(ctx context.Context, creds Credentials) (*Admin, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, &response.ValidationError{Field: "username", Message: "username and password are required"}
	}
	if len(creds.Password) > maxPasswordLength {
		return nil, &response.ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(creds.Password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &Admin{Username: username, Password: string(hashed)}
	if err := s.db.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	log.Info().Str("service", "auth").Str("username", username).Msg("admin registered")
	return admin, nil
}

// GenerateToken checks the credentials and issues a signed token
func (s *Service) GenerateToken(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	username := strings.TrimSpace(creds.Username)

	admin, err := s.db.GetAdmin(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		log.Warn().Str("service", "auth").Str("username", username).Msg("login for unknown admin")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(creds.Password)); err != nil {
		log.Warn().Str("service", "auth").Str("username", username).Msg("login with wrong password")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiration := now.Add(s.tokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Username: admin.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Token:      tokenString,
		Expiration: expiration,
		Username:   admin.Username,
	}, nil
}

// ValidateToken validates a JWT token and returns the claims.
// The token must be HS256 signed with the service secret, carry an expiry and name an admin.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, ErrMissingUsername
	}
	return claims, nil
}

// GinHandlers contains HTTP handlers for authentication endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for authentication endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// RegisterHandler handles POST requests creating an admin account
func (h *GinHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		admin, err := h.service.Register(c.Request.Context(), creds)
		if errors.Is(err, ErrUsernameTaken) {
			response.Conflict(c, "username already registered")
			return
		}
		response.Handle(c, admin, err)
	}
}

// LoginHandler handles POST requests to generate JWT tokens
// Request body should contain the admin credentials
func (h *GinHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		token, err := h.service.GenerateToken(c.Request.Context(), creds)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Handle(c, token, err)
	}
}
