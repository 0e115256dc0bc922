package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is the validity window of an issued token.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the signed payload of a token.
type Claims struct {
	UserID   int         `json:"uid"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claims checks during parsing.
func (c *Claims) Validate() error {
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %d", int(c.Role))
	}
	if c.UserID <= 0 {
		return errors.New("missing user id")
	}
	return nil
}

type TokenSettings struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

type AuthService struct {
	users     repository.Store[models.User]
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	// dummyHash keeps the cost of a failed lookup close to a failed
	// password comparison.
	dummyHash []byte
}

func NewAuthService(users repository.Store[models.User], settings TokenSettings, logger zerolog.Logger) (*AuthService, error) {
	if settings.Secret == "" {
		return nil, errors.New("auth: signing secret is empty")
	}
	ttl := settings.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		secretKey: []byte(settings.Secret),
		issuer:    settings.Issuer,
		audience:  settings.Audience,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login checks the credentials and issues a fresh token. An unknown
// username and a wrong password yield the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Token, error) {
	name := models.NormalizeUsername(username)
	if name == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	users, err := s.users.List(ctx, repository.Eq("username", name))
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("login: %w", err)
	}

	if len(users) == 0 {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logger.Warn().Str("username", name).Msg("Login failed: unknown username")
		return nil, models.ErrInvalidCredentials
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Int("user_id", user.ID).Msg("Login failed: wrong password")
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Str("token_id", token.TokenID).Msg("User authenticated successfully")
	return token, nil
}

// GenerateToken signs a token for the user, valid for the configured TTL
// from now.
func (s *AuthService) GenerateToken(user *models.User) (*models.Token, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)
	tokenID := uuid.NewString()

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.Itoa(user.ID),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.Token{
		Token:       signed,
		TokenID:     tokenID,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		IssuedAt:    issuedAt,
		ExpiredTime: expiresAt,
		Validity:    expiresAt.Sub(issuedAt),
	}, nil
}

// ParseToken verifies signature, algorithm, time window, issuer, audience
// and role, and returns the claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Verify implements the authorization gate's token check. It keeps no
// state between calls.
func (s *AuthService) Verify(tokenString string) (models.Identity, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// SignUp registers a new account with the lowest role. The caller cannot
// choose the role.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) error {
	name := models.NormalizeUsername(req.Username)
	if name == "" || req.Password == "" {
		return models.Errorf(models.ErrValidation, "username and password are required")
	}

	existing, err := s.users.Count(ctx, repository.Eq("username", name))
	if err != nil {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return fmt.Errorf("sign up: %w", err)
	}
	if existing > 0 {
		s.logger.Info().Str("username", name).Msg("Sign up rejected: username taken")
		return models.Errorf(models.ErrConflict, "username %s is not available", name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Errorf(models.ErrValidation, "password must be at most 72 bytes")
	}

	user := &models.User{
		Username:     name,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.LowestRole,
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.Errorf(models.ErrConflict, "username %s is not available", name)
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("User registered successfully")
	return nil
}

// EnsureAdmin creates an Admin account with the given credentials when no
// account with that username exists. An existing account is left as is.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	name := models.NormalizeUsername(username)
	if name == "" || password == "" {
		return models.Errorf(models.ErrValidation, "admin username and password are required")
	}

	n, err := s.users.Count(ctx, repository.Eq("username", name))
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	admin := &models.User{Username: name, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := s.users.Add(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	s.logger.Info().Int("user_id", admin.ID).Str("username", name).Msg("Admin account created")
	return nil
}
