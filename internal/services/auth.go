package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid username/password"

// Claims are the fields carried by an access token
type Claims struct {
	Username    string `json:"username"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token handling
type AuthService struct {
	users      UserStore
	geocoder   Geocoder
	chat       ChatTokenIssuer
	jwtSecret  []byte
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, geocoder Geocoder, chat ChatTokenIssuer, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		geocoder:   geocoder,
		chat:       chat,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// IssueToken signs an access token for a user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := Claims{
		Username:    user.Username,
		City:        user.City,
		Country:     user.Country,
		AccessToken: user.ChatToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates an access token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Username == "" {
		return nil, errors.New("username not found in token")
	}
	return &claims, nil
}

// Authenticate checks a username and password and returns the user.
// Unknown users and wrong passwords fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	user.Password = ""
	return user, nil
}

// Login authenticates the user and issues a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

// Register creates an account and returns its first token
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	hashed, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return "", err
	}

	location, err := s.geocoder.Resolve(ctx, SearchQuery{City: req.City, Country: req.Country})
	if err != nil {
		return "", err
	}

	chatToken, err := s.chat.IssueToken(ctx, req.Username)
	if err != nil {
		return "", apperror.Wrap(err, "failed to issue chat token")
	}

	user := &models.User{
		Username:  req.Username,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
		Country:   req.Country,
		Lat:       location.Lat,
		Lng:       location.Lng,
		Avatar:    req.Avatar,
		ChatToken: chatToken,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", apperror.BadRequest("Duplicate username: %s, please choose another username.", req.Username)
		}
		return "", apperror.Wrap(err, "failed to create user")
	}

	log.Info().Str("username", user.Username).Msg("User registered")

	return s.IssueToken(user)
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperror.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}
