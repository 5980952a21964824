package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"aerolink/internal/notifications"
	"aerolink/internal/shared/config"
	"aerolink/internal/users"
	"aerolink/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserAlreadyExists        = errors.New("user already exists")
	ErrEmailNotVerified         = errors.New("email address not verified")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrVerificationTokenExpired = errors.New("verification token expired")
	ErrInvalidToken             = errors.New("invalid token")
)

// ConflictError lists the unique fields another account already uses
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already in use", strings.Join(e.Fields, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrUserAlreadyExists }

// VerificationSender delivers the signup confirmation link
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, msg notifications.VerificationEmail) error
}

type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Me(ctx context.Context, userID string) (*UserResponse, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type service struct {
	repo   Repository
	jwt    config.JWTConfig
	sender VerificationSender
	log    *logger.Logger
	now    func() time.Time
}

// NewService builds the identity service. A nil sender means no mail channel
// exists, so new accounts are created already verified.
func NewService(repo Repository, jwtCfg config.JWTConfig, sender VerificationSender, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		jwt:    jwtCfg,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

func (s *service) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	phone := strings.TrimSpace(req.Phone)

	taken, err := s.repo.FindConflicts(ctx, email, username, phone)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, &ConflictError{Fields: taken}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &users.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Username:  username,
		Email:     email,
		Phone:     phone,
		Password:  string(hashedPassword),
		Role:      users.RoleUser,
	}

	var token *VerificationToken
	if s.sender == nil {
		user.EmailVerifiedAt = &now
	} else {
		secret, err := generateVerificationToken()
		if err != nil {
			return nil, err
		}
		token = &VerificationToken{Token: secret, ExpiresAt: now.Add(s.jwt.VerifyTokenTTL)}
	}

	if err := s.repo.CreateUser(ctx, user, token); err != nil {
		return nil, err
	}

	if token != nil {
		err := s.sender.SendVerificationEmail(ctx, notifications.VerificationEmail{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.FullName(),
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
		})
		if err != nil {
			s.log.ErrorWithContext(ctx, "verification email not sent", err, map[string]interface{}{"user_id": user.ID.String()})
		}
	}

	return &SignupResponse{
		User:                 toUserResponse(user),
		VerificationRequired: token != nil,
	}, nil
}

func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified() {
		return nil, ErrEmailNotVerified
	}

	s.log.LogAuthSuccess(ctx, user.ID.String(), "password")
	return s.authResponse(user)
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*AuthResponse, error) {
	vt, err := s.repo.GetVerificationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if vt.UsedAt != nil {
		return nil, ErrInvalidVerificationToken
	}

	now := s.now()
	if vt.IsExpired(now) {
		return nil, ErrVerificationTokenExpired
	}
	if err := s.repo.MarkEmailVerified(ctx, vt, now); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, vt.UserID.String())
	if err != nil {
		return nil, err
	}
	s.log.LogAuthSuccess(ctx, user.ID.String(), "verify-email")
	return s.authResponse(user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.generateTokenPair(user.ID.String(), user.Email, string(user.Role))
}

func (s *service) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	return s.validateToken(tokenString)
}

func (s *service) authResponse(user *users.User) (*AuthResponse, error) {
	pair, err := s.generateTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *service) generateTokenPair(userID, email, role string) (*TokenPair, error) {
	now := s.now()

	sign := func(tokenType string, ttl time.Duration) (string, error) {
		claims := JWTClaims{
			UserID: userID,
			Email:  email,
			Role:   role,
			Type:   tokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				Issuer:    "aerolink",
				Subject:   userID,
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	}

	access, err := sign(TokenTypeAccess, s.jwt.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	refresh, err := sign(TokenTypeRefresh, s.jwt.RefreshExpiresIn)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) validateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
