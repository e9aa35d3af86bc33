package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess   = "access"
	TokenTypeRefresh  = "refresh"
	TokenTypeCustomer = "customer"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and verifies the HS256 token pair. Access and
// refresh tokens are signed with separate secrets so a leaked access
// secret cannot mint refresh tokens.
type TokenService struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(secret, refreshSecret string) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
	}
}

// GeneratePair issues an access/refresh token pair carrying the user id
// and role.
func (s *TokenService) GeneratePair(userID uuid.UUID, role string) (*TokenPair, error) {
	access, err := s.sign(userID, role, TokenTypeAccess, s.secret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, role, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateCustomerToken issues a 24-hour guest session token. Customer
// tokens carry no role and never pass verification as access or refresh
// tokens.
func (s *TokenService) GenerateCustomerToken(customerID uuid.UUID) (string, error) {
	return s.sign(customerID, "", TokenTypeCustomer, s.secret, 24*time.Hour)
}

// Verify parses a token, enforcing the signing method and the expected
// "typ" claim, and returns the identity it carries.
func (s *TokenService) Verify(tokenStr, expectedType string) (*Identity, error) {
	key := s.secret
	if expectedType == TokenTypeRefresh {
		key = s.refreshSecret
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if typ, _ := claims["typ"].(string); typ != expectedType {
		return nil, fmt.Errorf("invalid token type")
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id claim")
	}

	role, _ := claims["role"].(string)

	return &Identity{UserID: userID, Role: role}, nil
}

func (s *TokenService) sign(userID uuid.UUID, role, typ string, key []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"typ":     typ,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
