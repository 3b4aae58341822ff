package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	RoleShopper = "shopper"
	RoleAdmin   = "admin"
)

const issuer = "ec-storefront"

// Claims identifies the bearer. Shopper tokens carry the session they were
// minted for; admin tokens carry no session.
type Claims struct {
	SessionID string `json:"session_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and checks HS256 tokens
type JWTService struct {
	secretKey          []byte
	sessionTokenExpiry time.Duration
	adminTokenExpiry   time.Duration
	now                func() time.Time
}

func NewJWTService(secretKey string, sessionExpiry, adminExpiry time.Duration) *JWTService {
	return &JWTService{
		secretKey:          []byte(secretKey),
		sessionTokenExpiry: sessionExpiry,
		adminTokenExpiry:   adminExpiry,
		now:                time.Now,
	}
}

// GenerateSessionToken issues the shopper token handed out by POST /sessions.
func (s *JWTService) GenerateSessionToken(sessionID string) (string, time.Time, error) {
	return s.sign(Claims{SessionID: sessionID, Role: RoleShopper}, sessionID, s.sessionTokenExpiry)
}

// GenerateAdminToken issues a token for the admin read endpoints.
func (s *JWTService) GenerateAdminToken(subject string) (string, time.Time, error) {
	return s.sign(Claims{Role: RoleAdmin}, subject, s.adminTokenExpiry)
}

func (s *JWTService) sign(claims Claims, subject string, expiry time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(expiry)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role == RoleShopper && claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) SessionTokenExpiry() time.Duration {
	return s.sessionTokenExpiry
}
