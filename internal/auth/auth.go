package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/user"
)

type ServiceAPI interface {
	Register(dto RegisterDTO) (*user.User, error)
	Authenticate(dto LoginDTO) (LoginResponse, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveUser(claims *Claims) (*user.User, error)
}

// TokenGeneratorAPI creates and verifies bearer tokens.
type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTTokenGenerator issues stateless HS256 tokens. Expiry is the only
// revocation mechanism: there is no server-side session store, so a token
// stays valid until its TTL runs out even if the account is deleted in the
// meantime (deleted accounts still fail resolution in the middleware).
type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
	}
}

// GenerateAccessToken creates a new signed token carrying the user id.
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64) (string, error) {
	expiresAt := time.Now().Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken verifies signature and expiry. An expired token is reported
// distinctly so clients can force a re-login instead of showing a generic
// access-denied message.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}

// UserPayload is the identity slice returned with a fresh token.
type UserPayload struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}
