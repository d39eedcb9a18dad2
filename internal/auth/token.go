package auth

import (
	"errors"
	"fmt"
	"time"

	"coursemarket/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller resolved from a token.
type Identity struct {
	ID          string
	Email       string
	AccountType models.AccountType
}

// Verifier validates HMAC-signed tokens carrying id, email and accountType claims.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Issue signs a token for identity valid for ttl.
func (v *Verifier) Issue(identity *Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":          identity.ID,
		"email":       identity.Email,
		"accountType": string(identity.AccountType),
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("id not found in token")
	}
	email, _ := claims["email"].(string)
	accountType, _ := claims["accountType"].(string)

	return &Identity{ID: id, Email: email, AccountType: models.AccountType(accountType)}, nil
}
