package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"repairhub/config"
)

const devSecret = "repairhub-dev-secret"

// ProviderIdentity is what a valid provider token asserts.
type ProviderIdentity struct {
	ID   string
	Name string
}

func secretKey() []byte {
	if config.AppConfig.JWTSecret == "" {
		return []byte(devSecret)
	}
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed provider token carrying the id as subject and
// the display name. The token expires after duration.
func GenerateToken(providerID, name string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  providerID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractProviderFromToken returns the provider identity asserted by a valid token.
func ExtractProviderFromToken(tokenString string) (ProviderIdentity, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return ProviderIdentity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ProviderIdentity{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return ProviderIdentity{}, errors.New("token does not contain a valid 'sub' claim")
	}
	name, _ := claims["name"].(string)

	return ProviderIdentity{ID: sub, Name: name}, nil
}
