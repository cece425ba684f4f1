package services

import (
	"fmt"
	"log"

	"github.com/dgrijalva/jwt-go"
)

// IdentityService resolves buyer identity from bearer tokens issued by the
// external identity provider. Resolution is best-effort: an invalid or
// expired token degrades the request to the guest flow instead of failing it.
type IdentityService struct {
	jwtSecret []byte
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(jwtSecret string) *IdentityService {
	return &IdentityService{
		jwtSecret: []byte(jwtSecret),
	}
}

// ResolveBuyer parses and validates a token, returning the buyer id. The
// second return is false for missing, invalid or expired tokens; callers
// treat that as a guest.
func (s *IdentityService) ResolveBuyer(tokenString string) (string, bool) {
	if tokenString == "" {
		return "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Buyer token rejected, continuing as guest: %v", err)
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", false
	}

	buyerID, ok := claims["user_id"].(string)
	if !ok || buyerID == "" {
		return "", false
	}
	return buyerID, true
}
