package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/authdoc/go-authdoc-client/internal/utils"
)

// Claims holds the subset of JWT claims the client inspects locally.
// The signature is never verified here - the server owns token validity,
// the client only peeks at expiry and identity for the silent restore path.
type Claims struct {
	UserID    int64      // user_id claim (simplejwt style)
	Subject   string     // sub claim, if present
	TokenType string     // token_type claim ("access" / "refresh")
	ExpiresAt *time.Time // exp claim, nil if absent
}

// Inspect parses rawToken without verifying its signature and extracts the
// claims the client cares about.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[Inspect] empty token")
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[Inspect] ParseUnverified")
	}

	mapClaims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[Inspect] error extracting claims")
	}

	claims := &Claims{}

	if sub, _ := mapClaims["sub"].(string); sub != "" {
		claims.Subject = sub
	}
	if tokenType, _ := mapClaims["token_type"].(string); tokenType != "" {
		claims.TokenType = tokenType
	}
	if userID, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(userID)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = utils.Ptr(time.Unix(int64(exp), 0))
	}

	return claims, nil
}

// Expired reports whether the token's exp claim is in the past. A token
// without an exp claim never expires from the client's point of view.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(utils.Value(c.ExpiresAt))
}
