// Package identity verifies bearer tokens issued by the hosted identity
// provider and ends provider sessions on logout.
package identity

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"social-scheduler/internal/model"
	"social-scheduler/pkg/apierror"
)

type JWTVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

func NewJWTVerifier(secret string, audience string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), audience: audience, leeway: 30 * time.Second}
}

func (v *JWTVerifier) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.Unauthorized("invalid token signing method")
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, apierror.Unauthorized("Invalid authentication token")
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New(apierror.CodeUnauthorized, "Invalid authentication token", "claims", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{Token: tokenString}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.SessionID, _ = claimsMap["session_id"].(string)
	if exp, err := claimsMap.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.UserID == "" {
		return nil, apierror.New(apierror.CodeUnauthorized, "Invalid authentication token", "subject", http.StatusUnauthorized)
	}

	return claims, nil
}
