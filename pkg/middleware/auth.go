package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/pkg/response"
)

const (
	ctxActorID   = "actor_id"
	ctxActorRole = "actor_role"
)

// ActorClaims is the token payload issued by the auth service upstream.
// This core only verifies and reads it.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func parseToken(c *gin.Context, secret string) (*ActorClaims, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	raw := strings.TrimPrefix(h, "Bearer ")
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}

// RequireActor rejects requests without a valid bearer token.
func RequireActor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, secret)
		if !ok {
			response.Unauthorized(c, "missing or invalid token")
			c.Abort()
			return
		}
		c.Set(ctxActorID, claims.Subject)
		c.Set(ctxActorRole, model.Role(claims.Role))
		c.Next()
	}
}

// OptionalActor extracts the actor when a token is present; anonymous
// requests pass through untouched.
func OptionalActor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseToken(c, secret); ok {
			c.Set(ctxActorID, claims.Subject)
			c.Set(ctxActorRole, model.Role(claims.Role))
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor id and role, if any.
func ActorFrom(c *gin.Context) (string, model.Role, bool) {
	id, ok := c.Get(ctxActorID)
	if !ok {
		return "", "", false
	}
	role, _ := c.Get(ctxActorRole)
	r, _ := role.(model.Role)
	return id.(string), r, true
}
