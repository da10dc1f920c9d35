// Package security resolves the acting user for audit purposes. Sessions and
// token issuing belong to the surrounding application; this only reads the
// identity it supplies.
package security

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorContextKey = "actor"

// ActorMiddleware extracts the acting user from the X-Actor header, or from
// a bearer token's userID/sub claim when JWT_SECRET is configured. Requests
// without either still pass; they are recorded as "unknown".
func ActorMiddleware() gin.HandlerFunc {
	secret := []byte(os.Getenv("JWT_SECRET"))

	return func(c *gin.Context) {
		if actor := c.GetHeader("X-Actor"); actor != "" {
			c.Set(actorContextKey, actor)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if len(secret) > 0 && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method")
				}
				return secret, nil
			})
			if err == nil && token.Valid {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					if actor := claimString(claims, "userID", "sub", "username"); actor != "" {
						c.Set(actorContextKey, actor)
					}
				}
			}
		}

		c.Next()
	}
}

// ActorFromContext returns the acting user identifier, or "unknown" when the
// caller supplied none.
func ActorFromContext(c *gin.Context) string {
	if actor, exists := c.Get(actorContextKey); exists {
		if s, ok := actor.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			switch v := value.(type) {
			case string:
				return v
			case float64:
				return fmt.Sprintf("%.0f", v)
			}
		}
	}
	return ""
}
