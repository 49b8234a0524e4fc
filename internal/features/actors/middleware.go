package actors

import (
	"errors"
	"net/http"

	"logwarden/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

type actorClaims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and adds the actor to context.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			ctx.Abort()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		actor, err := ActorFromToken(token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			ctx.Abort()
			return
		}

		ctx.Set("actor", actor)
		ctx.Next()
	}
}

func RequirePlatformAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := GetActorFromContext(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not authenticated"})
			ctx.Abort()
			return
		}

		if !actor.Role.IsPlatformAdmin() {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func ActorFromToken(token string) (*Actor, error) {
	claims := &actorClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.GetEnv().JwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}

	role := ActorRole(claims.Role)

	return &Actor{
		ID:       claims.Subject,
		Role:     role,
		TenantID: claims.TenantID,
	}, nil
}

// GetActorFromContext extracts the authenticated actor from gin context.
func GetActorFromContext(ctx *gin.Context) (*Actor, bool) {
	actorInterface, exists := ctx.Get("actor")
	if !exists {
		return nil, false
	}

	actor, ok := actorInterface.(*Actor)

	return actor, ok
}
