package api

import (
	"net/http"

	"github.com/expotoworld/programs-service/internal/auth"
	"github.com/expotoworld/programs-service/internal/logging"
	"github.com/expotoworld/programs-service/internal/policy"
	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// AuthMiddleware resolves the request's caller from its JWT. Requests without
// credentials continue as anonymous so each operation decides whether that is
// allowed; a token that fails verification is rejected outright.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(callerKey, service.Anonymous())
			c.Next()
			return
		}

		tokenString, err := auth.ExtractToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header."})
			return
		}
		claims, err := verifier.Verify(tokenString)
		if err != nil {
			logging.LogKV("warn", "token rejected", map[string]interface{}{"error": err, "path": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
			return
		}

		caller := service.NewCaller(claims.Username(), claims.Role())
		c.Set(callerKey, caller)
		c.Set("username", caller.Username)
		c.Set("role", string(caller.Role))
		c.Next()
	}
}

// CallerFrom returns the caller AuthMiddleware stored on the context.
func CallerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Anonymous()
}

func isAdmin(caller service.Caller) bool {
	return caller.Authenticated && caller.Role == policy.RoleAdmins
}
