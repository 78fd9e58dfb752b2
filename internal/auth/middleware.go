package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxClaimsKey is where the middleware stores the verified *Claims.
const CtxClaimsKey = "auth_claims"

// AuthMiddleware verifies the bearer token and, when a repo is supplied,
// checks the token version against the user row so logout and password
// changes invalidate tokens that are still in the wild.
func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if repo != nil {
			version, err := repo.GetTokenVersion(c.Request.Context(), claims.UserID)
			if err != nil || version != claims.TokenVersion {
				abortUnauthorized(c, "invalid token")
				return
			}
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}

// MustGetClaims returns the claims AuthMiddleware stored, or nil when the
// route was reached without it.
func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
