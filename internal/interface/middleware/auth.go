package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-library-api/pkg/helpers"
	"github.com/oksasatya/go-library-api/pkg/response"
)

// CtxUserIDKey holds the authenticated user id in the Gin context.
const CtxUserIDKey = "userID"

// bearerToken reads "Authorization: Bearer <token>", falling back to the access_token cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie(helpers.AccessCookie)
	return token
}

// Auth validates the access token and, when Redis is configured, requires
// the session it was issued for to still be active.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.UserID)).Result()
			if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			c.Set("userLogin", data["login"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
