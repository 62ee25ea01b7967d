package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into the Gin context (key: "real_ip").
// Proxy headers are honoured only when trustProxy is set:
// CF-Connecting-IP first, then the left-most X-Forwarded-For entry,
// then c.ClientIP().
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if trustProxy {
			if ip := parseIP(c.GetHeader("CF-Connecting-IP")); ip != "" {
				c.Set("real_ip", ip)
				c.Next()
				return
			}
			if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := parseIP(first); ip != "" {
					c.Set("real_ip", ip)
					c.Next()
					return
				}
			}
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

func parseIP(s string) string {
	if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
		return ip.String()
	}
	return ""
}
