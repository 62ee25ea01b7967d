package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP lets loopback and private-range clients through, plus any
// of the extra CIDRs. Malformed CIDRs are ignored.
func AllowPrivateIP(extraCIDRs ...string) AllowFunc {
	var nets []*net.IPNet
	for _, cidr := range extraCIDRs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		if parsed.IsLoopback() || parsed.IsPrivate() {
			return true
		}
		for _, n := range nets {
			if n.Contains(parsed) {
				return true
			}
		}
		return false
	}
}

// OnlyAllowed rejects requests the allow func does not accept with 404,
// hiding the route from outsiders.
func OnlyAllowed(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			c.AbortWithStatus(404)
			return
		}
		c.Next()
	}
}
