package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names carrying the token pair.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Manager sets the token cookies used by browsers; API clients use the bearer header instead.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	m.set(c, AccessCookie, access, maxAgeFrom(aexp))
	m.set(c, RefreshCookie, refresh, maxAgeFrom(rexp))
}

func (m *Manager) Clear(c *gin.Context) {
	m.set(c, AccessCookie, "", -1)
	m.set(c, RefreshCookie, "", -1)
}

func (m *Manager) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
