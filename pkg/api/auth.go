package api

import "github.com/gin-gonic/gin"

// extractOwner reads the authenticated caller identity off the
// ingress-injected headers: a reverse proxy (e.g. oauth2-proxy) sets
// X-Forwarded-User/X-Forwarded-Email in front of this service, and a
// direct API client without either falls back to a fixed identity.
func extractOwner(c *gin.Context) string {
	if u := c.GetHeader("X-Forwarded-User"); u != "" {
		return u
	}
	if e := c.GetHeader("X-Forwarded-Email"); e != "" {
		return e
	}
	return "api-client"
}
