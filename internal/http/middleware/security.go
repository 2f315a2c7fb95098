package middleware

import "github.com/gin-gonic/gin"

// Security sets common HTTP security headers on every response. Public
// storage objects are embedded cross-origin, so CORP is relaxed for them.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Header("Cross-Origin-Resource-Policy", "cross-origin")
		c.Next()
	}
}
