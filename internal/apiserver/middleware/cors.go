package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
)

// CORS allows cross-origin requests from the configured origins. A "*"
// entry allows any origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+cnst.XLang)
				c.Header("Access-Control-Allow-Credentials", "true")
				break
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Language stores the caller's language preference on the context for the
// response translators.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		if lang := c.GetHeader(cnst.XLang); lang != "" {
			c.Set(cnst.XLang, lang)
		}
		c.Next()
	}
}
