// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// I18nMiddleware stores the request locale for response messages and notification copy.
// An explicit ?lang= wins over Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = i18n.DefaultLanguage
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Accept-Language")
		if q := c.Query("lang"); q != "" {
			header = q
		}
		c.Set(utils.LangKey, i18n.MatchLanguage(header, defaultLang))
		c.Next()
	}
}
