package handlers

import (
	"net/http"
	"strings"

	"atelier/internal/constants"
	"atelier/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// APIAuthMiddleware checks for a valid Bearer token (the admin password).
func APIAuthMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminPassword, err := settingService.GetSetting(constants.SettingPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be in Bearer {token} form"})
			c.Abort()
			return
		}

		if parts[1] != adminPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthMiddleware checks if a user is authenticated via session flag.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		authenticated := session.Get(constants.SessionKeyAuthenticated)

		if authenticated == nil || !authenticated.(bool) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

// SettingsMiddleware loads settings into the request context for templates.
func SettingsMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := settingService.GetAllSettings()
		if err != nil {
			log.WithError(err).Warn("cannot load settings for request")
			c.Set(constants.ContextKeySettings, make(map[string]string))
		} else {
			c.Set(constants.ContextKeySettings, settings)
		}

		session := sessions.Default(c)
		isLoggedIn := session.Get(constants.SessionKeyAuthenticated)
		c.Set(constants.ContextKeyIsLoggedIn, isLoggedIn != nil && isLoggedIn.(bool))

		c.Next()
	}
}

// render merges settings and login state into the template data.
func render(c *gin.Context, status int, templateName string, data gin.H) {
	if settings, exists := c.Get(constants.ContextKeySettings); exists {
		for key, value := range settings.(map[string]string) {
			if _, ok := data[key]; !ok {
				data[key] = value
			}
		}
	}

	if isLoggedIn, exists := c.Get(constants.ContextKeyIsLoggedIn); exists {
		data["IsLoggedIn"] = isLoggedIn
	}

	c.HTML(status, templateName, data)
}
