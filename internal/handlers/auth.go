package handlers

import (
	"net/http"

	"atelier/internal/constants"
	"atelier/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	settingService *services.SettingService
}

func NewAuthHandler(settingService *services.SettingService) *AuthHandler {
	return &AuthHandler{settingService: settingService}
}

func (h *AuthHandler) ShowLoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	session := sessions.Default(c)
	submittedPassword := c.PostForm(constants.SettingPassword)

	adminPassword, err := h.settingService.GetSetting(constants.SettingPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "internal server error",
		})
		return
	}

	if submittedPassword != adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "wrong password",
		})
		return
	}

	session.Set(constants.SessionKeyAuthenticated, true)
	session.Save()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}
