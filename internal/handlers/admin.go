package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"atelier/internal/constants"
	"atelier/internal/services"
	"atelier/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the minimal HTML admin surface: content dashboard and
// settings. Editing itself happens through the JSON API.
type AdminHandler struct {
	contentService *services.ContentService
	pageService    *services.PageService
	settingService *services.SettingService
	backupService  *services.BackupService
	reloadTasks    func()
}

func NewAdminHandler(contentService *services.ContentService, pageService *services.PageService, settingService *services.SettingService, backupService *services.BackupService, reloadTasks func()) *AdminHandler {
	return &AdminHandler{
		contentService: contentService,
		pageService:    pageService,
		settingService: settingService,
		backupService:  backupService,
		reloadTasks:    reloadTasks,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	query := c.Query("query")
	pageSize := 10

	contents, total, err := h.contentService.List(page, pageSize, query)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load contents")
		return
	}

	pages, err := h.pageService.ListPages("")
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load markdown pages")
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	pagination := utils.GeneratePagination(page, totalPages)

	render(c, http.StatusOK, "admin.html", gin.H{
		"contents":   contents,
		"pages":      pages,
		"Pagination": pagination,
		"Query":      query,
	})
}

func (h *AdminHandler) ShowSettingsPage(c *gin.Context) {
	settings, err := h.settingService.GetAllSettings()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load settings")
		return
	}
	render(c, http.StatusOK, "settings.html", gin.H{"Settings": settings})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	keys := []string{
		constants.SettingPassword,
		constants.SettingSiteTitle,
		constants.SettingSiteDescription,
		constants.SettingGithubRepo,
		constants.SettingGithubBranch,
		constants.SettingGithubToken,
		constants.SettingGithubInterval,
		constants.SettingWebdavURL,
		constants.SettingWebdavUser,
		constants.SettingWebdavPassword,
		constants.SettingWebdavInterval,
	}

	updates := make(map[string]string)
	for _, key := range keys {
		if value, ok := c.GetPostForm(key); ok {
			updates[key] = value
		}
	}

	if err := h.settingService.UpdateSettings(updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if h.reloadTasks != nil {
		h.reloadTasks()
	}
	c.Redirect(http.StatusFound, "/settings")
}

// BackupNow triggers an immediate backup to the configured GitHub target.
func (h *AdminHandler) BackupNow(c *gin.Context) {
	settings, err := h.settingService.GetAllSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	err = h.backupService.BackupToGithub(
		settings[constants.SettingGithubRepo],
		settings[constants.SettingGithubBranch],
		settings[constants.SettingGithubToken],
	)
	if errors.Is(err, services.ErrBackupNoChange) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "no changes to back up"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
