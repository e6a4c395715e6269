package handlers

import (
	"net/http"
	"strconv"

	"atelier/internal/models"
	"atelier/internal/services"

	"github.com/gin-gonic/gin"
)

// APIHandler is the JSON surface the admin frontend talks to.
type APIHandler struct {
	contentService *services.ContentService
	pageService    *services.PageService
}

func NewAPIHandler(contentService *services.ContentService, pageService *services.PageService) *APIHandler {
	return &APIHandler{
		contentService: contentService,
		pageService:    pageService,
	}
}

// SaveContent persists a full content bundle. The path id wins over any id
// in the body so a bundle can never be saved under a different content id.
func (h *APIHandler) SaveContent(c *gin.Context) {
	var full models.FullContent
	if err := c.ShouldBindJSON(&full); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	full.Content.ID = c.Param("id")

	if err := h.contentService.SaveFull(&full); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, full)
}

func (h *APIHandler) GetContent(c *gin.Context) {
	full, err := h.contentService.GetFull(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if full == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.JSON(http.StatusOK, full)
}

func (h *APIHandler) DeleteContent(c *gin.Context) {
	if err := h.contentService.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListContents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	query := c.Query("query")

	contents, total, err := h.contentService.List(page, pageSize, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contents": contents,
		"total":    total,
	})
}

func (h *APIHandler) RebuildSearchIndex(c *gin.Context) {
	if err := h.contentService.RebuildSearchIndex(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *APIHandler) ListTags(c *gin.Context) {
	entries, err := h.contentService.TagCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": entries})
}

func (h *APIHandler) SavePage(c *gin.Context) {
	var page models.MarkdownPage
	if err := c.ShouldBindJSON(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.pageService.SavePage(&page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *APIHandler) GetPageBySlug(c *gin.Context) {
	page, err := h.pageService.GetPageBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *APIHandler) ListPages(c *gin.Context) {
	pages, err := h.pageService.ListPages(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (h *APIHandler) DeletePage(c *gin.Context) {
	if err := h.pageService.DeletePage(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
