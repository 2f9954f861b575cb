package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/service"
	"go.uber.org/zap"
)

// ListGalleryImages returns gallery images newest first, optionally filtered by category.
func (a *API) ListGalleryImages(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	if category != "" && !db.IsGalleryCategory(category) {
		respondError(c, http.StatusBadRequest, "Unknown category")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	result, err := a.galleries.List(service.GalleryFilter{
		Category: category,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		a.logger.Error("list gallery failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to load gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       toGalleryViews(result.Items),
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// CreateGalleryImage uploads the image and stores a gallery entry.
func (a *API) CreateGalleryImage(c *gin.Context) {
	title := c.PostForm("title")
	category := c.PostForm("category")

	if err := service.ValidateGalleryMeta(title, category); err != nil {
		respondGalleryError(c, err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Please choose an image to upload")
		return
	}

	upload, err := a.uploader.AcceptFile(c.Request.Context(), header)
	if err != nil {
		a.respondUploadError(c, err)
		return
	}

	item, err := a.galleries.Create(service.GalleryInput{
		Title:       title,
		Category:    category,
		ImageURL:    upload.URL,
		ImageWidth:  upload.Width,
		ImageHeight: upload.Height,
	})
	if err != nil {
		a.logger.Error("create gallery image failed", zap.String("url", upload.URL), zap.Error(err))
		respondGalleryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo added", "item": item})
}

// DeleteGalleryImage removes a gallery image.
func (a *API) DeleteGalleryImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid photo id")
		return
	}

	if err := a.galleries.Delete(id); err != nil {
		respondGalleryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

func respondGalleryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGalleryNotFound):
		respondError(c, http.StatusNotFound, "Photo not found")
	case errors.Is(err, service.ErrGalleryTitleMissing):
		respondError(c, http.StatusBadRequest, "Please enter a title")
	case errors.Is(err, service.ErrGalleryCategoryInvalid):
		respondError(c, http.StatusBadRequest, "Unknown category")
	case errors.Is(err, service.ErrGalleryImageMissing):
		respondError(c, http.StatusBadRequest, "Please choose an image to upload")
	default:
		respondError(c, http.StatusInternalServerError, "Failed to save photo")
	}
}
