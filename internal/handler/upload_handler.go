package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/storage"
	"go.uber.org/zap"
)

// UploadImage 处理后台图片上传请求，返回可访问的 URL
func (a *API) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No image found in the request")
		return
	}

	upload, err := a.uploader.AcceptFile(c.Request.Context(), header)
	if err != nil {
		a.respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    upload.URL,
		"width":  upload.Width,
		"height": upload.Height,
	})
}

func (a *API) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotImage):
		respondError(c, http.StatusBadRequest, "Only image files can be uploaded")
	case errors.Is(err, storage.ErrEmptyFile):
		respondError(c, http.StatusBadRequest, "The uploaded file is empty")
	case errors.Is(err, storage.ErrTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Images must be smaller than %d MB", a.uploader.MaxBytes()>>20))
	default:
		a.logger.Error("image upload failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to save the image")
	}
}
