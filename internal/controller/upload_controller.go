package controller

import (
	"path/filepath"
	"strings"

	"valuate_backend/internal/service"
	"valuate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 10 MB per exam image.
const maxUploadSize = 10 << 20

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// Upload godoc
// @Summary Upload an exam image
// @Description Accepts question paper, answer key and answer sheet images; returns the stored URI
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "Image file (max 10 MB)"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Invalid file"
// @Router /api/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if header.Size > maxUploadSize {
		util.BadRequest(ctx, "file exceeds the 10 MB limit")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage, util.MimePDF})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	// ValidateMimeType consumed the sniff buffer.
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext

	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, header.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"filename": filename,
		"url":      url,
		"mimeType": mimeType,
	})
}
