package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/types"
)

type ImageHandler struct {
	imageService service.IImageService
}

func NewImageHandler(imageService service.IImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	{
		images.POST("/uploads", h.CreateUpload)
		images.GET("/*key", h.Download)
	}
}

func (h *ImageHandler) CreateUpload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req types.ImageUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.imageService.CreateUpload(c.Request.Context(), actor, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Download redirects to a short-lived presigned URL for the stored image.
func (h *ImageHandler) Download(c *gin.Context) {
	url, err := h.imageService.DownloadURL(c.Request.Context(), c.Param("key"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
