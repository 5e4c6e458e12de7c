package handler

import (
	"errors"
	"net/http"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/service"
	"pinemarket/admin-service/internal/app/admin/util"
	"pinemarket/pkg/logger"
	"pinemarket/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// UploadHandler принимает файл изображения и закрепляет полученный от
// Cloudinary URL за текущей сессией редактирования товара
type UploadHandler[T entity.Record[T], D any] struct {
	sessions *service.EditSessionManager[T, D]
	uploader util.ImageUploader
}

func NewUploadHandler[T entity.Record[T], D any](
	sessions *service.EditSessionManager[T, D],
	uploader util.ImageUploader,
) *UploadHandler[T, D] {
	return &UploadHandler[T, D]{sessions: sessions, uploader: uploader}
}

// Upload обрабатывает POST /admin/products/session/image.
// Номер поколения сессии снимается до загрузки: если пока файл улетал
// в Cloudinary форму закрыли и открыли заново, результат отбрасывается.
func (h *UploadHandler[T, D]) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			respondError(c, http.StatusConflict, "No open form to attach image to")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to read edit session")
		return
	}
	generation := session.Generation

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Missing file field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	imageURL, err := h.uploader.Upload(ctx, file, fileHeader.Filename)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("image upload failed")
		respondError(c, http.StatusBadGateway, "Image upload failed")
		return
	}

	if _, err := h.sessions.StageImage(ctx, generation, imageURL); err != nil {
		if errors.Is(err, service.ErrStaleUpload) {
			metrics.ImageUploadsTotal.WithLabelValues("stale").Inc()
			logger.Warn().Str("image_url", imageURL).Msg("discarding upload for closed form")
			respondError(c, http.StatusConflict, "Form was closed while uploading, image discarded")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to stage uploaded image")
		return
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, entity.UploadResponse{ImageURL: imageURL})
}
