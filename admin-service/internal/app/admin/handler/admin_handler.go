package handler

import (
	"errors"
	"net/http"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/gateway"
	"pinemarket/admin-service/internal/app/admin/service"
	"pinemarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// openSessionRequest - тело POST /admin/<resource>/session
type openSessionRequest struct {
	Mode     service.SessionMode `json:"mode" validate:"required,oneof=create edit"`
	RecordID string              `json:"record_id" validate:"required_if=Mode edit"`
}

// ResourceHandler обслуживает один экран админ-панели: видимую страницу
// списка, CRUD-намерения и сессию редактирования. Экраны товаров
// и категорий - два экземпляра одного обработчика.
type ResourceHandler[T entity.Record[T], D any] struct {
	controller *service.ListController[T]
	sessions   *service.EditSessionManager[T, D]
	validator  *validator.Validate

	// toRecord собирает запись из черновика; stageImage вписывает
	// закрепленный URL изображения в черновик (nil для ресурсов без картинок)
	toRecord   func(D) T
	stageImage func(D, string) D
}

// NewResourceHandler создает обработчик одного ресурса
func NewResourceHandler[T entity.Record[T], D any](
	controller *service.ListController[T],
	sessions *service.EditSessionManager[T, D],
	toRecord func(D) T,
	stageImage func(D, string) D,
) *ResourceHandler[T, D] {
	return &ResourceHandler[T, D]{
		controller: controller,
		sessions:   sessions,
		validator:  validator.New(),
		toRecord:   toRecord,
		stageImage: stageImage,
	}
}

// === Список ===

// GetView обрабатывает GET /admin/<resource>/view
func (h *ResourceHandler[T, D]) GetView(c *gin.Context) {
	page, err := h.controller.View(c.Request.Context())
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateView обрабатывает POST /admin/<resource>/view: меняет строку поиска,
// фильтр по статусу или страницу и возвращает новую видимую страницу
func (h *ResourceHandler[T, D]) UpdateView(c *gin.Context) {
	var q entity.ViewQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(q); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	page, err := h.controller.UpdateView(c.Request.Context(), q)
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Refresh обрабатывает POST /admin/<resource>/refresh: принудительная
// перезагрузка коллекции с бэкенда
func (h *ResourceHandler[T, D]) Refresh(c *gin.Context) {
	if err := h.controller.Refresh(c.Request.Context()); err != nil {
		respondGatewayError(c, err)
		return
	}

	page, err := h.controller.View(c.Request.Context())
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Remove обрабатывает DELETE /admin/<resource>/:id.
// Подтверждение передается query-параметром confirm=true; без него
// ресурс с политикой подтверждения отвечает 409.
func (h *ResourceHandler[T, D]) Remove(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"

	err := h.controller.Remove(c.Request.Context(), c.Param("id"), confirmed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfirmationRequired):
			respondError(c, http.StatusConflict, "Delete requires confirmation")
		case errors.Is(err, service.ErrRecordNotFound):
			respondError(c, http.StatusNotFound, "Record not found")
		default:
			respondGatewayError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Record deleted"})
}

// === Сессия редактирования ===

// OpenSession обрабатывает POST /admin/<resource>/session
func (h *ResourceHandler[T, D]) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	ctx := c.Request.Context()

	var session *service.EditSession[D]
	var err error

	if req.Mode == service.ModeCreate {
		session, err = h.sessions.OpenCreate(ctx)
	} else {
		var record T
		record, err = h.controller.Get(req.RecordID)
		if err != nil {
			respondError(c, http.StatusNotFound, "Record not found")
			return
		}
		session, err = h.sessions.OpenEdit(ctx, record)
	}

	if err != nil {
		if errors.Is(err, service.ErrSessionExists) {
			respondError(c, http.StatusConflict, "Another form is already open")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to open edit session")
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession обрабатывает GET /admin/<resource>/session
func (h *ResourceHandler[T, D]) GetSession(c *gin.Context) {
	session, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			respondError(c, http.StatusNotFound, "No open form")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to read edit session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// UpdateDraft обрабатывает PUT /admin/<resource>/session/draft:
// правка полей формы. Черновик правится по значению, коллекция
// не меняется до отправки.
func (h *ResourceHandler[T, D]) UpdateDraft(c *gin.Context) {
	var draft D
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessions.UpdateDraft(c.Request.Context(), draft)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			respondError(c, http.StatusNotFound, "No open form")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update draft")
		return
	}

	c.JSON(http.StatusOK, session)
}

// Submit обрабатывает POST /admin/<resource>/session/submit.
// Черновик валидируется до любого сетевого вызова; сессия закрывается
// только после успеха операции на бэкенде.
func (h *ResourceHandler[T, D]) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			respondError(c, http.StatusNotFound, "No open form")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to read edit session")
		return
	}

	draft := session.Draft
	if session.StagedImage != "" && h.stageImage != nil {
		draft = h.stageImage(draft, session.StagedImage)
	}

	if err := h.validator.Struct(draft); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	record := h.toRecord(draft)

	var result T
	if session.Mode == service.ModeCreate {
		result, err = h.controller.Add(ctx, record)
	} else {
		result, err = h.controller.Update(ctx, session.RecordID, record)
	}

	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Record not found")
			return
		}
		respondGatewayError(c, err)
		return
	}

	if err := h.sessions.Close(ctx); err != nil {
		// Запись уже сохранена; залипшая сессия истечет по TTL
		logger.Warn().Err(err).Msg("failed to close edit session after submit")
	}

	c.JSON(http.StatusOK, result)
}

// CancelSession обрабатывает DELETE /admin/<resource>/session:
// закрытие формы с отбросом черновика, безусловно
func (h *ResourceHandler[T, D]) CancelSession(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to close edit session")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Form closed"})
}

// === helpers ===

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// respondGatewayError мапит ошибки шлюза каталога в HTTP статусы.
// Недоступный бэкенд - это 502 с внятным сообщением, а не молчаливый no-op.
func respondGatewayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		respondError(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, gateway.ErrConflict):
		respondError(c, http.StatusConflict, "Record id conflict")
	case errors.Is(err, gateway.ErrBackend):
		logger.Error().Err(err).Msg("catalog backend request failed")
		respondError(c, http.StatusBadGateway, "Catalog backend is unavailable")
	default:
		logger.Error().Err(err).Msg("unexpected error")
		respondError(c, http.StatusInternalServerError, "Internal error")
	}
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
