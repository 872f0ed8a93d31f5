package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/orchestrator"
	"github.com/slidesdown/converter/pkg/errors"
)

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *logger.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, log *logger.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		logger:       log,
	}
}

func (h *Handler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	requestID := uuid.New().String()

	orchReq := &orchestrator.Request{
		RequestID: requestID,
		Images:    req.Images,
		Title:     req.Title,
		Format:    strings.ToLower(strings.TrimSpace(req.Format)),
	}

	result, err := h.orchestrator.Convert(c.Request.Context(), orchReq)
	if err != nil {
		h.handleError(c, requestID, err)
		return
	}

	doc := result.Document
	if result.FailedImages > 0 {
		c.Header("X-Images-Failed", strconv.Itoa(result.FailedImages))
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}

func (h *Handler) handleError(c *gin.Context, requestID string, err error) {
	h.logger.Error("conversion failed", "request_id", requestID, "error", err)

	status := http.StatusInternalServerError
	message := "conversion failed"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case errors.ErrCodeInvalidReq:
			status = http.StatusBadRequest
		case errors.ErrCodeNoImages:
			status = http.StatusUnprocessableEntity
		case errors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		default:
			// Internal detail stays in the logs.
			message = "conversion failed"
		}
	}

	c.JSON(status, ErrorResponse{Error: message})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}
