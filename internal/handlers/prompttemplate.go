package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heavyduty/heavyduty-backend/internal/apierr"
	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/services"
)

type PromptTemplateHandler struct {
	log *logger.Logger
	svc services.PromptTemplateService
}

func NewPromptTemplateHandler(log *logger.Logger, svc services.PromptTemplateService) *PromptTemplateHandler {
	return &PromptTemplateHandler{
		log: log.With("handler", "PromptTemplateHandler"),
		svc: svc,
	}
}

type createTemplateRequest struct {
	Role              string `json:"role" binding:"required"`
	AuditInstructions string `json:"audit_instructions" binding:"required"`
	GlobalContext     string `json:"global_context"`
	Activate          bool   `json:"activate"`
}

// POST /api/admin/prompt-templates
func (h *PromptTemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), req.Role, req.AuditInstructions, req.GlobalContext, req.Activate)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// POST /api/admin/prompt-templates/:id/activate
func (h *PromptTemplateHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	t, err := h.svc.Activate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, apierr.CodeNotFound, err)
			return
		}
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, t)
}

// GET /api/admin/prompt-templates/roles/:role/active
func (h *PromptTemplateHandler) GetActive(c *gin.Context) {
	t, err := h.svc.GetActive(c.Request.Context(), c.Param("role"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if t == nil {
		RespondError(c, http.StatusNotFound, apierr.CodeNotFound, errors.New("no active template for role"))
		return
	}
	RespondOK(c, t)
}
