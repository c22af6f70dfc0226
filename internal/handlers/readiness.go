package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heavyduty/heavyduty-backend/internal/apierr"
	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/readiness"
	"github.com/heavyduty/heavyduty-backend/internal/requestdata"
	"github.com/heavyduty/heavyduty-backend/internal/services"
)

type ReadinessHandler struct {
	log *logger.Logger
	svc services.ReadinessService
}

func NewReadinessHandler(log *logger.Logger, svc services.ReadinessService) *ReadinessHandler {
	return &ReadinessHandler{
		log: log.With("handler", "ReadinessHandler"),
		svc: svc,
	}
}

// Required fields are pointers so a reported zero (pain_level: 0) still
// passes binding.
type checkInRequest struct {
	Sleep        *float64 `json:"sleep" binding:"required"`
	Stress       *int     `json:"stress" binding:"required"`
	CycleDay     *int     `json:"cycle_day"`
	PainLevel    *int     `json:"pain_level" binding:"required"`
	PainLocation string   `json:"pain_location"`
}

// POST /api/readiness/check
func (h *ReadinessHandler) Check(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if *req.Sleep < 0 {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, errors.New("sleep must be >= 0"))
		return
	}

	in := readiness.Input{
		SleepHours:   *req.Sleep,
		StressLevel:  *req.Stress,
		CycleDay:     req.CycleDay,
		PainLevel:    *req.PainLevel,
		PainLocation: req.PainLocation,
	}

	v, err := h.svc.Evaluate(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, v)
}

// GET /api/readiness/history
func (h *ReadinessHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), currentUserID(c), 30)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"check_ins": rows})
}

func currentUserID(c *gin.Context) uuid.UUID {
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}
