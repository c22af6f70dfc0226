package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heavyduty/heavyduty-backend/internal/apierr"
	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/readiness"
	"github.com/heavyduty/heavyduty-backend/internal/repos"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

const (
	readinessCallType = "readiness_audit"
	defaultCoachRole  = "coach"
)

// ReadinessService sequences the pipeline: safety gate, template read,
// one advisor call, parse, fallback. The gate always runs before the
// advisor so an outage can never mask an unsafe check-in.
type ReadinessService interface {
	Evaluate(ctx context.Context, userID uuid.UUID, in readiness.Input) (*readiness.Verdict, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ReadinessCheckIn, error)
}

type readinessService struct {
	db        *gorm.DB
	log       *logger.Logger
	templates PromptTemplateService
	aiClient  AIClient
	callLog   CallLogService
	checkIns  repos.ReadinessCheckInRepo
	role      string
}

func NewReadinessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	templates PromptTemplateService,
	aiClient AIClient,
	callLog CallLogService,
	checkIns repos.ReadinessCheckInRepo,
) ReadinessService {
	return &readinessService{
		db:        db,
		log:       baseLog.With("service", "ReadinessService"),
		templates: templates,
		aiClient:  aiClient,
		callLog:   callLog,
		checkIns:  checkIns,
		role:      defaultCoachRole,
	}
}

func (s *readinessService) Evaluate(ctx context.Context, userID uuid.UUID, in readiness.Input) (*readiness.Verdict, error) {
	// Gate first, unconditionally. A triggered gate never reaches the
	// advisor and does not produce a call log entry.
	if v := readiness.EvaluateGate(in); v != nil {
		s.log.Info("Safety gate triggered", "user_id", userID.String(), "status", v.Status)
		s.saveCheckIn(ctx, userID, in, v, true)
		return v, nil
	}

	if s.aiClient == nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeConfiguration, fmt.Errorf("readiness advisor is not configured"))
	}

	var globalContext, auditInstructions, promptVersion string
	tpl, err := s.templates.GetActive(ctx, s.role)
	if err != nil {
		s.log.Warn("Prompt template lookup failed, using built-in defaults", "role", s.role, "error", err)
	}
	if tpl != nil {
		globalContext = tpl.GlobalContext
		auditInstructions = tpl.AuditInstructions
		promptVersion = fmt.Sprintf("%s/v%d", tpl.Role, tpl.Version)
	}

	prompt := readiness.BuildPrompt(globalContext, auditInstructions, in)

	start := time.Now()
	gen, genErr := s.aiClient.GenerateJSONText(ctx, prompt)
	latencyMS := time.Since(start).Milliseconds()

	if genErr != nil {
		s.log.Warn("Advisor call failed, returning fallback verdict", "user_id", userID.String(), "error", genErr)
		v := fallbackVerdict()
		s.recordCall(userID, in, prompt, "", "", promptVersion, 0, latencyMS, genErr)
		s.saveCheckIn(ctx, userID, in, v, false)
		return v, nil
	}

	v, parseErr := readiness.ParseVerdict(gen.Text)
	if parseErr != nil {
		s.log.Warn("Advisor response failed to parse, returning fallback verdict", "user_id", userID.String(), "error", parseErr)
		fb := fallbackVerdict()
		s.recordCall(userID, in, prompt, gen.Text, gen.Model, promptVersion, gen.TokensUsed, latencyMS, parseErr)
		s.saveCheckIn(ctx, userID, in, fb, false)
		return fb, nil
	}

	if v.UIColor != readiness.ColorFor(v.Status) {
		// advisor verdicts pass through as-is; flag the mismatch only
		s.log.Warn("Advisor verdict color does not match status", "status", v.Status, "ui_color", v.UIColor)
	}

	s.recordCall(userID, in, prompt, gen.Text, gen.Model, promptVersion, gen.TokensUsed, latencyMS, nil)
	s.saveCheckIn(ctx, userID, in, v, false)
	return v, nil
}

func (s *readinessService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ReadinessCheckIn, error) {
	return s.checkIns.ListRecentByUser(ctx, nil, userID, limit)
}

// fallbackVerdict is the conservative recommendation returned whenever the
// advisor fails. It is built fresh per call so callers cannot share state.
func fallbackVerdict() *readiness.Verdict {
	mod := "Reduce planned intensity today and stop immediately if any symptom worsens."
	return &readiness.Verdict{
		Status:       readiness.StatusCaution,
		UIColor:      readiness.ColorFor(readiness.StatusCaution),
		ShortMessage: "Proceed with caution today.",
		Rationale:    "The readiness advisor is temporarily unavailable, so today's recommendation defaults to a conservative plan.",
		Modification: &mod,
	}
}

func (s *readinessService) recordCall(userID uuid.UUID, in readiness.Input, prompt, response, model, promptVersion string, tokens int, latencyMS int64, callErr error) {
	if s.callLog == nil {
		return
	}
	entry := CallLogEntry{
		UserID:        &userID,
		CallType:      readinessCallType,
		Model:         model,
		Prompt:        prompt,
		Response:      response,
		Success:       callErr == nil,
		TokensUsed:    tokens,
		LatencyMS:     latencyMS,
		PromptVersion: promptVersion,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if raw, err := json.Marshal(checkInSnapshot(in)); err == nil {
		entry.InputData = raw
	}
	if response != "" {
		if raw, err := json.Marshal(map[string]string{"text": response}); err == nil {
			entry.OutputData = raw
		}
	}
	s.callLog.Record(entry)
}

func (s *readinessService) saveCheckIn(ctx context.Context, userID uuid.UUID, in readiness.Input, v *readiness.Verdict, gateTriggered bool) {
	if s.checkIns == nil {
		return
	}
	row := &types.ReadinessCheckIn{
		UserID:        userID,
		SleepHours:    in.SleepHours,
		StressLevel:   in.StressLevel,
		CycleDay:      in.CycleDay,
		PainLevel:     in.PainLevel,
		PainLocation:  in.PainLocation,
		Status:        string(v.Status),
		UIColor:       string(v.UIColor),
		ShortMessage:  v.ShortMessage,
		Rationale:     v.Rationale,
		Modification:  v.Modification,
		GateTriggered: gateTriggered,
	}
	if _, err := s.checkIns.Create(ctx, nil, row); err != nil {
		s.log.Warn("Check-in persistence failed", "user_id", userID.String(), "error", err)
	}
}

func checkInSnapshot(in readiness.Input) map[string]any {
	snap := map[string]any{
		"sleep":      in.SleepHours,
		"stress":     in.StressLevel,
		"pain_level": in.PainLevel,
	}
	if in.CycleDay != nil {
		snap["cycle_day"] = *in.CycleDay
	}
	if in.PainLocation != "" {
		snap["pain_location"] = in.PainLocation
	}
	return snap
}
