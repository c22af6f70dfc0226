package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/readiness"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

type fakeAIClient struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (f *fakeAIClient) GenerateJSONText(ctx context.Context, prompt string) (*AIGeneration, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &AIGeneration{Text: f.text, Model: "fake-model", TokensUsed: 17}, nil
}

func (f *fakeAIClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTemplates struct {
	tpl *types.PromptTemplate
	err error
}

func (f *fakeTemplates) GetActive(ctx context.Context, role string) (*types.PromptTemplate, error) {
	return f.tpl, f.err
}
func (f *fakeTemplates) Create(ctx context.Context, role, audit, global string, activate bool) (*types.PromptTemplate, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeTemplates) Activate(ctx context.Context, id uuid.UUID) (*types.PromptTemplate, error) {
	return nil, errors.New("not implemented")
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []CallLogEntry
}

func (f *fakeRecorder) Start(ctx context.Context)   {}
func (f *fakeRecorder) Drain(timeout time.Duration) {}
func (f *fakeRecorder) Record(entry CallLogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}
func (f *fakeRecorder) recorded() []CallLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CallLogEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

type fakeCheckIns struct {
	mu   sync.Mutex
	rows []*types.ReadinessCheckIn
}

func (f *fakeCheckIns) Create(ctx context.Context, tx *gorm.DB, c *types.ReadinessCheckIn) (*types.ReadinessCheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, c)
	return c, nil
}
func (f *fakeCheckIns) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ReadinessCheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, nil
}

func newTestService(t *testing.T, ai *fakeAIClient, tpls PromptTemplateService, rec CallLogService) (ReadinessService, *fakeCheckIns) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	checkIns := &fakeCheckIns{}
	var client AIClient
	if ai != nil {
		client = ai
	}
	return NewReadinessService(nil, log, tpls, client, rec, checkIns), checkIns
}

const goVerdictJSON = `{"status":"GO","uiColor":"green","shortMessage":"Train as planned.","rationale":"All markers within range.","modification":null}`

func TestEvaluate_GateShortCircuitsAdvisor(t *testing.T) {
	ai := &fakeAIClient{text: goVerdictJSON}
	rec := &fakeRecorder{}
	svc, checkIns := newTestService(t, ai, &fakeTemplates{}, rec)

	in := readiness.Input{SleepHours: 3, StressLevel: 5, PainLevel: 2}
	v, err := svc.Evaluate(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Status != readiness.StatusStop {
		t.Fatalf("expected STOP, got %q", v.Status)
	}
	if v.Modification == nil {
		t.Fatalf("gate verdict must carry a modification")
	}
	if ai.callCount() != 0 {
		t.Fatalf("advisor must never be called when the gate fires, got %d calls", ai.callCount())
	}
	if len(rec.recorded()) != 0 {
		t.Fatalf("gate verdict should not produce an advisor call log entry")
	}
	if len(checkIns.rows) != 1 || !checkIns.rows[0].GateTriggered {
		t.Fatalf("gate check-in should be persisted with gate_triggered=true")
	}
}

func TestEvaluate_AdvisorVerdictPassesThrough(t *testing.T) {
	ai := &fakeAIClient{text: goVerdictJSON}
	rec := &fakeRecorder{}
	tpl := &types.PromptTemplate{Role: "coach", Version: 3, AuditInstructions: "audit", GlobalContext: "ctx", Active: true}
	svc, _ := newTestService(t, ai, &fakeTemplates{tpl: tpl}, rec)

	in := readiness.Input{SleepHours: 7, StressLevel: 4, PainLevel: 1}
	v, err := svc.Evaluate(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Status != readiness.StatusGo || v.UIColor != readiness.ColorGreen {
		t.Fatalf("expected GO verdict unmodified, got %+v", v)
	}
	if v.ShortMessage != "Train as planned." {
		t.Fatalf("verdict must pass through unmodified, got %+v", v)
	}
	if ai.callCount() != 1 {
		t.Fatalf("expected exactly one advisor call, got %d", ai.callCount())
	}
	entries := rec.recorded()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one call log entry, got %d", len(entries))
	}
	e := entries[0]
	if !e.Success || e.TokensUsed != 17 || e.PromptVersion != "coach/v3" {
		t.Fatalf("unexpected call log entry: %+v", e)
	}
}

func TestEvaluate_NetworkFailureFallsBack(t *testing.T) {
	ai := &fakeAIClient{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	svc, _ := newTestService(t, ai, &fakeTemplates{}, rec)

	in := readiness.Input{SleepHours: 7, StressLevel: 4, PainLevel: 1}
	v, err := svc.Evaluate(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("failures must be absorbed into the fallback, got error: %v", err)
	}
	if v.Status != readiness.StatusCaution || v.UIColor != readiness.ColorYellow {
		t.Fatalf("expected conservative fallback, got %+v", v)
	}
	if v.Modification == nil {
		t.Fatalf("fallback verdict must carry a modification")
	}
	entries := rec.recorded()
	if len(entries) != 1 {
		t.Fatalf("failed call must still be logged, got %d entries", len(entries))
	}
	if entries[0].Success || entries[0].Error == "" {
		t.Fatalf("log entry should record the failure: %+v", entries[0])
	}
}

func TestEvaluate_UnparseableReplyFallsBack(t *testing.T) {
	ai := &fakeAIClient{text: "I think you should rest today."}
	rec := &fakeRecorder{}
	svc, _ := newTestService(t, ai, &fakeTemplates{}, rec)

	in := readiness.Input{SleepHours: 8, StressLevel: 2, PainLevel: 0}
	v, err := svc.Evaluate(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("parse failures must be absorbed, got error: %v", err)
	}
	if v.Status != readiness.StatusCaution {
		t.Fatalf("expected fallback CAUTION, got %+v", v)
	}
	entries := rec.recorded()
	if len(entries) != 1 || entries[0].Success {
		t.Fatalf("parse failure should be logged as unsuccessful: %+v", entries)
	}
	if entries[0].Response != "I think you should rest today." {
		t.Fatalf("raw advisor text should be captured for the log: %+v", entries[0])
	}
}

func TestEvaluate_MissingTemplateUsesDefaults(t *testing.T) {
	ai := &fakeAIClient{text: goVerdictJSON}
	svc, _ := newTestService(t, ai, &fakeTemplates{tpl: nil}, &fakeRecorder{})

	in := readiness.Input{SleepHours: 7, StressLevel: 3, PainLevel: 2}
	v, err := svc.Evaluate(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("missing template must be tolerated: %v", err)
	}
	if v.Status != readiness.StatusGo {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestEvaluate_MissingAdvisorIsConfigurationError(t *testing.T) {
	svc, _ := newTestService(t, nil, &fakeTemplates{}, &fakeRecorder{})

	in := readiness.Input{SleepHours: 7, StressLevel: 3, PainLevel: 2}
	if _, err := svc.Evaluate(context.Background(), uuid.New(), in); err == nil {
		t.Fatalf("expected configuration error when no advisor client is wired")
	}

	// the gate still works without an advisor
	v, err := svc.Evaluate(context.Background(), uuid.New(), readiness.Input{SleepHours: 2})
	if err != nil {
		t.Fatalf("gate must not depend on the advisor: %v", err)
	}
	if v.Status != readiness.StatusStop {
		t.Fatalf("expected STOP, got %+v", v)
	}
}
