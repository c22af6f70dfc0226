package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/repos"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

// CallLogEntry is what the orchestrator hands to the recorder. InputData and
// OutputData are pre-marshaled snapshots of the check-in and verdict.
type CallLogEntry struct {
	UserID        *uuid.UUID
	CallType      string
	Model         string
	Prompt        string
	Response      string
	Success       bool
	Error         string
	TokensUsed    int
	LatencyMS     int64
	PromptVersion string
	InputData     []byte
	OutputData    []byte
}

// CallLogService records advisor interactions off the request path. Record
// never blocks: when the queue is full the entry is dropped with a warning.
// Recorder failures are logged and never reach the caller.
type CallLogService interface {
	Start(ctx context.Context)
	Record(entry CallLogEntry)
	Drain(timeout time.Duration)
}

type callLogService struct {
	log   *logger.Logger
	repo  repos.AICallLogRepo
	queue chan CallLogEntry
	wg    sync.WaitGroup
}

func NewCallLogService(baseLog *logger.Logger, repo repos.AICallLogRepo, queueSize int) CallLogService {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &callLogService{
		log:   baseLog.With("service", "CallLogService"),
		repo:  repo,
		queue: make(chan CallLogEntry, queueSize),
	}
}

func (s *callLogService) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				// flush whatever is already queued before exiting
				for {
					select {
					case e := <-s.queue:
						s.write(e)
					default:
						return
					}
				}
			case e := <-s.queue:
				s.write(e)
			}
		}
	}()
}

func (s *callLogService) Record(entry CallLogEntry) {
	select {
	case s.queue <- entry:
	default:
		s.log.Warn("Call log queue full, dropping entry", "call_type", entry.CallType)
	}
}

// Drain waits for the worker goroutine to finish after its context is
// canceled, up to the given timeout. Used during shutdown.
func (s *callLogService) Drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.log.Warn("Call log drain timed out", "pending", len(s.queue))
	}
}

func (s *callLogService) write(e CallLogEntry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Call log writer panic", "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	row := &types.AICallLog{
		UserID:        e.UserID,
		CallType:      e.CallType,
		Model:         e.Model,
		Prompt:        e.Prompt,
		Response:      e.Response,
		Success:       e.Success,
		Error:         e.Error,
		TokensUsed:    e.TokensUsed,
		LatencyMS:     e.LatencyMS,
		PromptVersion: e.PromptVersion,
	}
	if len(e.InputData) > 0 {
		row.InputData = datatypes.JSON(e.InputData)
	}
	if len(e.OutputData) > 0 {
		row.OutputData = datatypes.JSON(e.OutputData)
	}
	if _, err := s.repo.Create(ctx, nil, row); err != nil {
		s.log.Warn("Call log write failed", "call_type", e.CallType, "error", err)
	}
}
