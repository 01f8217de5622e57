package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/pkg/jobs"
)

// AuditWriter is the persistence contract for the action trail.
type AuditWriter interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// AuditService records console actions asynchronously through a worker queue
// so a slow trail database never delays a user action. Recording failures are
// logged and dropped after retries; the trail is best-effort by contract.
type AuditService struct {
	writer  AuditWriter
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewAuditService wires the writer behind an in-memory queue.
func NewAuditService(writer AuditWriter, workers, queueSize int, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &AuditService{
		writer:  writer,
		logger:  logger,
		enabled: writer != nil,
	}
	service.queue = jobs.NewQueue("audit", service.handle, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: queueSize,
		Logger:     logger,
	})
	return service
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// Record enqueues one trail entry. Never fails the calling action.
func (s *AuditService) Record(entry models.AuditLog) {
	if !s.enabled {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    entry.Action,
		Payload: entry,
	}); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}

// RecordAction is a convenience wrapper building the entry inline.
func (s *AuditService) RecordAction(username, action, resource, resourceID, ip, userAgent string, details interface{}) {
	if !s.enabled {
		return
	}
	entry := models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if username != "" {
		entry.Username = &username
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if details != nil {
		if blob, err := json.Marshal(details); err == nil {
			entry.Details = blob
		}
	}
	s.Record(entry)
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		s.logger.Error("audit job with unexpected payload", zap.String("type", job.Type))
		return nil
	}
	return s.writer.Insert(ctx, &entry)
}
