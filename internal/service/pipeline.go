package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"braindump-service/internal/metrics"
	"braindump-service/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SuccessMessage is returned with every completed run, fallback included.
const SuccessMessage = "Brain dump processed successfully!"

// DefaultExtractionTimeout bounds the model call.
const DefaultExtractionTimeout = 30 * time.Second

// Extractor returns the raw model reply for a brain dump.
type Extractor interface {
	Extract(ctx context.Context, text string) (string, error)
}

// Gateway is the persistence capability the pipeline writes to.
// Implementations assign primary keys and timestamps.
type Gateway interface {
	InsertAuditRecord(ctx context.Context, audit *models.BrainDumpAudit) error
	InsertTasks(ctx context.Context, tasks []models.PersistedTask) error
	InsertNotes(ctx context.Context, notes []models.PersistedNote) error
}

// Notifier announces processed brain dumps to other services.
type Notifier interface {
	PublishProcessed(ctx context.Context, event models.ProcessedEvent) error
}

// Config tunes the pipeline.
type Config struct {
	ExtractionTimeout time.Duration
}

// Result is the outcome of a completed run.
type Result struct {
	Data     models.ExtractedResult
	Message  string
	Fallback bool
	// Warnings lists writes that failed; the run still counts as a success.
	Warnings []WriteFailure
}

// Pipeline runs Normalizing → Extracting → Sanitizing → Materializing → Done.
// It keeps no per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	gateway   Gateway
	notifier  Notifier
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline creates a pipeline. notifier may be nil.
func NewPipeline(extractor Extractor, gateway Gateway, notifier Notifier, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = DefaultExtractionTimeout
	}
	return &Pipeline{
		extractor: extractor,
		gateway:   gateway,
		notifier:  notifier,
		timeout:   cfg.ExtractionTimeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Process runs one submission to completion or failure. Only validation and extraction
// errors are returned; parse and write failures are absorbed into the Result.
func (p *Pipeline) Process(ctx context.Context, text, userID string, report ProgressReporter) (*Result, error) {
	var last int
	emit := func(pr Progress) {
		last = pr.Percent
		report.report(pr)
	}
	fail := func(stage Stage, err error) (*Result, error) {
		metrics.RecordPipelineRun(string(StageFailed), string(stage))
		report.report(Progress{Stage: StageFailed, Percent: last, Message: failedMessage})
		return nil, err
	}

	emit(progressNormalizing)
	sub, err := Normalize(text, userID)
	if err != nil {
		return fail(StageNormalizing, err)
	}

	emit(progressExtracting)
	raw, err := p.extract(ctx, sub)
	if err != nil {
		return fail(StageExtracting, err)
	}

	emit(progressSanitizing)
	sanitized := Sanitize(raw, sub.Text)
	if sanitized.Fallback {
		metrics.IncrementFallback()
		p.logger.Warn("Model reply could not be parsed, using fallback result",
			zap.String("user_id", sub.UserID),
			zap.Error(sanitized.ParseErr),
			zap.String("original_response", raw))
	}
	emit(progressStructured)

	emit(progressSaving)
	ws := Materialize(sub, sanitized.Data)
	metrics.AddMaterialized("tasks", len(ws.Tasks))
	metrics.AddMaterialized("notes", len(ws.Notes))
	failures := p.persist(ctx, ws)

	emit(progressDone)
	metrics.RecordPipelineRun(string(StageDone), string(StageDone))

	p.notify(ctx, sub, sanitized)

	p.logger.Info("Brain dump processed",
		zap.String("user_id", sub.UserID),
		zap.Int("todos", len(sanitized.Data.Todos)),
		zap.Int("notes", len(sanitized.Data.Notes)),
		zap.Int("projects", len(sanitized.Data.Projects)),
		zap.Int("events", len(sanitized.Data.Events)),
		zap.Bool("fallback", sanitized.Fallback),
		zap.Int("write_failures", len(failures)))

	return &Result{
		Data:     sanitized.Data,
		Message:  SuccessMessage,
		Fallback: sanitized.Fallback,
		Warnings: failures,
	}, nil
}

// extract makes the single bounded model call.
func (p *Pipeline) extract(ctx context.Context, sub models.BrainDumpSubmission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	raw, err := p.extractor.Extract(ctx, sub.Text)
	elapsed := p.now().Sub(start)

	if err == nil && ctx.Err() != nil {
		// A reply that arrives after the deadline is not trusted.
		err = ctx.Err()
	}

	if err != nil {
		metrics.RecordExtractionLatency("error", elapsed)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("model call exceeded %s: %w", p.timeout, err)
		}
		p.logger.Error("Extraction failed",
			zap.String("user_id", sub.UserID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", &ExtractionError{Err: err}
	}

	metrics.RecordExtractionLatency("ok", elapsed)
	return raw, nil
}

// persist issues the audit, task and note inserts concurrently. A failed insert is
// logged and reported but never stops the others.
func (p *Pipeline) persist(ctx context.Context, ws WriteSet) []WriteFailure {
	var (
		mu       sync.Mutex
		failures []WriteFailure
		g        errgroup.Group
	)

	write := func(entity string, insert func() error) {
		g.Go(func() error {
			if err := safeInsert(insert); err != nil {
				metrics.IncrementWriteFailure(entity)
				p.logger.Error("Failed to save "+entity,
					zap.String("user_id", ws.Audit.UserID),
					zap.Error(err))
				mu.Lock()
				failures = append(failures, WriteFailure{Entity: entity, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}

	write("brain_dumps", func() error { return p.gateway.InsertAuditRecord(ctx, &ws.Audit) })
	if len(ws.Tasks) > 0 {
		write("tasks", func() error { return p.gateway.InsertTasks(ctx, ws.Tasks) })
	}
	if len(ws.Notes) > 0 {
		write("notes", func() error { return p.gateway.InsertNotes(ctx, ws.Notes) })
	}

	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Entity < failures[j].Entity })
	return failures
}

// safeInsert turns a panicking gateway into an ordinary write failure.
func safeInsert(insert func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("insert panicked: %v", r)
		}
	}()
	return insert()
}

func (p *Pipeline) notify(ctx context.Context, sub models.BrainDumpSubmission, s Sanitized) {
	if p.notifier == nil {
		return
	}

	event := models.ProcessedEvent{
		UserID:     sub.UserID,
		Todos:      len(s.Data.Todos),
		Notes:      len(s.Data.Notes),
		Projects:   len(s.Data.Projects),
		Events:     len(s.Data.Events),
		Fallback:   s.Fallback,
		OccurredAt: p.now(),
	}
	if err := p.notifier.PublishProcessed(ctx, event); err != nil {
		p.logger.Warn("Failed to publish processed event",
			zap.String("user_id", sub.UserID),
			zap.Error(err))
	}
}
