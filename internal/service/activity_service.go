package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

var (
	// ErrActivityInvalid marks an entry rejected before it reached the store.
	ErrActivityInvalid = errors.New("invalid activity entry")
	// ErrActivityNoActor means no authenticated identity was bound to the request.
	ErrActivityNoActor = errors.New("no authenticated actor for activity entry")
	// ErrActivityPayloadMissing means a snapshot required by the action was absent.
	ErrActivityPayloadMissing = errors.New("activity entry is missing a required payload")
)

const (
	defaultActivityListLimit = 100
	maxActivityListLimit     = 500
)

var maskedPayloadKeys = []string{"password", "token", "secret"}

// ActivityEntry is what a mutation site hands to the audit log. The actor is never part of it;
// it is resolved from the identity provider when the entry is recorded.
type ActivityEntry struct {
	Action         models.ActivityAction
	TargetTable    string
	TargetRecordID string
	OldPayload     models.Document
	NewPayload     models.Document
	Description    string
}

// EventPublisher fans out recorded entries. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ActivityService is the single write entry point for admin activity and the read side used by
// the log viewer and the statistics screen.
type ActivityService interface {
	// Record writes the entry in the background and never fails the caller. The returned
	// channel is closed once the detached write has finished or was skipped.
	Record(ctx context.Context, entry ActivityEntry) <-chan struct{}
	// Wait blocks until every in-flight write has finished.
	Wait()
	List(ctx context.Context, limit int) ([]models.ActivityLog, error)
	StatsSince(ctx context.Context, since time.Time) ([]models.ActivityStat, error)
}

// ActivityServiceOptions tunes the audit log.
type ActivityServiceOptions struct {
	ListLimit int
	ListMax   int
	Publisher EventPublisher
	Subject   string
}

type activityService struct {
	repo        repository.ActivityLogRepository
	identity    identity.Provider
	diagnostics observability.Diagnostics
	publisher   EventPublisher
	subject     string
	listLimit   int
	listMax     int
	logger      zerolog.Logger
	tracer      trace.Tracer
	inflight    sync.WaitGroup
}

// NewActivityService constructs the audit logger.
func NewActivityService(repo repository.ActivityLogRepository, provider identity.Provider, diagnostics observability.Diagnostics, opts ActivityServiceOptions, logger zerolog.Logger) ActivityService {
	listMax := opts.ListMax
	if listMax <= 0 {
		listMax = maxActivityListLimit
	}
	listLimit := opts.ListLimit
	if listLimit <= 0 {
		listLimit = defaultActivityListLimit
	}
	if listLimit > listMax {
		listLimit = listMax
	}
	subject := strings.TrimSpace(opts.Subject)
	if subject == "" {
		subject = "wakaf.activity"
	}

	return &activityService{
		repo:        repo,
		identity:    provider,
		diagnostics: diagnostics,
		publisher:   opts.Publisher,
		subject:     subject,
		listLimit:   listLimit,
		listMax:     listMax,
		logger:      logger.With().Str("component", "activity_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/wakaf-cms-api/internal/service/activity"),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) <-chan struct{} {
	done := make(chan struct{})

	row, err := s.prepare(ctx, entry)
	if err != nil {
		observability.ActivityWrites().WithLabelValues("skipped").Inc()
		s.capture(ctx, err, "activity log entry skipped", entry)
		close(done)
		return done
	}

	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				observability.ActivityWrites().WithLabelValues("failure").Inc()
				s.capture(detached, fmt.Errorf("activity log write panicked: %v", r), "activity log write failed", entry)
			}
		}()
		s.write(detached, row, entry)
	}()

	return done
}

func (s *activityService) Wait() {
	s.inflight.Wait()
}

// Validate checks the entry shape and that the snapshots required by its action are present.
func (e ActivityEntry) Validate() error {
	if !e.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrActivityInvalid, e.Action)
	}
	if strings.TrimSpace(e.TargetTable) == "" {
		return fmt.Errorf("%w: target table is required", ErrActivityInvalid)
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrActivityInvalid)
	}

	switch e.Action {
	case models.ActivityCreate:
		if e.NewPayload.IsZero() {
			return fmt.Errorf("%w: CREATE needs a new payload", ErrActivityPayloadMissing)
		}
	case models.ActivityUpdate:
		if e.OldPayload.IsZero() || e.NewPayload.IsZero() {
			return fmt.Errorf("%w: UPDATE needs old and new payloads", ErrActivityPayloadMissing)
		}
	case models.ActivityDelete:
		if e.OldPayload.IsZero() {
			return fmt.Errorf("%w: DELETE needs an old payload", ErrActivityPayloadMissing)
		}
	}
	return nil
}

func (s *activityService) prepare(ctx context.Context, entry ActivityEntry) (models.ActivityLog, error) {
	if err := entry.Validate(); err != nil {
		return models.ActivityLog{}, err
	}

	if s.identity == nil {
		return models.ActivityLog{}, ErrActivityNoActor
	}
	actor, ok := s.identity.CurrentUser(ctx)
	if !ok || strings.TrimSpace(actor.ID) == "" {
		return models.ActivityLog{}, ErrActivityNoActor
	}

	oldPayload, newPayload := entry.OldPayload, entry.NewPayload
	switch entry.Action {
	case models.ActivityCreate:
		oldPayload = models.Document{}
	case models.ActivityDelete:
		newPayload = models.Document{}
	case models.ActivityLogin, models.ActivityLogout:
		oldPayload, newPayload = models.Document{}, models.Document{}
	}

	row := models.ActivityLog{
		ActorID:     actor.ID,
		ActorEmail:  actor.Email,
		Action:      entry.Action,
		TargetTable: strings.ToLower(strings.TrimSpace(entry.TargetTable)),
		OldPayload:  maskDocument(oldPayload),
		NewPayload:  maskDocument(newPayload),
		Description: strings.TrimSpace(entry.Description),
	}
	if id := strings.TrimSpace(entry.TargetRecordID); id != "" && !entry.Action.IsSession() {
		row.TargetRecordID = &id
	}
	return row, nil
}

func (s *activityService) write(ctx context.Context, row models.ActivityLog, entry ActivityEntry) {
	ctx, span := s.tracer.Start(ctx, "activity.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("activity.action", string(row.Action)),
		attribute.String("activity.table", row.TargetTable),
	)

	start := time.Now()
	err := s.repo.Create(ctx, &row)
	observability.ActivityWriteLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ActivityWrites().WithLabelValues("failure").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.capture(ctx, err, "activity log write failed", entry)
		return
	}

	observability.ActivityWrites().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.String("activity.id", row.ID))
	span.SetStatus(codes.Ok, "recorded")
	s.publish(row)
}

type activityEvent struct {
	ID             string                `json:"id"`
	CreatedAt      time.Time             `json:"created_at"`
	ActorID        string                `json:"actor_id"`
	Action         models.ActivityAction `json:"action"`
	TargetTable    string                `json:"target_table"`
	TargetRecordID *string               `json:"target_record_id,omitempty"`
	Description    string                `json:"description"`
}

func (s *activityService) publish(row models.ActivityLog) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(activityEvent{
		ID:             row.ID,
		CreatedAt:      row.CreatedAt,
		ActorID:        row.ActorID,
		Action:         row.Action,
		TargetTable:    row.TargetTable,
		TargetRecordID: row.TargetRecordID,
		Description:    row.Description,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}
	if err := s.publisher.Publish(s.subject+".recorded", payload); err != nil {
		s.logger.Warn().Err(err).Str("activity_id", row.ID).Msg("failed to publish activity event")
	}
}

func (s *activityService) capture(ctx context.Context, err error, message string, entry ActivityEntry) {
	if s.diagnostics == nil {
		s.logger.Error().Err(err).Msg(message)
		return
	}
	s.diagnostics.Capture(ctx, err, message, map[string]string{
		"action":       string(entry.Action),
		"target_table": entry.TargetTable,
	})
}

func (s *activityService) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	ctx, span := s.tracer.Start(ctx, "activity.list")
	defer span.End()

	if limit <= 0 {
		limit = s.listLimit
	}
	if limit > s.listMax {
		limit = s.listMax
	}
	span.SetAttributes(attribute.Int("activity.limit", limit))

	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, err
	}
	return entries, nil
}

func (s *activityService) StatsSince(ctx context.Context, since time.Time) ([]models.ActivityStat, error) {
	ctx, span := s.tracer.Start(ctx, "activity.stats_since")
	defer span.End()
	span.SetAttributes(attribute.String("activity.since", since.UTC().Format(time.RFC3339)))

	stats, err := s.repo.ListSince(ctx, since)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats failed")
		return nil, err
	}
	return stats, nil
}

// maskDocument hides top level secret-like fields of object snapshots.
func maskDocument(doc models.Document) models.Document {
	if doc.IsZero() {
		return doc
	}
	fields, err := doc.Map()
	if err != nil {
		return doc
	}

	changed := false
	for key := range fields {
		lower := strings.ToLower(key)
		for _, secret := range maskedPayloadKeys {
			if strings.Contains(lower, secret) {
				fields[key] = "***"
				changed = true
				break
			}
		}
	}
	if !changed {
		return doc
	}

	masked, err := models.DocumentOf(fields)
	if err != nil {
		return doc
	}
	return masked
}
