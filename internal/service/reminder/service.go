package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/schedule"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/reminder/mock.go -package=mocks

var (
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrReminderCanceled = errors.New("reminder is cancelled")
)

type reminderRepository interface {
	CreateReminder(context.Context, model.Reminder) (uuid.UUID, error)
	GetReminderByID(context.Context, uuid.UUID) (model.Reminder, error)
	GetReminderStatusByID(context.Context, uuid.UUID) (model.ReminderStatus, error)
	UpdateStatus(context.Context, uuid.UUID, model.ReminderStatus) error
	Reschedule(context.Context, uuid.UUID, model.Schedule) error
	ListDispatches(ctx context.Context, reminderID uuid.UUID, limit int) ([]model.Dispatch, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Service manages reminders and keeps their status cached for the
// processor's hot path.
type Service struct {
	repo  reminderRepository
	cache cache
}

func NewService(repo reminderRepository, cache cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func statusKey(id uuid.UUID) string {
	return "reminder:status:" + id.String()
}

func (s *Service) CreateReminder(ctx context.Context, strategy retry.Strategy, r model.Reminder) (uuid.UUID, error) {
	if err := schedule.Validate(r.Schedule()); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	id, err := s.repo.CreateReminder(ctx, r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create reminder: %w", err)
	}

	s.cacheStatus(ctx, strategy, id, model.StatusPending)

	return id, nil
}

func (s *Service) GetReminder(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	r, err := s.repo.GetReminderByID(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}

	return r, nil
}

// GetReminderStatus reads the status from the cache, falling back to the
// repository on a miss.
func (s *Service) GetReminderStatus(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.ReminderStatus, error) {
	cached, err := s.cache.GetWithRetry(ctx, strategy, statusKey(id))
	if err == nil {
		return model.ReminderStatus(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get reminder status from cache")
	}

	status, err := s.repo.GetReminderStatusByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get reminder status: %w", err)
	}

	s.cacheStatus(ctx, strategy, id, status)

	return status, nil
}

func (s *Service) SetStatus(ctx context.Context, strategy retry.Strategy, id uuid.UUID, status model.ReminderStatus) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update reminder status: %w", err)
	}

	s.cacheStatus(ctx, strategy, id, status)

	return nil
}

func (s *Service) Cancel(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error {
	return s.SetStatus(ctx, strategy, id, model.StatusCancelled)
}

// Acknowledge records that the patient confirmed the latest occurrence.
// Recurring reminders keep firing afterwards.
func (s *Service) Acknowledge(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error {
	status, err := s.GetReminderStatus(ctx, strategy, id)
	if err != nil {
		return err
	}
	if status == model.StatusCancelled {
		return ErrReminderCanceled
	}

	return s.SetStatus(ctx, strategy, id, model.StatusAcknowledged)
}

// Reschedule replaces the schedule and clears the dispatch marker.
func (s *Service) Reschedule(ctx context.Context, strategy retry.Strategy, id uuid.UUID, sched model.Schedule) error {
	if err := schedule.Validate(sched); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	if err := s.repo.Reschedule(ctx, id, sched); err != nil {
		return fmt.Errorf("reschedule reminder: %w", err)
	}

	s.cacheStatus(ctx, strategy, id, model.StatusPending)

	return nil
}

func (s *Service) ListDispatches(ctx context.Context, id uuid.UUID, limit int) ([]model.Dispatch, error) {
	dispatches, err := s.repo.ListDispatches(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}

	return dispatches, nil
}

func (s *Service) cacheStatus(ctx context.Context, strategy retry.Strategy, id uuid.UUID, status model.ReminderStatus) {
	if err := s.cache.SetWithRetry(ctx, strategy, statusKey(id), string(status)); err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache reminder status")
	}
}
