package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/api/dto"
	"github.com/aliskhannn/medreminder/internal/api/respond"
	"github.com/aliskhannn/medreminder/internal/config"
	"github.com/aliskhannn/medreminder/internal/model"
	reminderrepo "github.com/aliskhannn/medreminder/internal/repository/reminder"
	remindersvc "github.com/aliskhannn/medreminder/internal/service/reminder"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/reminder/mock.go -package=mocks

const defaultDispatchLimit = 50

type reminderService interface {
	CreateReminder(ctx context.Context, strategy retry.Strategy, r model.Reminder) (uuid.UUID, error)
	GetReminder(ctx context.Context, id uuid.UUID) (model.Reminder, error)
	GetReminderStatus(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.ReminderStatus, error)
	Cancel(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error
	Acknowledge(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error
	Reschedule(ctx context.Context, strategy retry.Strategy, id uuid.UUID, sched model.Schedule) error
	ListDispatches(ctx context.Context, id uuid.UUID, limit int) ([]model.Dispatch, error)
}

type Handler struct {
	service   reminderService
	validator *validator.Validate
	cfg       *config.Config
}

func NewHandler(
	s reminderService,
	v *validator.Validate,
	cfg *config.Config,
) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

func (h *Handler) Create(c *gin.Context) {
	var req dto.CreateReminderRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid user_id"))
		return
	}

	rem := model.Reminder{
		UserID:         userID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Recurrence:     model.Recurrence(req.Recurrence),
		ScheduledAt:    req.ScheduledAt,
		TimeOfDay:      req.TimeOfDay,
		CronExpr:       req.CronExpr,
		Timezone:       req.Timezone,
		Status:         model.StatusPending,
	}

	id, err := h.service.CreateReminder(c.Request.Context(), h.cfg.Retry, rem)
	if err != nil {
		if errors.Is(err, remindersvc.ErrInvalidSchedule) {
			zlog.Logger.Warn().Err(err).Msg("invalid schedule")
			respond.Fail(c.Writer, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Error().Err(err).Str("medication", rem.MedicationName).Msg("failed to create reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, id)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rem, err := h.service.GetReminder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err, "failed to get reminder")
		return
	}

	respond.OK(c.Writer, rem)
}

func (h *Handler) GetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	status, err := h.service.GetReminderStatus(c.Request.Context(), h.cfg.Retry, id)
	if err != nil {
		h.fail(c, id, err, "failed to get reminder status")
		return
	}

	respond.OK(c.Writer, status)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), h.cfg.Retry, id); err != nil {
		h.fail(c, id, err, "failed to cancel reminder")
		return
	}

	respond.OK(c.Writer, "reminder cancelled")
}

func (h *Handler) Acknowledge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), h.cfg.Retry, id); err != nil {
		h.fail(c, id, err, "failed to acknowledge reminder")
		return
	}

	respond.OK(c.Writer, "reminder acknowledged")
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.RescheduleRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	if err := h.service.Reschedule(c.Request.Context(), h.cfg.Retry, id, req.Schedule()); err != nil {
		h.fail(c, id, err, "failed to reschedule reminder")
		return
	}

	respond.OK(c.Writer, "reminder rescheduled")
}

func (h *Handler) ListDispatches(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit := defaultDispatchLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid limit"))
			return
		}
		limit = n
	}

	dispatches, err := h.service.ListDispatches(c.Request.Context(), id, limit)
	if err != nil {
		h.fail(c, id, err, "failed to list dispatches")
		return
	}

	respond.OK(c.Writer, dispatches)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) fail(c *gin.Context, id uuid.UUID, err error, msg string) {
	switch {
	case errors.Is(err, reminderrepo.ErrReminderNotFound):
		zlog.Logger.Warn().Str("id", id.String()).Err(err).Msg("reminder not found")
		respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("reminder not found"))
	case errors.Is(err, remindersvc.ErrInvalidSchedule):
		respond.Fail(c.Writer, http.StatusBadRequest, err)
	case errors.Is(err, remindersvc.ErrReminderCanceled):
		respond.Fail(c.Writer, http.StatusConflict, err)
	default:
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg(msg)
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}
