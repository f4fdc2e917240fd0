package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/api/dto"
	"github.com/aliskhannn/medreminder/internal/api/respond"
	"github.com/aliskhannn/medreminder/internal/queue"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/dlq/mock.go -package=mocks

const defaultLimit = 50

type deadLetterQueue interface {
	DeadLetters(ctx context.Context, limit int) ([]queue.DeadLetter, error)
	DeadLetterStats(ctx context.Context) (queue.Stats, error)
	Redrive(ctx context.Context, limit int) (int, error)
}

// StatsResponse is queue.Stats with the age rendered for humans.
type StatsResponse struct {
	Depth            int     `json:"depth"`
	OldestAgeSeconds float64 `json:"oldest_age_seconds"`
}

type Handler struct {
	queue     deadLetterQueue
	validator *validator.Validate
}

func NewHandler(q deadLetterQueue, v *validator.Validate) *Handler {
	return &Handler{queue: q, validator: v}
}

func (h *Handler) List(c *gin.Context) {
	limit := defaultLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid limit"))
			return
		}
		limit = n
	}

	letters, err := h.queue.DeadLetters(c.Request.Context(), limit)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to list dead letters")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	if letters == nil {
		letters = []queue.DeadLetter{}
	}

	respond.OK(c.Writer, letters)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.queue.DeadLetterStats(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get dead letter stats")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, StatsResponse{Depth: st.Depth, OldestAgeSeconds: st.OldestAge.Seconds()})
}

// Redrive moves dead letters back to the delivery queue. An empty body or a
// zero limit redrives everything.
func (h *Handler) Redrive(c *gin.Context) {
	var req dto.RedriveRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil && err != io.EOF {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	n, err := h.queue.Redrive(c.Request.Context(), req.Limit)
	if err != nil {
		zlog.Logger.Error().Err(err).Int("redriven", n).Msg("failed to redrive dead letters")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	zlog.Logger.Info().Int("redriven", n).Msg("dead letters redriven")
	respond.OK(c.Writer, gin.H{"redriven": n})
}
