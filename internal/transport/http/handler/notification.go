package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/usecase"
)

// notificationUsecaser is the subset of NotificationUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type notificationUsecaser interface {
	GetSettings(ctx context.Context) (*domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.NotificationSettings, error)
	ListSchedules(ctx context.Context) ([]*usecase.ScheduleWithPreview, error)
	UpsertSchedule(ctx context.Context, input usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error)
	ListDeliveries(ctx context.Context, input usecase.ListDeliveriesInput) (usecase.ListDeliveriesResult, error)
}

type NotificationHandler struct {
	uc     notificationUsecaser
	logger *slog.Logger
}

func NewNotificationHandler(uc notificationUsecaser, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, logger: logger.With("component", "notification_handler")}
}

type settingsRequest struct {
	Enabled       bool     `json:"enabled"`
	Recipients    []string `json:"recipients"`
	TimeZone      string   `json:"time_zone"`
	SendWhenEmpty bool     `json:"send_when_empty"`
}

type settingsResponse struct {
	Enabled       bool      `json:"enabled"`
	Recipients    []string  `json:"recipients"`
	TimeZone      string    `json:"time_zone"`
	SendWhenEmpty bool      `json:"send_when_empty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toSettingsResponse(s *domain.NotificationSettings) settingsResponse {
	return settingsResponse{
		Enabled:       s.Enabled,
		Recipients:    s.Recipients,
		TimeZone:      s.TimeZone,
		SendWhenEmpty: s.SendWhenEmpty,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (h *NotificationHandler) GetSettings(ctx *gin.Context) {
	s, err := h.uc.GetSettings(ctx.Request.Context())
	if err != nil {
		h.logger.Error("get notification settings", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, toSettingsResponse(s))
}

func (h *NotificationHandler) UpdateSettings(ctx *gin.Context) {
	var req settingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.UpdateSettings(ctx.Request.Context(), usecase.UpdateSettingsInput{
		Enabled:       req.Enabled,
		Recipients:    req.Recipients,
		TimeZone:      req.TimeZone,
		SendWhenEmpty: req.SendWhenEmpty,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSettingsInvalid),
			errors.Is(err, domain.ErrUnknownTimeZone),
			errors.Is(err, domain.ErrRecipientsRequired),
			errors.Is(err, domain.ErrNoEnabledSchedules):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("update notification settings", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, toSettingsResponse(s))
}

type scheduleRequest struct {
	Enabled    bool   `json:"enabled"`
	DaysOfWeek []int  `json:"days_of_week"`
	TimeOfDay  string `json:"time_of_day"` // "HH:MM"
}

type scheduleResponse struct {
	ID             string     `json:"id"`
	DepartmentID   string     `json:"department_id"`
	DepartmentName string     `json:"department_name"`
	Enabled        bool       `json:"enabled"`
	DaysOfWeek     []int      `json:"days_of_week"`
	TimeOfDay      string     `json:"time_of_day"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextFireAt     *time.Time `json:"next_fire_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toScheduleResponse(p *usecase.ScheduleWithPreview) scheduleResponse {
	s := p.Schedule
	return scheduleResponse{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		Enabled:        s.Enabled,
		DaysOfWeek:     s.DaysOfWeek,
		TimeOfDay:      fmt.Sprintf("%02d:%02d", s.Hour, s.Minute),
		LastRunAt:      s.LastRunAt,
		NextFireAt:     p.NextFireAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (h *NotificationHandler) ListSchedules(ctx *gin.Context) {
	schedules, err := h.uc.ListSchedules(ctx.Request.Context())
	if err != nil {
		h.logger.Error("list schedules", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]scheduleResponse, len(schedules))
	for i, s := range schedules {
		items[i] = toScheduleResponse(s)
	}
	ctx.JSON(http.StatusOK, gin.H{"schedules": items})
}

func (h *NotificationHandler) UpsertSchedule(ctx *gin.Context) {
	departmentID := ctx.Param("departmentID")

	var req scheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.UpsertSchedule(ctx.Request.Context(), usecase.UpsertScheduleInput{
		DepartmentID: departmentID,
		Enabled:      req.Enabled,
		DaysOfWeek:   req.DaysOfWeek,
		TimeOfDay:    req.TimeOfDay,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDepartmentNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errDepartmentNotFound})
		case errors.Is(err, domain.ErrScheduleInvalid):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("upsert schedule", "department_id", departmentID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, toScheduleResponse(s))
}

type deliveryResponse struct {
	ID             string    `json:"id"`
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	Recipients     []string  `json:"recipients"`
	Subject        string    `json:"subject"`
	DeliveryID     string    `json:"delivery_id"`
	TaskCount      int       `json:"task_count"`
	SentAt         time.Time `json:"sent_at"`
}

func (h *NotificationHandler) ListDeliveries(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListDeliveries(ctx.Request.Context(), usecase.ListDeliveriesInput{
		DepartmentID: ctx.Query("department_id"),
		Cursor:       ctx.Query("cursor"),
		Limit:        limit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCursor})
			return
		}
		h.logger.Error("list deliveries", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]deliveryResponse, len(result.Deliveries))
	for i, d := range result.Deliveries {
		items[i] = deliveryResponse{
			ID:             d.ID,
			DepartmentID:   d.DepartmentID,
			DepartmentName: d.DepartmentName,
			Recipients:     d.Recipients,
			Subject:        d.Subject,
			DeliveryID:     d.DeliveryID,
			TaskCount:      d.TaskCount,
			SentAt:         d.SentAt,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"deliveries":  items,
		"next_cursor": result.NextCursor,
	})
}
