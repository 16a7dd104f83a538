package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/transport/http/handler"
	"github.com/matkarim/taskdesk/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeNotificationUsecase implements the unexported notificationUsecaser
// interface via method matching.
type fakeNotificationUsecase struct {
	getSettings    func(ctx context.Context) (*domain.NotificationSettings, error)
	updateSettings func(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.NotificationSettings, error)
	listSchedules  func(ctx context.Context) ([]*usecase.ScheduleWithPreview, error)
	upsertSchedule func(ctx context.Context, input usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error)
	listDeliveries func(ctx context.Context, input usecase.ListDeliveriesInput) (usecase.ListDeliveriesResult, error)
}

func (f *fakeNotificationUsecase) GetSettings(ctx context.Context) (*domain.NotificationSettings, error) {
	return f.getSettings(ctx)
}

func (f *fakeNotificationUsecase) UpdateSettings(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.NotificationSettings, error) {
	return f.updateSettings(ctx, input)
}

func (f *fakeNotificationUsecase) ListSchedules(ctx context.Context) ([]*usecase.ScheduleWithPreview, error) {
	return f.listSchedules(ctx)
}

func (f *fakeNotificationUsecase) UpsertSchedule(ctx context.Context, input usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error) {
	return f.upsertSchedule(ctx, input)
}

func (f *fakeNotificationUsecase) ListDeliveries(ctx context.Context, input usecase.ListDeliveriesInput) (usecase.ListDeliveriesResult, error) {
	return f.listDeliveries(ctx, input)
}

func notificationEngine(uc *fakeNotificationUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewNotificationHandler(uc, logger)

	r := gin.New()
	r.GET("/notifications/settings", h.GetSettings)
	r.PUT("/notifications/settings", h.UpdateSettings)
	r.GET("/notifications/schedules", h.ListSchedules)
	r.PUT("/notifications/schedules/:departmentID", h.UpsertSchedule)
	r.GET("/notifications/deliveries", h.ListDeliveries)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ---- settings ----

func TestGetSettings_ReturnsConfig(t *testing.T) {
	uc := &fakeNotificationUsecase{
		getSettings: func(context.Context) (*domain.NotificationSettings, error) {
			return &domain.NotificationSettings{
				Enabled:    true,
				Recipients: []string{"ops@co.com"},
				TimeZone:   "Asia/Kolkata",
			}, nil
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodGet, "/notifications/settings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Enabled  bool   `json:"enabled"`
		TimeZone string `json:"time_zone"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Enabled || body.TimeZone != "Asia/Kolkata" {
		t.Errorf("body = %+v", body)
	}
}

func TestUpdateSettings_ValidationErrors_Return400(t *testing.T) {
	for _, domErr := range []error{
		domain.ErrSettingsInvalid,
		domain.ErrUnknownTimeZone,
		domain.ErrRecipientsRequired,
		domain.ErrNoEnabledSchedules,
	} {
		uc := &fakeNotificationUsecase{
			updateSettings: func(context.Context, usecase.UpdateSettingsInput) (*domain.NotificationSettings, error) {
				return nil, domErr
			},
		}
		w := doJSON(notificationEngine(uc), http.MethodPut, "/notifications/settings",
			`{"enabled":true,"recipients":["ops@co.com"],"time_zone":"UTC"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", domErr, w.Code)
		}
	}
}

func TestUpdateSettings_RepoError_Returns500WithoutDetail(t *testing.T) {
	uc := &fakeNotificationUsecase{
		updateSettings: func(context.Context, usecase.UpdateSettingsInput) (*domain.NotificationSettings, error) {
			return nil, errors.New("pq: connection refused")
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodPut, "/notifications/settings", `{"enabled":false}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("response leaks internal error detail")
	}
}

// ---- schedules ----

func TestUpsertSchedule_PassesDepartmentFromPath(t *testing.T) {
	var got usecase.UpsertScheduleInput
	uc := &fakeNotificationUsecase{
		upsertSchedule: func(_ context.Context, input usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error) {
			got = input
			return &usecase.ScheduleWithPreview{
				Schedule: &domain.DepartmentSchedule{
					ID:           "sched-1",
					DepartmentID: input.DepartmentID,
					Enabled:      input.Enabled,
					DaysOfWeek:   input.DaysOfWeek,
					Hour:         18,
					Minute:       0,
				},
			}, nil
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodPut, "/notifications/schedules/dept-42",
		`{"enabled":true,"days_of_week":[1,3,5],"time_of_day":"18:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got.DepartmentID != "dept-42" {
		t.Errorf("department from path = %q, want dept-42", got.DepartmentID)
	}
	if got.TimeOfDay != "18:00" || len(got.DaysOfWeek) != 3 {
		t.Errorf("input = %+v", got)
	}
	if !strings.Contains(w.Body.String(), `"time_of_day":"18:00"`) {
		t.Errorf("body lacks formatted time_of_day: %s", w.Body.String())
	}
}

func TestUpsertSchedule_UnknownDepartment_Returns404(t *testing.T) {
	uc := &fakeNotificationUsecase{
		upsertSchedule: func(context.Context, usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error) {
			return nil, domain.ErrDepartmentNotFound
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodPut, "/notifications/schedules/missing", `{"enabled":false}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpsertSchedule_InvalidSchedule_Returns400(t *testing.T) {
	uc := &fakeNotificationUsecase{
		upsertSchedule: func(context.Context, usecase.UpsertScheduleInput) (*usecase.ScheduleWithPreview, error) {
			return nil, domain.ErrScheduleInvalid
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodPut, "/notifications/schedules/dept-1", `{"enabled":true}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- deliveries ----

func TestListDeliveries_ForwardsQueryParams(t *testing.T) {
	var got usecase.ListDeliveriesInput
	uc := &fakeNotificationUsecase{
		listDeliveries: func(_ context.Context, input usecase.ListDeliveriesInput) (usecase.ListDeliveriesResult, error) {
			got = input
			return usecase.ListDeliveriesResult{
				Deliveries: []*domain.ReportDelivery{{ID: "d1", SentAt: time.Now()}},
			}, nil
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodGet,
		"/notifications/deliveries?department_id=dept-1&limit=5&cursor=abc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.DepartmentID != "dept-1" || got.Limit != 5 || got.Cursor != "abc" {
		t.Errorf("forwarded input = %+v", got)
	}
}

func TestListDeliveries_BadCursor_Returns400(t *testing.T) {
	uc := &fakeNotificationUsecase{
		listDeliveries: func(context.Context, usecase.ListDeliveriesInput) (usecase.ListDeliveriesResult, error) {
			return usecase.ListDeliveriesResult{}, domain.ErrInvalidCursor
		},
	}

	w := doJSON(notificationEngine(uc), http.MethodGet, "/notifications/deliveries?cursor=garbage", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
