package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RequiresAccessToken(t *testing.T) {
	router, _ := newTestRouter(t, newTestServices())

	w := doRequest(router, http.MethodGet, "/api/v1/attendance/today", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/attendance/today", nil, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RejectsStreamTokenAsAccessToken(t *testing.T) {
	router, jwtService := newTestRouter(t, newTestServices())
	token, _, err := jwtService.GenerateStreamToken(testUserID, user.RoleUser)
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/v1/attendance/clock-in", nil, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminOnly(t *testing.T) {
	s := newTestServices()
	s.user.list = func(filter user.UserFilter) (user.ListUserResponse, error) {
		return user.ListUserResponse{Page: filter.Page, Limit: filter.Limit}, nil
	}
	router, jwtService := newTestRouter(t, s)

	w := doRequest(router, http.MethodGet, "/api/v1/users", nil, bearer(t, jwtService, testUserID, user.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/users", nil, bearer(t, jwtService, testAdminID, user.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_List_ParsesFilter(t *testing.T) {
	s := newTestServices()
	var got user.UserFilter
	s.user.list = func(filter user.UserFilter) (user.ListUserResponse, error) {
		got = filter
		return user.ListUserResponse{}, nil
	}
	router, jwtService := newTestRouter(t, s)

	w := doRequest(router, http.MethodGet, "/api/v1/users?search=ann&is_active=false&page=2&limit=5", nil,
		bearer(t, jwtService, testAdminID, user.RoleAdmin))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Search)
	assert.Equal(t, "ann", *got.Search)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	assert.Nil(t, got.Role)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
}

func TestAttendanceHandler_ClockIn_UsesTokenUser(t *testing.T) {
	s := newTestServices()
	s.attendance.clockIn = func(userID string) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{ID: "rec-1", UserID: userID, Status: attendance.StatusPresent}, nil
	}
	router, jwtService := newTestRouter(t, s)

	w := doRequest(router, http.MethodPost, "/api/v1/attendance/clock-in", nil, bearer(t, jwtService, testUserID, user.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, testUserID, data["user_id"])
}

func TestAttendanceHandler_ClockIn_Twice(t *testing.T) {
	s := newTestServices()
	s.attendance.clockIn = func(string) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}
	router, jwtService := newTestRouter(t, s)

	w := doRequest(router, http.MethodPost, "/api/v1/attendance/clock-in", nil, bearer(t, jwtService, testUserID, user.RoleUser))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVacationHandler_Reject(t *testing.T) {
	s := newTestServices()
	s.vacation.reject = func(reviewerID, id string, req vacation.RejectVacationRequest) (vacation.VacationResponse, error) {
		assert.Equal(t, testAdminID, reviewerID)
		assert.Equal(t, "vac-1", id)
		if req.Reason == "" {
			return vacation.VacationResponse{}, validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}
		}
		reason := req.Reason
		return vacation.VacationResponse{ID: id, Status: vacation.StatusRejected, RejectionReason: &reason}, nil
	}
	router, jwtService := newTestRouter(t, s)
	admin := bearer(t, jwtService, testAdminID, user.RoleAdmin)

	w := doRequest(router, http.MethodPost, "/api/v1/vacations/vac-1/reject", map[string]string{"reason": ""}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/vacations/vac-1/reject", map[string]string{"reason": "peak season"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "peak season", data["rejection_reason"])

	w = doRequest(router, http.MethodPost, "/api/v1/vacations/vac-1/reject", map[string]string{"reason": "x"},
		bearer(t, jwtService, testUserID, user.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectHandler_ExportReport(t *testing.T) {
	s := newTestServices()
	s.project.export = func(filter project.ReportFilter, format string, w io.Writer) (string, error) {
		assert.Equal(t, "2025-01-01", filter.StartDate)
		assert.Equal(t, "2025-01-31", filter.EndDate)
		if format != "csv" {
			return "", project.ErrUnsupportedFormat
		}
		_, err := io.WriteString(w, "project,user\n")
		return "text/csv", err
	}
	router, jwtService := newTestRouter(t, s)
	admin := bearer(t, jwtService, testAdminID, user.RoleAdmin)

	w := doRequest(router, http.MethodGet, "/api/v1/projects/report/export?start_date=2025-01-01&end_date=2025-01-31&format=csv", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="project-report_2025-01-01_2025-01-31.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "project,user\n", w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/v1/projects/report/export?start_date=2025-01-01&end_date=2025-01-31&format=pdf", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestProjectHandler_Delete(t *testing.T) {
	s := newTestServices()
	s.project.remove = func(id string) error {
		switch id {
		case "prj-busy":
			return project.ErrProjectHasUpdates
		case "prj-missing":
			return project.ErrProjectNotFound
		}
		return nil
	}
	router, jwtService := newTestRouter(t, s)
	admin := bearer(t, jwtService, testAdminID, user.RoleAdmin)

	w := doRequest(router, http.MethodDelete, "/api/v1/projects/prj-1", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/projects/prj-busy", nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/projects/prj-missing", nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/projects/prj-1", nil, bearer(t, jwtService, testUserID, user.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventHandler_Stream_RejectsAccessToken(t *testing.T) {
	router, jwtService := newTestRouter(t, newTestServices())

	w := doRequest(router, http.MethodGet, "/api/v1/events/stream", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	access, _, err := jwtService.GenerateAccessToken(testUserID, "ann@example.com", user.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/stream?token="+access, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
