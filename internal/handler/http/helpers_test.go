package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/auth"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/exception"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/oauth"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testUserID        = "0192f5a0-1111-7aaa-8bbb-000000000001"
	testAdminID       = "0192f5a0-1111-7aaa-8bbb-000000000002"
)

// Fakes embed the service interface so only the methods a test needs are
// implemented; anything else panics.

type fakeAuthService struct {
	auth.AuthService
	login   func(req auth.LoginRequest, session auth.SessionInfo) (auth.TokenResponse, error)
	refresh func(token string) (auth.TokenResponse, error)
	logout  func(token string) error
	google  func(email string, verified bool) (auth.TokenResponse, error)
}

func (f *fakeAuthService) Login(_ context.Context, req auth.LoginRequest, session auth.SessionInfo) (auth.TokenResponse, error) {
	return f.login(req, session)
}

func (f *fakeAuthService) RefreshToken(_ context.Context, token string) (auth.TokenResponse, error) {
	return f.refresh(token)
}

func (f *fakeAuthService) Logout(_ context.Context, token string) error {
	return f.logout(token)
}

func (f *fakeAuthService) LoginWithGoogle(_ context.Context, email string, verified bool, _ auth.SessionInfo) (auth.TokenResponse, error) {
	return f.google(email, verified)
}

type fakeGoogle struct {
	oauth.GoogleService
	user oauth.GoogleUser
	err  error
}

func (f *fakeGoogle) Enabled() bool             { return true }
func (f *fakeGoogle) NewState() (string, error) { return "state-123", nil }
func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}
func (f *fakeGoogle) FetchUser(_ context.Context, _ string) (oauth.GoogleUser, error) {
	return f.user, f.err
}

type fakeUserService struct {
	user.UserService
	list func(filter user.UserFilter) (user.ListUserResponse, error)
}

func (f *fakeUserService) ListUsers(_ context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	return f.list(filter)
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	clockIn func(userID string) (attendance.AttendanceResponse, error)
}

func (f *fakeAttendanceService) ClockIn(_ context.Context, userID string) (attendance.AttendanceResponse, error) {
	return f.clockIn(userID)
}

type fakeVacationService struct {
	vacation.VacationService
	reject func(reviewerID, id string, req vacation.RejectVacationRequest) (vacation.VacationResponse, error)
}

func (f *fakeVacationService) RejectVacation(_ context.Context, reviewerID, id string, req vacation.RejectVacationRequest) (vacation.VacationResponse, error) {
	return f.reject(reviewerID, id, req)
}

type fakeProjectService struct {
	project.ProjectService
	export func(filter project.ReportFilter, format string, w io.Writer) (string, error)
	remove func(id string) error
}

func (f *fakeProjectService) DeleteProject(_ context.Context, id string) error {
	return f.remove(id)
}

func (f *fakeProjectService) ExportProjectReport(_ context.Context, filter project.ReportFilter, format string, w io.Writer) (string, error) {
	return f.export(filter, format, w)
}

type fakeNotifier struct {
	notification.Service
}

type testServices struct {
	auth       *fakeAuthService
	google     *fakeGoogle
	user       *fakeUserService
	attendance *fakeAttendanceService
	vacation   *fakeVacationService
	project    *fakeProjectService
}

func newTestServices() *testServices {
	return &testServices{
		auth:       &fakeAuthService{},
		google:     &fakeGoogle{},
		user:       &fakeUserService{},
		attendance: &fakeAttendanceService{},
		vacation:   &fakeVacationService{},
		project:    &fakeProjectService{},
	}
}

func newTestRouter(t *testing.T, s *testServices) (http.Handler, jwt.Service) {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h", "24h")
	handlers := Handlers{
		Auth:       NewAuthHandler(jwtService, s.auth, s.user, s.google, "http://localhost:3000"),
		User:       NewUserHandler(s.user),
		Attendance: NewAttendanceHandler(s.attendance),
		Exception:  NewExceptionHandler(struct{ exception.ExceptionService }{}),
		Vacation:   NewVacationHandler(s.vacation),
		Asset:      NewAssetHandler(struct{ asset.AssetService }{}),
		Supply:     NewSupplyHandler(struct{ supply.SupplyService }{}),
		Project:    NewProjectHandler(s.project),
		Event:      NewEventHandler(&fakeNotifier{}, jwtService),
	}
	cfg := RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test", Version: "test"}
	return NewRouter(cfg, jwtService, handlers), jwtService
}

func bearer(t *testing.T, jwtService jwt.Service, userID string, role user.Role) string {
	t.Helper()
	token, _, err := jwtService.GenerateAccessToken(userID, "someone@example.com", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(h http.Handler, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
