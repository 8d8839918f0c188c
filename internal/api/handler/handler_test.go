package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.BindGin(); err != nil {
		panic(err)
	}
}

const testScheduleID = "7b0f7a52-3c1e-4f0e-9a51-2d7f1c9c1a11"

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.LoginResult
	loginErr      error
	refreshResult *dto.AccessTokenResponse
	refreshErr    error
	logoutMsg     string
	logoutErr     error

	gotRefresh string
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResult, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, token string) (*dto.AccessTokenResponse, error) {
	m.gotRefresh = token
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, token string) (string, error) {
	m.gotRefresh = token
	return m.logoutMsg, m.logoutErr
}

// ── Mock RosterService / ExportService ──

type mockRosterService struct {
	createResult *dto.RosterResponse
	createErr    error
	listResult   []dto.RosterResponse
	listErr      error

	gotCreate *dto.CreateRosterRequest
}

func (m *mockRosterService) Create(_ context.Context, req *dto.CreateRosterRequest, _ string) (*dto.RosterResponse, error) {
	m.gotCreate = req
	return m.createResult, m.createErr
}
func (m *mockRosterService) ListMine(_ context.Context, _ string) ([]dto.RosterResponse, error) {
	return m.listResult, m.listErr
}

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
	calendar []byte
}

func (m *mockExportService) ExportRoster(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCalendar(_ context.Context, _ string) ([]byte, error) {
	return m.calendar, m.err
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	createResult *dto.ScheduleResponse
	createErr    error
	updateResult *dto.ScheduleResponse
	updateErr    error
	deleteMsg    string
	deleteErr    error
	listResult   []dto.ScheduleResponse
	listErr      error

	gotUpdate *dto.UpdateScheduleRequest
}

func (m *mockScheduleService) Create(_ context.Context, _ *dto.CreateScheduleRequest, _ string) (*dto.ScheduleResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockScheduleService) Update(_ context.Context, _ string, req *dto.UpdateScheduleRequest, _ string) (*dto.ScheduleResponse, error) {
	m.gotUpdate = req
	return m.updateResult, m.updateErr
}
func (m *mockScheduleService) Delete(_ context.Context, _ string, _ string) (string, error) {
	return m.deleteMsg, m.deleteErr
}
func (m *mockScheduleService) ListMine(_ context.Context, _ string) ([]dto.ScheduleResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	checkInResult *dto.AttendanceResponse
	checkInErr    error

	gotImage *service.ImageUpload
}

func (m *mockAttendanceService) CreateAttendance(_ context.Context, _ string, _ *service.ImageUpload, _ string) (*model.Attendance, error) {
	return nil, nil
}
func (m *mockAttendanceService) CheckIn(_ context.Context, _ string, image *service.ImageUpload, _ string) (*dto.AttendanceResponse, error) {
	m.gotImage = image
	return m.checkInResult, m.checkInErr
}
func (m *mockAttendanceService) ListMine(_ context.Context, _ string) ([]dto.AttendanceResponse, error) {
	return nil, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withUser 模拟 JWT 中间件注入 user_id
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.LoginResult{AccessToken: "test-access-token", RefreshToken: "test-refresh-token", ExpiresIn: 300},
	}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.POST("/users/login", h.Login)

	req := httptest.NewRequest("POST", "/users/login", jsonBody(dto.LoginRequest{Email: "maya@example.com", Password: "pw"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("test-refresh-token")) {
		t.Error("refresh token must not appear in the body")
	}

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			found = true
			if c.Value != "test-refresh-token" || !c.HttpOnly {
				t.Errorf("unexpected cookie: %+v", c)
			}
		}
	}
	if !found {
		t.Error("expected refresh_token cookie to be set")
	}
}

func TestAuthHandler_Login_BadEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)
	r := gin.New()
	r.POST("/users/login", h.Login)

	req := httptest.NewRequest("POST", "/users/login", jsonBody(map[string]string{"email": "nope", "password": "pw"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Details != "Enter a valid email address." {
		t.Errorf("unexpected details: %q", resp.Details)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)
	r := gin.New()
	r.POST("/users/login", h.Login)

	req := httptest.NewRequest("POST", "/users/login", jsonBody(dto.LoginRequest{Email: "maya@example.com", Password: "wrong"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "No active account found with the given credentials" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestAuthHandler_Refresh_FromCookie(t *testing.T) {
	mock := &mockAuthService{refreshResult: &dto.AccessTokenResponse{AccessToken: "new-access", ExpiresIn: 300}}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.GET("/users/login/refresh", h.RefreshToken)

	req := httptest.NewRequest("GET", "/users/login/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotRefresh != "cookie-refresh" {
		t.Errorf("expected token from cookie, got %q", mock.gotRefresh)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)
	r := gin.New()
	r.GET("/users/login/refresh", h.RefreshToken)

	w := serve(r, httptest.NewRequest("GET", "/users/login/refresh", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Refresh_Blacklisted(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenBlacklisted}, nil)
	r := gin.New()
	r.GET("/users/login/refresh", h.RefreshToken)

	req := httptest.NewRequest("GET", "/users/login/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_FromBody(t *testing.T) {
	mock := &mockAuthService{logoutMsg: "User logged out successfully."}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.POST("/users/logout", withUser("u-1"), h.Logout)

	req := httptest.NewRequest("POST", "/users/logout", jsonBody(dto.RefreshTokenRequest{RefreshToken: "body-refresh"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotRefresh != "body-refresh" {
		t.Errorf("expected token from body, got %q", mock.gotRefresh)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("User logged out successfully.")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestAuthHandler_Logout_AlreadyBlacklisted(t *testing.T) {
	mock := &mockAuthService{logoutErr: pkgerrors.NewValidation("Token is already black listed.")}
	h := NewAuthHandler(mock, nil)
	r := gin.New()
	r.POST("/users/logout", withUser("u-1"), h.Logout)

	req := httptest.NewRequest("POST", "/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Token is already black listed." {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)
	r := gin.New()
	r.POST("/users/logout", h.Logout)

	w := serve(r, httptest.NewRequest("POST", "/users/logout", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RosterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRosterHandler_Create_Success(t *testing.T) {
	mock := &mockRosterService{createResult: &dto.RosterResponse{ID: "r-1", Title: "Morning Crew", IsActive: true}}
	h := NewRosterHandler(mock, &mockExportService{})
	r := gin.New()
	r.POST("/rosters", withUser("mgr-1"), h.Create)

	body := map[string]interface{}{
		"title": "Morning Crew",
		"roster_user_schedules": []map[string]string{{
			"user": testScheduleID, "working_day": "Monday", "shift": "Morning Shift",
			"start_time": "09:00", "end_time": "17:00",
		}},
	}
	req := httptest.NewRequest("POST", "/rosters", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotCreate == nil || len(mock.gotCreate.RosterUserSchedules) != 1 {
		t.Error("request should reach the service")
	}
}

func TestRosterHandler_Create_InvalidLabel(t *testing.T) {
	mock := &mockRosterService{}
	h := NewRosterHandler(mock, &mockExportService{})
	r := gin.New()
	r.POST("/rosters", withUser("mgr-1"), h.Create)

	body := map[string]interface{}{
		"title": "Morning Crew",
		"roster_user_schedules": []map[string]string{{
			"user": testScheduleID, "working_day": "Funday", "shift": "Morning Shift",
			"start_time": "09:00", "end_time": "17:00",
		}},
	}
	req := httptest.NewRequest("POST", "/rosters", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotCreate != nil {
		t.Error("invalid request must not reach the service")
	}
	if resp := parseResponse(w); resp.Details != "Invalid working_day" {
		t.Errorf("unexpected details: %q", resp.Details)
	}
}

func TestRosterHandler_Create_IntegrityError(t *testing.T) {
	mock := &mockRosterService{createErr: pkgerrors.NewIntegrity("Roster user schedule with this Roster, User, Working day and Shift already exists.", nil)}
	h := NewRosterHandler(mock, &mockExportService{})
	r := gin.New()
	r.POST("/rosters", withUser("mgr-1"), h.Create)

	req := httptest.NewRequest("POST", "/rosters", jsonBody(map[string]interface{}{
		"title": "Dup", "roster_user_schedules": []map[string]string{},
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRosterHandler_Export(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "roster_Front_Desk.xlsx"}
	h := NewRosterHandler(&mockRosterService{}, mock)
	r := gin.New()
	r.GET("/rosters/:id/export", withUser("mgr-1"), h.Export)

	w := serve(r, httptest.NewRequest("GET", "/rosters/"+testScheduleID+"/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''roster_Front_Desk.xlsx" {
		t.Errorf("unexpected disposition: %s", cd)
	}
}

func TestRosterHandler_Export_NotFound(t *testing.T) {
	h := NewRosterHandler(&mockRosterService{}, &mockExportService{err: service.ErrRosterNotFound})
	r := gin.New()
	r.GET("/rosters/:id/export", withUser("mgr-1"), h.Export)

	for _, id := range []string{"not-a-uuid", testScheduleID} {
		w := serve(r, httptest.NewRequest("GET", "/rosters/"+id+"/export", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("id=%s: expected 404, got %d", id, w.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_Create_NoManager(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{createErr: service.ErrRosterManagerNotFound}, &mockExportService{})
	r := gin.New()
	r.POST("/schedules", withUser("mgr-1"), h.Create)

	req := httptest.NewRequest("POST", "/schedules", jsonBody(map[string]string{
		"roster": testScheduleID, "user": testScheduleID, "working_day": "Monday",
		"shift": "Evening Shift", "start_time": "14:00:00", "end_time": "22:00:00",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Message != "Roster manager not found" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestScheduleHandler_Update_PartialBody(t *testing.T) {
	mock := &mockScheduleService{updateResult: &dto.ScheduleResponse{ID: testScheduleID, Shift: "Evening Shift"}}
	h := NewScheduleHandler(mock, &mockExportService{})
	r := gin.New()
	r.PUT("/schedules/:id", withUser("mgr-1"), h.Update)

	req := httptest.NewRequest("PUT", "/schedules/"+testScheduleID, jsonBody(map[string]string{"shift": "Evening Shift"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotUpdate.Shift == nil || *mock.gotUpdate.Shift != "Evening Shift" {
		t.Error("shift should be passed through")
	}
	if mock.gotUpdate.User != nil || mock.gotUpdate.StartTime != nil {
		t.Error("unsupplied fields must stay nil")
	}
}

func TestScheduleHandler_Update_NotFound(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{updateErr: service.ErrScheduleNotFound}, &mockExportService{})
	r := gin.New()
	r.PUT("/schedules/:id", withUser("mgr-1"), h.Update)

	req := httptest.NewRequest("PUT", "/schedules/"+testScheduleID, jsonBody(map[string]string{"shift": "Evening Shift"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Roster user schedule not found" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestScheduleHandler_Delete(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{deleteMsg: "Roster user schedule deleted successfully"}, &mockExportService{})
	r := gin.New()
	r.DELETE("/schedules/:id", withUser("mgr-1"), h.Delete)

	w := serve(r, httptest.NewRequest("DELETE", "/schedules/"+testScheduleID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	w = serve(r, httptest.NewRequest("DELETE", "/schedules/bogus", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for malformed id, got %d", w.Code)
	}
}

func TestScheduleHandler_Calendar(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{}, &mockExportService{calendar: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")})
	r := gin.New()
	r.GET("/schedules/calendar", withUser("staff-1"), h.Calendar)

	w := serve(r, httptest.NewRequest("GET", "/schedules/calendar", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("BEGIN:VCALENDAR")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestAttendanceHandler_CheckIn_Success(t *testing.T) {
	mock := &mockAttendanceService{checkInResult: &dto.AttendanceResponse{ID: "a-1"}}
	h := NewAttendanceHandler(mock, 5*1024*1024)
	r := gin.New()
	r.POST("/attendance", withUser("staff-1"), h.CheckIn)

	body, ct := multipartBody(t, map[string]string{"roster_user_schedule": testScheduleID}, "image", "me.png", []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/attendance", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotImage == nil || mock.gotImage.Filename != "me.png" || string(mock.gotImage.Data) != "png-bytes" {
		t.Errorf("upload not passed through: %+v", mock.gotImage)
	}
}

func TestAttendanceHandler_CheckIn_MissingImage(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock, 5*1024*1024)
	r := gin.New()
	r.POST("/attendance", withUser("staff-1"), h.CheckIn)

	body, ct := multipartBody(t, map[string]string{"roster_user_schedule": testScheduleID}, "", "", nil)
	req := httptest.NewRequest("POST", "/attendance", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotImage != nil {
		t.Error("service must not be called")
	}
}

func TestAttendanceHandler_CheckIn_ValidationError(t *testing.T) {
	mock := &mockAttendanceService{checkInErr: pkgerrors.NewValidation("Max file size limit is 5 MB.")}
	h := NewAttendanceHandler(mock, 5*1024*1024)
	r := gin.New()
	r.POST("/attendance", withUser("staff-1"), h.CheckIn)

	body, ct := multipartBody(t, map[string]string{"roster_user_schedule": testScheduleID}, "image", "big.png", []byte("x"))
	req := httptest.NewRequest("POST", "/attendance", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Max file size limit is 5 MB." {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}
