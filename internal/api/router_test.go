package api

import (
	"attendance-service/internal/adapters/location"
	"attendance-service/internal/adapters/memory"
	"attendance-service/internal/adapters/session"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"attendance-service/internal/services"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSecret = "test-secret"

var hqPos = domain.Coordinates{Lat: -6.2, Lon: 106.8}

type fixture struct {
	store *memory.Store
	wifi  *location.MockLocationSensor
	aps   []domain.AccessPoint
	hq    domain.Office
	h     http.Handler
}

func newFixture(t *testing.T, withOffice bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	revoker := memory.NewRevoker()
	validator, err := session.NewJWTValidator(testSecret, session.WithRevoker(revoker))
	require.NoError(t, err)

	f := &fixture{
		store: store,
		wifi:  location.NewMockLocationSensor(domain.Fix{Coordinates: hqPos, AccuracyMeters: 20}),
	}
	f.h = NewRouter(Deps{
		Offices:    store,
		Employees:  store,
		Shifts:     store,
		Attendance: store,
		History:    store,
		Sessions:   validator,
		Revoker:    revoker,
		WiFi: func(aps []domain.AccessPoint) ports.LocationSensor {
			f.aps = aps
			return f.wifi
		},
		Gate: services.GateConfig{
			RadiusMeters: 30,
			Location:     domain.LocationOptions{Timeout: time.Second},
		},
		CookieName: "authToken",
	})

	if withOffice {
		ctx := context.Background()
		f.hq = domain.Office{Name: "HQ", Address: "Jl. Sudirman 1", Description: "Head office", Coordinates: hqPos}
		require.NoError(t, store.CreateOffice(ctx, &f.hq))
		require.NoError(t, store.CreateEmployee(ctx, &domain.Employee{
			ID: "EMP001", Name: "Sari", Position: "Staff", Contact: "081234567890", OfficeID: f.hq.ID,
		}))
	}
	return f
}

func signToken(t *testing.T, id string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        id,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func clockBody(employeeID string, pos domain.Coordinates) map[string]any {
	return map[string]any{
		"employee_id": employeeID,
		"location":    map[string]any{"latitude": pos.Lat, "longitude": pos.Lon, "accuracy": 8},
	}
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", rec.Header().Get(requestIDHeader))

	rec = f.do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeBody(t, rec)["error"])
}

func TestOffices_PublicReadProtectedWrite(t *testing.T) {
	f := newFixture(t, true)
	office := map[string]any{
		"name": "Branch", "address": "Jl. Thamrin 10", "description": "Branch office",
		"latitude": -6.19, "longitude": 106.82,
	}

	rec := f.do(t, http.MethodGet, "/offices", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["offices"], 1)

	rec = f.do(t, http.MethodPost, "/offices", office, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/offices", office, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := signToken(t, "tok-1")
	rec = f.do(t, http.MethodPost, "/offices", office, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["id"].(string)

	office["name"] = "Branch East"
	rec = f.do(t, http.MethodPut, "/offices/"+id, office, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Branch East", decodeBody(t, rec)["name"])

	rec = f.do(t, http.MethodDelete, "/offices/"+id, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/offices/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/offices/"+f.hq.ID, nil, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOffices_Validation(t *testing.T) {
	f := newFixture(t, false)
	token := signToken(t, "tok-1")

	rec := f.do(t, http.MethodPost, "/offices", map[string]any{
		"name": "A", "address": "Jl. Sudirman 1", "description": "Head office",
		"latitude": 91, "longitude": 106.8,
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeBody(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "latitude")
	assert.NotContains(t, fields, "longitude")

	rec = f.do(t, http.MethodPost, "/offices", `{"nme":"HQ"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json body", decodeBody(t, rec)["error"])

	rec = f.do(t, http.MethodPost, "/offices", map[string]any{
		"name": "HQ", "address": "Jl. Sudirman 1", "description": "Head office", "longitude": 106.8,
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decodeBody(t, rec)["fields"].(map[string]any)["latitude"])
}

func TestEmployeesAndShifts(t *testing.T) {
	f := newFixture(t, true)
	token := signToken(t, "tok-1")

	rec := f.do(t, http.MethodPost, "/employees", map[string]any{
		"name": "Budi", "position": "Manager", "contact": "081234567891", "office_id": f.hq.ID,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/employees", map[string]any{
		"name": "Budi", "position": "Manager", "contact": "0812", "office_id": "missing",
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["fields"], "contact")

	rec = f.do(t, http.MethodPost, "/employees", map[string]any{
		"name": "Budi", "position": "Manager", "contact": "081234567891", "office_id": "missing",
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/employees?office_id="+f.hq.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["employees"], 2)

	rec = f.do(t, http.MethodGet, "/offices/"+f.hq.ID+"/employees", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["employees"], 2)

	rec = f.do(t, http.MethodGet, "/offices/unknown/employees", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/shifts", map[string]any{"name": "Pagi", "clock_in": "08:00", "clock_out": "16:00"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	shift := decodeBody(t, rec)
	assert.Equal(t, "08:00", shift["clock_in"])

	rec = f.do(t, http.MethodPost, "/shifts", map[string]any{"name": "Malam", "clock_in": "22:00", "clock_out": "6:00"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be a time of day as HH:mm", decodeBody(t, rec)["fields"].(map[string]any)["clock_out"])

	rec = f.do(t, http.MethodDelete, "/shifts/"+shift["id"].(string), nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func rosterUpload(t *testing.T, rows [][]any) *http.Request {
	t.Helper()
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, wb.SetSheetRow(sheet, cell, &r))
	}
	data, err := wb.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/employees/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestEmployeesImport(t *testing.T) {
	f := newFixture(t, true)

	req := rosterUpload(t, [][]any{
		{"ID", "Nama", "Jabatan", "Kontak", "Office ID"},
		{"EMP010", "Rina", "Staff", "081200000010", f.hq.ID},
		{"EMP011", "Dodi", "Staff", "123", f.hq.ID},
		{"EMP012", "Tono", "Staff", "081200000012", "nowhere"},
		{"EMP001", "Sari", "Staff", "081234567890", f.hq.ID},
	})
	req.Header.Set("Authorization", "Bearer "+signToken(t, "tok-1"))
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		Created []map[string]any `json:"created"`
		Errors  []struct {
			Line  int    `json:"line"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Len(t, res.Created, 1)
	assert.Equal(t, "EMP010", res.Created[0]["id"])
	require.Len(t, res.Errors, 3)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Error, "contact")
	assert.Equal(t, "office does not exist", res.Errors[1].Error)
	assert.Equal(t, "employee id already exists", res.Errors[2].Error)
}

func TestEmployeesImport_RejectsMissingFile(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodPost, "/employees/import", nil, signToken(t, "tok-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClock_RecordedInThenOut(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP001", hqPos), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "recorded", body["outcome"])
	assert.Equal(t, "HQ", body["nearest_office"].(map[string]any)["name"])
	assert.Equal(t, "clock_in", body["attendance"].(map[string]any)["kind"])
	assert.True(t, strings.HasSuffix(body["attendance"].(map[string]any)["recorded_wib"].(string), " WIB"))

	rec = f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP001", hqPos), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "store_error", decodeBody(t, rec)["outcome"])

	rec = f.do(t, http.MethodPost, "/attendances/clock-out", clockBody("EMP001", hqPos), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "clock_out", decodeBody(t, rec)["attendance"].(map[string]any)["kind"])

	rec = f.do(t, http.MethodPost, "/attendances/clock-out", clockBody("EMP001", hqPos), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	token := signToken(t, "tok-1")
	rec = f.do(t, http.MethodGet, "/attendances?employee_id=EMP001", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["attendances"].([]any)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].(map[string]any)["clock_out_wib"])

	rec = f.do(t, http.MethodGet, "/attendances/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentTypeForTest, rec.Header().Get("Content-Type"))
	wb, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"EMP001", "Sari"}, rows[1][:2])
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestClock_Rejections(t *testing.T) {
	f := newFixture(t, true)
	store := f.store

	rec := f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP001", domain.Coordinates{Lat: -6.199, Lon: 106.8}), "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "too_far", body["outcome"])
	assert.Equal(t, 30.0, body["radius_meters"])
	assert.InDelta(t, 111.2, body["distance_meters"].(float64), 1)

	rec = f.do(t, http.MethodPost, "/attendances/clock-in", map[string]any{
		"employee_id":    "EMP001",
		"location_error": map[string]any{"code": 1, "message": "User denied Geolocation"},
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "permission_denied", decodeBody(t, rec)["reason"])

	rec = f.do(t, http.MethodPost, "/attendances/clock-in", map[string]any{"employee_id": "EMP001"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unsupported", decodeBody(t, rec)["reason"])

	rec = f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP404", hqPos), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "store_error", decodeBody(t, rec)["outcome"])

	rec = f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("E1", hqPos), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Only the unknown employee reached the store.
	assert.Equal(t, 1, store.Submissions())
}

func TestClock_NoOfficeConfigured(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP001", hqPos), "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_office_configured", decodeBody(t, rec)["outcome"])
	assert.Zero(t, f.store.Submissions())
}

func TestClock_WiFiPositioning(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/attendances/clock-in", map[string]any{
		"employee_id": "EMP001",
		"wifi_access_points": []map[string]any{
			{"mac_address": "00:11:22:33:44:55", "signal_strength": -60},
			{"mac_address": "66:77:88:99:aa:bb", "signal_strength": -71},
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.wifi.Calls())
	require.Len(t, f.aps, 2)
	assert.Equal(t, -71, f.aps[1].SignalStrength)

	rec = f.do(t, http.MethodPost, "/attendances/clock-out", map[string]any{
		"employee_id":        "EMP001",
		"wifi_access_points": []map[string]any{{"mac_address": "not-a-mac"}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceList_BadFilter(t *testing.T) {
	f := newFixture(t, true)
	token := signToken(t, "tok-1")

	rec := f.do(t, http.MethodGet, "/attendances?from=yesterday", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/attendances?from=2026-03-05&to=2026-03-01", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/attendances?from=2026-03-01&to=2026-03-01", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/attendances/clock-in", clockBody("EMP001", hqPos), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/dashboard/stats", nil, signToken(t, "tok-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 1.0, body["employees"])
	assert.Equal(t, 1.0, body["offices"])
	assert.Equal(t, 1.0, body["present_today"])
	assert.Equal(t, 1.0, body["clocked_in_now"])

	days := body["last_seven_days"].([]any)
	require.Len(t, days, 7)
	assert.Equal(t, 1.0, days[6].(map[string]any)["count"])
}

func TestSessionCookieAndLogout(t *testing.T) {
	f := newFixture(t, false)
	token := signToken(t, "tok-logout")

	withCookie := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		return rec
	}

	rec := withCookie(http.MethodGet, "/auth/session")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decodeBody(t, rec)["subject"])

	rec = withCookie(http.MethodPost, "/auth/logout")
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authToken", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)

	rec = withCookie(http.MethodGet, "/auth/session")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

type failingValidator struct{}

func (failingValidator) Validate(context.Context, string) (*domain.Session, error) {
	return nil, context.DeadlineExceeded
}

func TestRequireSession_BackendFailureIs503(t *testing.T) {
	h := requireSession(failingValidator{}, "authToken")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
