package backend

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithToken("secret"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsEmptyURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestListOffices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offices", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"hq","name":"HQ","address":"Jl. Sudirman 1","description":"Head office","latitude":-6.2,"longitude":106.8,"createdAt":"2026-01-01T00:00:00Z"}]`))
	})

	offices, err := c.ListOffices(context.Background())
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, "hq", offices[0].ID)
	assert.Equal(t, domain.Coordinates{Lat: -6.2, Lon: 106.8}, offices[0].Coordinates)
}

func TestGetsAreRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ListShifts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ClockIn(context.Background(), domain.ClockSubmission{EmployeeID: "EMP001", Kind: domain.ClockIn})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClockIn_SendsSubmission(t *testing.T) {
	var got clockJSON
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attendances", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"att-1","employeeId":"EMP001","clockIn":"2026-03-02T01:00:00Z","clockInLatitude":-6.2,"clockInLongitude":106.8}`))
	})

	sub := domain.ClockSubmission{EmployeeID: "EMP001", Kind: domain.ClockIn, Coordinates: domain.Coordinates{Lat: -6.2, Lon: 106.8}}
	ev, err := c.ClockIn(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, clockJSON{EmployeeID: "EMP001", Latitude: -6.2, Longitude: 106.8}, got)
	assert.Equal(t, "att-1", ev.ID)
	assert.Equal(t, domain.ClockIn, ev.Kind)
	assert.Equal(t, 2026, ev.RecordedAt.Year())
}

func TestClockOut_NoOpenAttendance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/attendances/clock-out", r.URL.Path)
		http.Error(w, `{"message":"no open attendance"}`, http.StatusNotFound)
	})

	_, err := c.ClockOut(context.Background(), domain.ClockSubmission{EmployeeID: "EMP001", Kind: domain.ClockOut})
	assert.ErrorIs(t, err, ports.ErrNoOpenAttendance)
}

func TestStatusMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/employees/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusConflict)
		}
	})

	_, err := c.GetEmployee(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = c.DeleteOffice(context.Background(), "hq")
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestListEmployees_FiltersByOffice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hq", r.URL.Query().Get("officeId"))
		_, _ = w.Write([]byte(`[{"id":"EMP001","name":"Sari","position":"Staff","contact":"081234567890","officeId":"hq"}]`))
	})

	emps, err := c.ListEmployees(context.Background(), "hq")
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "hq", emps[0].OfficeID)
}

func TestListAttendances_DecodesOpenAndClosedRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EMP001", r.URL.Query().Get("employeeId"))
		_, _ = w.Write([]byte(`[
			{"id":"a2","employeeId":"EMP001","clockIn":"2026-03-03T01:00:00Z","clockInLatitude":-6.2,"clockInLongitude":106.8},
			{"id":"a1","employeeId":"EMP001","clockIn":"2026-03-02T01:00:00Z","clockInLatitude":-6.2,"clockInLongitude":106.8,
			 "clockOut":"2026-03-02T09:00:00Z","clockOutLatitude":-6.2,"clockOutLongitude":106.8}
		]`))
	})

	recs, err := c.ListAttendances(context.Background(), domain.AttendanceFilter{EmployeeID: "EMP001"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].ClockOutAt)
	require.NotNil(t, recs[1].ClockOutPos)
	assert.Equal(t, -6.2, recs[1].ClockOutPos.Lat)
}
