package services

import (
	"attendance-service/internal/adapters/location"
	"attendance-service/internal/adapters/memory"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"errors"
	"testing"
	"time"
)

var hq = domain.Coordinates{Lat: -6.2, Lon: 106.8}

func newGateStore(t *testing.T) (*memory.Store, []domain.Office) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	o := &domain.Office{Name: "HQ", Address: "Jl. Sudirman 1", Coordinates: hq}
	if err := store.CreateOffice(ctx, o); err != nil {
		t.Fatalf("create office: %v", err)
	}
	e := &domain.Employee{ID: "EMP001", Name: "Sari", Position: "Staff", Contact: "081234567890", OfficeID: o.ID}
	if err := store.CreateEmployee(ctx, e); err != nil {
		t.Fatalf("create employee: %v", err)
	}

	offices, err := store.ListOffices(ctx)
	if err != nil {
		t.Fatalf("list offices: %v", err)
	}
	return store, offices
}

func gateConfig() GateConfig {
	return GateConfig{
		RadiusMeters: DefaultRadiusMeters,
		Location:     domain.LocationOptions{HighAccuracy: true, Timeout: time.Second},
	}
}

func fixAt(c domain.Coordinates) domain.Fix {
	return domain.Fix{Coordinates: c, AccuracyMeters: 5, CapturedAt: time.Now()}
}

func TestAttemptClockEvent_RecordsAtOffice(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := location.NewMockLocationSensor(fixAt(hq))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeRecorded {
		t.Fatalf("expected recorded, got %s (%s)", out.Kind, out.Message)
	}
	if out.Event == nil || out.Event.Kind != domain.ClockIn || out.Event.Coordinates != hq {
		t.Fatalf("unexpected event %+v", out.Event)
	}
	if out.NearestOffice == nil || out.NearestOffice.Name != "HQ" {
		t.Fatalf("expected nearest office HQ, got %+v", out.NearestOffice)
	}
	if store.Submissions() != 1 {
		t.Fatalf("expected 1 store call, got %d", store.Submissions())
	}
}

func TestAttemptClockEvent_ClockInThenOut(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := location.NewMockLocationSensor(fixAt(hq))
	ctx := context.Background()

	in := AttemptClockEvent(ctx, ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	out := AttemptClockEvent(ctx, ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockOut}, sensor, offices, store, gateConfig())
	if in.Kind != OutcomeRecorded || out.Kind != OutcomeRecorded {
		t.Fatalf("expected both recorded, got %s / %s", in.Kind, out.Kind)
	}
	if in.Event.ID != out.Event.ID {
		t.Fatalf("expected clock-out to close record %s, got %s", in.Event.ID, out.Event.ID)
	}

	recs, err := store.ListAttendances(ctx, domain.AttendanceFilter{EmployeeID: "EMP001"})
	if err != nil {
		t.Fatalf("list attendances: %v", err)
	}
	if len(recs) != 1 || recs[0].ClockOutAt == nil {
		t.Fatalf("expected one closed record, got %+v", recs)
	}
}

func TestAttemptClockEvent_NoOfficeConfigured(t *testing.T) {
	store := memory.NewStore()
	sensor := location.NewMockLocationSensor(fixAt(hq))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, nil, store, gateConfig())
	if out.Kind != OutcomeNoOfficeConfigured {
		t.Fatalf("expected no office configured, got %s", out.Kind)
	}
	if store.Submissions() != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.Submissions())
	}
}

func TestAttemptClockEvent_ZeroFixIsEvaluated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	o := &domain.Office{Name: "Null Island", Address: "Gulf of Guinea"}
	if err := store.CreateOffice(ctx, o); err != nil {
		t.Fatalf("create office: %v", err)
	}
	e := &domain.Employee{ID: "EMP009", Name: "Ayu", Position: "Staff", Contact: "081234567899", OfficeID: o.ID}
	if err := store.CreateEmployee(ctx, e); err != nil {
		t.Fatalf("create employee: %v", err)
	}
	offices, err := store.ListOffices(ctx)
	if err != nil {
		t.Fatalf("list offices: %v", err)
	}
	sensor := location.NewMockLocationSensor(fixAt(domain.Coordinates{}))

	out := AttemptClockEvent(ctx, ClockEventRequest{EmployeeID: "EMP009", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeRecorded {
		t.Fatalf("expected (0,0) fix to be recorded, got %s (%s)", out.Kind, out.Message)
	}
	if out.DistanceMeters != 0 {
		t.Fatalf("expected 0 m, got %.2f", out.DistanceMeters)
	}
	if store.Submissions() != 1 {
		t.Fatalf("expected 1 store call, got %d", store.Submissions())
	}
}

func TestAttemptClockEvent_TooFar(t *testing.T) {
	store, offices := newGateStore(t)
	// ~111 m south of HQ.
	sensor := location.NewMockLocationSensor(fixAt(domain.Coordinates{Lat: -6.201, Lon: 106.8}))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeTooFar {
		t.Fatalf("expected too far, got %s", out.Kind)
	}
	if out.DistanceMeters < 100 || out.DistanceMeters > 120 {
		t.Fatalf("expected ~111 m, got %.1f", out.DistanceMeters)
	}
	if out.NearestOffice == nil || out.NearestOffice.Name != "HQ" {
		t.Fatalf("expected nearest office HQ, got %+v", out.NearestOffice)
	}
	if store.Submissions() != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.Submissions())
	}
}

func TestAttemptClockEvent_SensorTimeout(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := &location.MockLocationSensor{Block: true}
	cfg := gateConfig()
	cfg.Location.Timeout = 20 * time.Millisecond

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, offices, store, cfg)
	if out.Kind != OutcomeLocationUnavailable || out.Reason != domain.Timeout {
		t.Fatalf("expected location unavailable (timeout), got %s (%s)", out.Kind, out.Reason)
	}
	if out.State != StateLocationFailed {
		t.Fatalf("expected state %s, got %s", StateLocationFailed, out.State)
	}
	if store.Submissions() != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.Submissions())
	}
	waitFor(t, sensor.Released)
}

func TestAttemptClockEvent_PermissionDenied(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := &location.MockLocationSensor{Err: domain.NewLocationError(domain.PermissionDenied, "denied")}

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeLocationUnavailable || out.Reason != domain.PermissionDenied {
		t.Fatalf("expected permission denied, got %s (%s)", out.Kind, out.Reason)
	}
}

func TestAttemptClockEvent_StoreError(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := location.NewMockLocationSensor(fixAt(hq))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP404", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeStoreError {
		t.Fatalf("expected store error, got %s", out.Kind)
	}
	if !errors.Is(out.Err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", out.Err)
	}
	if store.Submissions() != 1 {
		t.Fatalf("expected exactly one store call, got %d", store.Submissions())
	}
}

func TestAttemptClockEvent_ClockOutWithoutClockIn(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := location.NewMockLocationSensor(fixAt(hq))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "EMP001", Kind: domain.ClockOut}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeStoreError || !errors.Is(out.Err, ports.ErrNoOpenAttendance) {
		t.Fatalf("expected store error with ErrNoOpenAttendance, got %s (%v)", out.Kind, out.Err)
	}
}

func TestAttemptClockEvent_RejectsEmptyEmployee(t *testing.T) {
	store, offices := newGateStore(t)
	sensor := location.NewMockLocationSensor(fixAt(hq))

	out := AttemptClockEvent(context.Background(), ClockEventRequest{EmployeeID: "  ", Kind: domain.ClockIn}, sensor, offices, store, gateConfig())
	if out.Kind != OutcomeStoreError {
		t.Fatalf("expected store error, got %s", out.Kind)
	}
	if sensor.Calls() != 0 || store.Submissions() != 0 {
		t.Fatalf("expected neither sensor nor store to be used")
	}
}
