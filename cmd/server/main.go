package main

import (
	"attendance-service/internal/adapters/backend"
	"attendance-service/internal/adapters/cache"
	"attendance-service/internal/adapters/location"
	"attendance-service/internal/adapters/memory"
	"attendance-service/internal/adapters/repositories"
	"attendance-service/internal/adapters/session"
	"attendance-service/internal/api"
	"attendance-service/internal/config"
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/db"
	"attendance-service/internal/ports"
	"attendance-service/internal/services"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// storage is the set of ports one storage driver provides.
type storage struct {
	offices    ports.OfficeRepository
	employees  ports.EmployeeRepository
	shifts     ports.ShiftRepository
	attendance ports.AttendanceStore
	history    ports.AttendanceRepository
	fixCache   location.FixCache
	close      func() error
}

// main is the application composition root.
// It wires concrete adapters (storage, Redis, positioning) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	var revoker ports.TokenRevoker = memory.NewRevoker()
	fixCache := store.fixCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("run: ping redis %s: %w", cfg.Redis.Addr, err)
		}

		revoker = session.NewRedisRevoker(rdb)
		fixCache = cache.NewRedisFixCache(rdb)
		log.Printf("redis connected addr=%s", cfg.Redis.Addr)
	} else {
		log.Println("REDIS_ADDR not set; token revocations are kept in memory")
		if fixCache != nil {
			log.Println("Positioning fixes are cached in postgres")
		}
	}

	validatorOpts := []session.ValidatorOption{session.WithRevoker(revoker)}
	if cfg.Auth.JWTIssuer != "" {
		validatorOpts = append(validatorOpts, session.WithIssuer(cfg.Auth.JWTIssuer))
	}
	validator, err := session.NewJWTValidator(cfg.Auth.JWTSecret, validatorOpts...)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	var wifi func([]domain.AccessPoint) ports.LocationSensor
	if cfg.Google.APIKey != "" {
		var opts []location.GoogleOption
		if fixCache != nil && cfg.Location.FixCacheTTL > 0 {
			opts = append(opts, location.WithFixCache(fixCache, cfg.Location.FixCacheTTL))
		}
		google := location.NewGoogleGeolocationSensor(cfg.Google.APIKey, opts...)
		wifi = func(aps []domain.AccessPoint) ports.LocationSensor {
			return google.WithAccessPoints(aps)
		}
	}

	router := api.NewRouter(api.Deps{
		Offices:    store.offices,
		Employees:  store.employees,
		Shifts:     store.shifts,
		Attendance: store.attendance,
		History:    store.history,
		Sessions:   validator,
		Revoker:    revoker,
		WiFi:       wifi,
		Gate: services.GateConfig{
			RadiusMeters: cfg.Geofence.RadiusMeters,
			Location: domain.LocationOptions{
				HighAccuracy: cfg.Location.HighAccuracy,
				Timeout:      cfg.Location.Timeout,
				MaxCachedAge: cfg.Location.MaxCachedAge,
			},
		},
		CookieName: cfg.Auth.CookieName,
	})

	// Write timeout leaves room for a slow positioning provider and xlsx exports.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s storage=%s radius_m=%.0f", cfg.Port, cfg.Storage.Driver, cfg.Geofence.RadiusMeters)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("run: shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	seedPath := config.Get("SEED_PATH", "")

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		conn, err := db.Open(ctx, cfg.Storage.DatabaseURL, db.DefaultPool)
		if err != nil {
			return nil, err
		}
		if err := initAndSeed(conn, seedPath); err != nil {
			conn.Close()
			return nil, err
		}
		attendance := repositories.NewPostgresAttendanceStore(conn)
		return &storage{
			offices:    repositories.NewPostgresOfficeRepository(conn),
			employees:  repositories.NewPostgresEmployeeRepository(conn),
			shifts:     repositories.NewPostgresShiftRepository(conn),
			attendance: attendance,
			history:    attendance,
			fixCache:   cache.NewSQLFixCache(conn),
			close:      conn.Close,
		}, nil

	case config.DriverBackend:
		opts := []backend.Option{}
		if cfg.Storage.BackendToken != "" {
			opts = append(opts, backend.WithToken(cfg.Storage.BackendToken))
		}
		client, err := backend.NewClient(cfg.Storage.BackendURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &storage{
			offices:    client,
			employees:  client,
			shifts:     client,
			attendance: client,
			history:    client,
			close:      func() error { return nil },
		}, nil
	}

	mem := memory.NewStore()
	if seedPath != "" {
		if err := seedMemory(ctx, mem, seedPath); err != nil {
			return nil, err
		}
	}
	log.Println("Using in-memory storage; data is lost on restart")
	return &storage{
		offices:    mem,
		employees:  mem,
		shifts:     mem,
		attendance: mem,
		history:    mem,
		close:      func() error { return nil },
	}, nil
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if seedPath == "" {
		return nil
	}
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("Seeded database from %s", seedPath)
	return nil
}

// seedMemory loads the same seed file the dbtool uses into the in-memory store.
func seedMemory(ctx context.Context, mem *memory.Store, seedPath string) error {
	seed, err := repositories.LoadSeed(seedPath)
	if err != nil {
		return err
	}

	for _, o := range seed.Offices {
		office := &domain.Office{
			ID:          o.ID,
			Name:        o.Name,
			Address:     o.Address,
			Description: o.Description,
			Coordinates: domain.Coordinates{Lat: o.Latitude, Lon: o.Longitude},
		}
		if err := mem.CreateOffice(ctx, office); err != nil {
			return fmt.Errorf("seed memory: office %s: %w", o.ID, err)
		}
	}
	for _, sh := range seed.Shifts {
		in, _ := domain.ParseClockTime(sh.ClockIn)
		out, _ := domain.ParseClockTime(sh.ClockOut)
		if err := mem.CreateShift(ctx, &domain.Shift{ID: sh.ID, Name: sh.Name, ClockIn: in, ClockOut: out}); err != nil {
			return fmt.Errorf("seed memory: shift %s: %w", sh.ID, err)
		}
	}
	for _, e := range seed.Employees {
		employee := &domain.Employee{
			ID:       e.ID,
			Name:     e.Name,
			Position: e.Position,
			Contact:  e.Contact,
			OfficeID: e.OfficeID,
		}
		if err := mem.CreateEmployee(ctx, employee); err != nil {
			return fmt.Errorf("seed memory: employee %s: %w", e.ID, err)
		}
	}

	log.Printf("Seeded memory store from %s offices=%d shifts=%d employees=%d",
		seedPath, len(seed.Offices), len(seed.Shifts), len(seed.Employees))
	return nil
}
