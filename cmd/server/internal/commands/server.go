package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/httpapi"
	"github.com/emplix/emplix/internal/logger"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/storage"
	"github.com/emplix/emplix/internal/store"
	postgresstore "github.com/emplix/emplix/internal/store/postgres"
	"github.com/emplix/emplix/internal/tenant"
)

type ServerCmd struct {
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"EMPLIX_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"EMPLIX_CORS_ORIGINS"`

	// Session configuration
	SessionSecret string `help:"secret key for HMAC signing of session tokens" env:"EMPLIX_SESSION_SECRET"`

	// Federated login configuration; all three must be set to enable it
	EntraJWKSURL  string `help:"JWKS endpoint of the external identity provider" default:"" env:"EMPLIX_ENTRA_JWKS_URL"`
	EntraAudience string `help:"expected audience of external identity tokens" default:"" env:"EMPLIX_ENTRA_AUDIENCE"`
	EntraIssuer   string `help:"expected issuer of external identity tokens" default:"" env:"EMPLIX_ENTRA_ISSUER"`

	// Rate limiting
	RateLimit float64 `help:"per-tenant request rate per second" default:"25" env:"EMPLIX_RATE_LIMIT"`
	RateBurst int     `help:"per-tenant burst size" default:"50" env:"EMPLIX_RATE_BURST"`

	// Document storage
	StorageDir string `help:"directory for stored documents" default:"data/objects" env:"EMPLIX_STORAGE_DIR"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"EMPLIX_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// ConnectTimeout bounds the startup retry loop.
	ConnectTimeout time.Duration `help:"how long to retry the initial database connection" default:"30s"`
}

func (c *ServerCmd) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 bytes (256 bits) for HMAC-SHA256 (--session-secret or EMPLIX_SESSION_SECRET)")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	var (
		tenants     store.TenantStore
		users       store.UserStore
		employees   store.EmployeeStore
		attendances store.AttendanceStore
		requests    store.RequestStore
		kudos       store.KudoStore
		documents   store.DocumentStore
	)

	switch c.StoreType {
	case "postgres":
		pool, err := c.connectPostgres(ctx)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		tenants = postgresstore.NewTenantStore(pool)
		users = postgresstore.NewUserStore(pool)
		employees = postgresstore.NewEmployeeStore(pool)
		attendances = postgresstore.NewAttendanceStore(pool)
		requests = postgresstore.NewRequestStore(pool)
		kudos = postgresstore.NewKudoStore(pool)
		documents = postgresstore.NewDocumentStore(pool)

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		tenants = store.NewMemoryTenantStore()
		employeeStore := store.NewMemoryEmployeeStore()
		employees = employeeStore
		users = store.NewMemoryUserStore(employeeStore)
		attendances = store.NewMemoryAttendanceStore()
		requests = store.NewMemoryRequestStore(employeeStore)
		kudos = store.NewMemoryKudoStore(employeeStore)
		documents = store.NewMemoryDocumentStore()

		log.Info().Msg("Using in-memory stores")
	}

	var verifier *auth.FederatedVerifier
	if c.EntraJWKSURL != "" && c.EntraAudience != "" && c.EntraIssuer != "" {
		verifier = auth.NewFederatedVerifier(c.EntraJWKSURL, c.EntraAudience, c.EntraIssuer, nil)
		log.Info().Str("issuer", c.EntraIssuer).Msg("Federated login enabled")
	}

	objects, err := storage.NewLocalStorage(c.StorageDir, []byte(c.SessionSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize document storage: %w", err)
	}

	kudoService, err := service.NewKudoService(kudos, employees)
	if err != nil {
		return err
	}

	secret := []byte(c.SessionSecret)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:        log,
		Resolver:      tenant.NewResolver(tenants),
		SessionSecret: secret,
		RateLimiter:   httpapi.NewRateLimiter(c.RateLimit, c.RateBurst),
		Auth:          httpapi.NewAuthHandler(service.NewAuthService(users, employees, secret, verifier)),
		Attendance:    httpapi.NewAttendanceHandler(service.NewAttendanceService(attendances, employees)),
		Requests:      httpapi.NewRequestHandler(service.NewRequestService(requests, employees)),
		Kudos:         httpapi.NewKudoHandler(kudoService),
		Employees:     httpapi.NewEmployeeHandler(service.NewEmployeeService(users, employees)),
		Documents:     httpapi.NewDocumentHandler(service.NewDocumentService(documents, employees, objects), objects),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", tenant.HeaderSlug},
		AllowCredentials: true,
	}).Handler(router)

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connectPostgres retries the initial connection with exponential backoff so
// the server survives the database coming up after it.
func (c *ServerCmd) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := &postgresstore.PoolConfig{
		ConnString:      c.PostgresStore.ConnString,
		MaxConns:        c.PostgresStore.MaxConns,
		MinConns:        c.PostgresStore.MinConns,
		MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
		MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
	}

	return backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		return postgresstore.NewPool(ctx, cfg)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.PostgresStore.ConnectTimeout),
	)
}
