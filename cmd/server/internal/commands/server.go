package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/wolfeidau/offices/internal/auth"
	"github.com/wolfeidau/offices/internal/logger"
	"github.com/wolfeidau/offices/internal/office"
	"github.com/wolfeidau/offices/internal/seed"
	"github.com/wolfeidau/offices/internal/server"
	"github.com/wolfeidau/offices/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen  string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"OFFICES_LISTEN"`
	BaseURL string `help:"public base URL used for self, Location and next links, derived from each request when empty" default:"" env:"OFFICES_BASE_URL"`
	Cert    string `help:"path to TLS cert file, plain HTTP when empty" default:"" env:"OFFICES_TLS_CERT"`
	Key     string `help:"path to TLS key file" default:"" env:"OFFICES_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"OFFICES_CORS_ORIGINS"`

	// Authentication
	JWTPublicKey     string               `help:"PEM encoded ES256 public key used to verify bearer tokens" default:"" env:"OFFICES_JWT_PUBLIC_KEY"`
	JWTPublicKeyFile kong.FileContentFlag `help:"file holding the PEM encoded ES256 public key" env:"OFFICES_JWT_PUBLIC_KEY_FILE"`
	JWTIssuer        string               `help:"required iss claim, empty accepts any issuer" default:"${jwt_issuer}" env:"OFFICES_JWT_ISSUER"`

	// Development and operational modes
	NoAuth     bool   `help:"disable authentication for API endpoints (development only)" default:"false" env:"OFFICES_NO_AUTH"`
	DevSubject string `help:"subject every request is attributed to when --no-auth is set" default:"dev-user" env:"OFFICES_DEV_SUBJECT"`
	Tracing    bool   `help:"enable tracing" default:"false" env:"OFFICES_TRACING"`

	// Seed data
	SeedFile string `help:"YAML file of employees to load at startup" default:"" env:"OFFICES_SEED_FILE"`

	// Store configuration
	StoreType     string             `help:"store type" default:"memory" env:"OFFICES_STORE_TYPE" enum:"memory,badger,postgres,dynamodb"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	DynamoDBStore DynamoDBStoreFlags `embed:"" prefix:"dynamodb-"`
	BadgerStore   BadgerStoreFlags   `embed:"" prefix:"badger-"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{ServiceName: "offices-server", Version: globals.Version})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	authn, err := c.authenticator()
	if err != nil {
		return err
	}
	if c.NoAuth {
		log.Warn().Str("subject", c.DevSubject).Msg("Authentication is disabled (--no-auth). This should only be used in development!")
	}

	st, err := c.openStores(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	if c.SeedFile != "" {
		f, err := seed.LoadFile(c.SeedFile)
		if err != nil {
			return err
		}
		n, err := seed.Apply(ctx, st.employees, f, c.publicURL())
		if err != nil {
			return err
		}
		log.Info().Int("employees", n).Str("file", c.SeedFile).Msg("Seeded employees")
	}

	svc := office.NewService(st.offices, st.employees)
	handler := server.NewServer(svc, authn, c.BaseURL).Handler(log)

	handler = withCORS(c.CORSOrigins, handler)
	handler = gzhttp.GzipHandler(handler)

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("auth", !c.NoAuth).Bool("tls", c.Cert != "").Str("store", c.StoreType).Msg("Starting HTTP server")
		if c.Cert != "" {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (c *ServeCmd) authenticator() (auth.Authenticator, error) {
	if c.NoAuth {
		if c.DevSubject == "" {
			return nil, errors.New("a dev subject is required when authentication is disabled (--dev-subject)")
		}
		return auth.StaticSubject(c.DevSubject), nil
	}

	publicKey := c.JWTPublicKey
	if len(c.JWTPublicKeyFile) > 0 {
		publicKey = string(c.JWTPublicKeyFile)
	}
	if publicKey == "" {
		return nil, errors.New("a JWT public key is required (--jwt-public-key or --jwt-public-key-file), or use --no-auth")
	}

	return auth.NewJWTVerifierFromPEM(publicKey, c.JWTIssuer)
}

// publicURL is the address employee seed records link to.
func (c *ServeCmd) publicURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}

	scheme := "http"
	if c.Cert != "" {
		scheme = "https"
	}
	host := c.Listen
	if strings.HasPrefix(host, "0.0.0.0:") {
		host = "localhost" + strings.TrimPrefix(host, "0.0.0.0")
	}
	return scheme + "://" + host
}

// withCORS adds CORS support to the REST handler.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"Location", "ETag"},
	})
	return middleware.Handler(h)
}
