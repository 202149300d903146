package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/questly/auth-service/internal/handlers"
	"github.com/questly/auth-service/internal/jwt"
	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/middlewares"
	"github.com/questly/auth-service/internal/migrations"
	"github.com/questly/auth-service/internal/notifiers"
	"github.com/questly/auth-service/internal/oauth"
	"github.com/questly/auth-service/internal/repositories"
	"github.com/questly/auth-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds all environment-provided settings.
type config struct {
	appHost  string
	appPort  string
	logLevel string

	pgHost         string
	pgPort         int
	pgUser         string
	pgPassword     string
	pgDB           string
	pgMaxOpenConns int
	pgMaxIdleConns int

	jwtSecretKey string
	jwtExpSecond int

	googleClientID string
	appleClientID  string

	kafkaBrokers []string
	kafkaTopic   string
}

// @title auth-service API
// @version 1.0.0
// @description Authentication and account-recovery service: local credentials, Google/Apple sign-in, password reset
// @host localhost:8080
// @BasePath /api/auth
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, database, JWT, provider, and Kafka configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	cfg.appHost = getEnv("APP_HOST", "localhost")
	cfg.appPort = getEnv("APP_PORT", "8080")
	cfg.logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.pgHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.pgUser = getEnv("POSTGRES_USER", "user")
	cfg.pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.pgDB = getEnv("POSTGRES_DB", "database")
	if cfg.pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if cfg.pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if cfg.pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// JWT config
	cfg.jwtSecretKey = getEnv("JWT_SECRET_KEY", "")
	if cfg.jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	// Federated provider config
	cfg.googleClientID = getEnv("GOOGLE_CLIENT_ID", "")
	cfg.appleClientID = getEnv("APPLE_CLIENT_ID", "")

	// Kafka config
	cfg.kafkaBrokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	cfg.kafkaTopic = getEnv("KAFKA_NOTIFICATIONS_TOPIC", "notifications")

	return
}

// run initializes the logger, database, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.logLevel)

	// A missing signing secret is a fatal misconfiguration, not something to
	// discover on the first login request.
	if cfg.jwtSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.pgUser, cfg.pgPassword, cfg.pgHost, cfg.pgPort, cfg.pgDB)
	logger.Log.Infof("Connecting to PostgreSQL: %s:%d/%s", cfg.pgHost, cfg.pgPort, cfg.pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.pgMaxOpenConns)
	db.SetMaxIdleConns(cfg.pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Apply schema migrations
	if err := migrations.Up(ctx, db); err != nil {
		logger.Log.Errorw("migrations failed", "error", err)
		return err
	}

	// Kafka writer for the email worker topic
	kafkaWriter := notifiers.NewKafkaWriter(cfg.kafkaBrokers, cfg.kafkaTopic)
	defer kafkaWriter.Close()

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.jwtSecretKey),
		jwt.WithExpiration(time.Duration(cfg.jwtExpSecond)*time.Second),
	)

	// Federated provider verifiers, each with its own key cache
	googleVerifier := oauth.NewVerifier(
		oauth.NewJWKSCache(oauth.GoogleJWKSURL),
		cfg.googleClientID,
		oauth.GoogleIssuers...,
	)
	appleVerifier := oauth.NewVerifier(
		oauth.NewJWKSCache(oauth.AppleJWKSURL),
		cfg.appleClientID,
		oauth.AppleIssuer,
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens)
	resetService := services.NewResetService(userReadRepo, userWriteRepo,
		notifiers.NewResetCodeNotifier(kafkaWriter))
	oauthService := services.NewOAuthService(userReadRepo, userWriteRepo, tokens,
		googleVerifier, appleVerifier)

	// Initialize handlers
	signupHandler := handlers.NewSignupHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	forgotPasswordHandler := handlers.NewForgotPasswordHandler(resetService)
	verifyCodeHandler := handlers.NewVerifyCodeHandler(resetService)
	resetPasswordHandler := handlers.NewResetPasswordHandler(resetService)
	googleLoginHandler := handlers.NewGoogleLoginHandler(oauthService)
	appleLoginHandler := handlers.NewAppleLoginHandler(oauthService)
	meHandler := handlers.NewMeHandler()

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", signupHandler)
		r.Post("/login", loginHandler)
		r.Post("/forgot-password", forgotPasswordHandler)
		r.Post("/verify-code", verifyCodeHandler)
		r.Post("/google-login", googleLoginHandler)
		r.Post("/apple-login", appleLoginHandler)

		// Reset completion rewrites the hash and clears the code in one
		// transaction.
		r.Group(func(r chi.Router) {
			r.Use(middlewares.TxMiddleware(db))
			r.Post("/reset-password", resetPasswordHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(tokens))
			r.Get("/me", meHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.appHost, cfg.appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.appHost, cfg.appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
