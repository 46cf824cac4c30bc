package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/martijn/evently/internal/core/repository"
	"github.com/martijn/evently/internal/core/service"
	"github.com/martijn/evently/internal/infrastructure/sqlite"
	"github.com/martijn/evently/internal/logger"
	"github.com/martijn/evently/internal/metrics"
	"github.com/martijn/evently/internal/security"
	"github.com/martijn/evently/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "evently",
	Short: "Evently - event management API",
	Long: `Evently is a small event management backend.

It provides:
- User registration and login with bearer tokens
- Event create, read, update and delete
- Updates and deletes restricted to the event's organizer
- Paginated, date-ordered event listing with search and filters
- Prometheus metrics and OpenAPI documentation`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/evently/config.yml)")
}

// initServices initializes all services
func initServices(ctx context.Context) (*Services, error) {
	log, logCloser, err := logger.SetupDefault(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	authService := service.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTAlgorithm, cfg.TokenTTL, log)
	eventService := service.NewEventService(eventRepo, security.NewTextSanitizer(), collector, log)

	return &Services{
		DB:           db,
		UserRepo:     userRepo,
		EventRepo:    eventRepo,
		AuthService:  authService,
		EventService: eventService,
		Metrics:      collector,
		Registry:     registry,
		Logger:       log,
		logCloser:    logCloser,
	}, nil
}

// Services holds all initialized services
type Services struct {
	DB           *sqlite.DB
	UserRepo     repository.UserRepository
	EventRepo    repository.EventRepository
	AuthService  *service.AuthService
	EventService *service.EventService
	Metrics      *metrics.Collector
	Registry     *prometheus.Registry
	Logger       *slog.Logger

	logCloser io.Closer
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.logCloser != nil {
		s.logCloser.Close()
	}
}
