package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/epms/internal/config"
	"github.com/locvowork/epms/internal/database"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/handler"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/internal/middleware"
	"github.com/locvowork/epms/internal/repository"
	"github.com/locvowork/epms/internal/repository/salaryschema"
	"github.com/locvowork/epms/internal/service"
)

type App struct {
	Echo *echo.Echo
	DB   *sqlx.DB

	// Optional backends, nil when not configured.
	Redis           *redis.Client
	SearchClient    *database.ElasticSearchClient
	DataStoreClient *database.DatastoreClient

	Layouts   *salaryschema.Cache
	Employees service.EmployeeService

	cancelSubscriptions context.CancelFunc
}

type handlers struct {
	auth       *handler.AuthHandler
	employee   *handler.EmployeeHandler
	department *handler.DepartmentHandler
	salary     *handler.SalaryHandler
	report     *handler.ReportHandler
	sessions   *middleware.SessionManager
	loginLimit echo.MiddlewareFunc
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{
		Echo: e,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")
	if cfg.UsesDefaultSessionSecret() {
		logger.WarnLog(ctx, "SESSION_SECRET is not set, session cookies are signed with the built-in default")
	}

	// Initialize database connection
	dbConfig := database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	logger.InfoLog(ctx, "Database connection established successfully")

	migrator := database.NewMigrator(db)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := migrator.EnsureSalaryTable(ctx); err != nil {
		return err
	}

	a.Layouts = salaryschema.NewCache(salaryschema.NewInspector(db))
	if err := a.initOptionalBackends(ctx); err != nil {
		return err
	}

	h, err := a.wire(ctx)
	if err != nil {
		return err
	}

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(h)

	return nil
}

// initOptionalBackends connects Redis, Elasticsearch and Datastore when they
// are configured. Redis and Elasticsearch failures disable the feature; a
// configured Datastore that cannot be reached is fatal.
func (a *App) initOptionalBackends(ctx context.Context) error {
	cfg := config.DefaultEnvConfig

	if cfg.REDIS_ADDR != "" {
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.REDIS_ADDR,
			Password: cfg.REDIS_PASSWORD,
		})
		if err != nil {
			logger.WarnLog(ctx, "Redis unavailable, schema invalidation stays local: %v", err)
		} else {
			a.Redis = rdb
			bus := database.NewSchemaBus(rdb)
			a.Layouts.SetPublisher(bus)

			subCtx, cancel := context.WithCancel(context.Background())
			a.cancelSubscriptions = cancel
			bus.Subscribe(subCtx, a.Layouts.Invalidate)
			logger.InfoLog(ctx, "Redis connected at %s", cfg.REDIS_ADDR)
		}
	}

	if cfg.ELASTIC_URL != "" {
		es, err := database.NewElasticSearchClient(cfg.ELASTIC_URL)
		if err != nil {
			logger.WarnLog(ctx, "Elasticsearch unavailable, employee search disabled: %v", err)
		} else {
			a.SearchClient = es
			logger.InfoLog(ctx, "Elasticsearch connected at %s", cfg.ELASTIC_URL)
		}
	}

	if cfg.DATASTORE_PROJECT_ID != "" {
		dc, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return fmt.Errorf("failed to initialize datastore: %w", err)
		}
		a.DataStoreClient = dc
		logger.InfoLog(ctx, "Datastore client created for project %s", cfg.DATASTORE_PROJECT_ID)
	}
	return nil
}

func (a *App) wire(ctx context.Context) (*handlers, error) {
	cfg := config.DefaultEnvConfig

	// Initialize dependencies
	empRepo := repository.NewEmployeeRepository(a.DB, a.Layouts)
	deptRepo := repository.NewDepartmentRepository(a.DB)
	assignRepo := repository.NewAssignmentRepository(a.DB)
	userRepo := repository.NewUserRepository(a.DB)
	salaryRepo := repository.NewSalaryRepository(a.DB, a.Layouts)

	// Typed nils must not leak into the interfaces.
	var index domain.EmployeeIndex
	if a.SearchClient != nil {
		index = a.SearchClient
	}
	var archive domain.ReportArchive
	if a.DataStoreClient != nil {
		archive = a.DataStoreClient
	}

	authSvc := service.NewAuthService(userRepo)
	a.Employees = service.NewEmployeeService(empRepo, deptRepo, index)
	deptSvc := service.NewDepartmentService(deptRepo)
	assignSvc := service.NewAssignmentService(empRepo, deptRepo, assignRepo)
	salarySvc := service.NewSalaryService(salaryRepo, empRepo, a.Layouts)
	reportSvc := service.NewReportService(salaryRepo, archive)

	created, err := authSvc.EnsureDefaultAdmin(ctx, cfg.ADMIN_USERNAME, cfg.ADMIN_PASSWORD)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}
	if created {
		logger.InfoLog(ctx, "Default admin user %q created", cfg.ADMIN_USERNAME)
	}

	loginLimit, err := middleware.RateLimit(cfg.LOGIN_RATE_LIMIT)
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	sessions := middleware.NewSessionManager(cfg.SESSION_SECRET, cfg.SESSION_MAX_AGE, cfg.SESSION_SECURE)
	return &handlers{
		auth:       handler.NewAuthHandler(authSvc, sessions),
		employee:   handler.NewEmployeeHandler(a.Employees, assignSvc),
		department: handler.NewDepartmentHandler(deptSvc),
		salary:     handler.NewSalaryHandler(salarySvc),
		report:     handler.NewReportHandler(reportSvc),
		sessions:   sessions,
		loginLimit: loginLimit,
	}, nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(echomw.Recover())
	a.Echo.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{config.DefaultEnvConfig.CORS_ORIGIN},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	a.Echo.Use(middleware.RequestLogger())
}

func (a *App) RegisterRoutes(h *handlers) {
	api := a.Echo.Group("/api")

	api.POST("/login", h.auth.LoginHandler, h.loginLimit)
	api.POST("/logout", h.auth.LogoutHandler)

	secured := api.Group("", h.sessions.RequireSession())
	secured.GET("/me", h.auth.MeHandler)

	secured.POST("/employees", h.employee.CreateHandler)
	secured.GET("/employees", h.employee.ListHandler)
	secured.GET("/employees/search", h.employee.SearchHandler)
	secured.GET("/employees/:id", h.employee.GetHandler)
	secured.DELETE("/employees/:id", h.employee.DeleteHandler)
	secured.GET("/employees/:id/departments", h.employee.DepartmentsHandler)
	secured.POST("/employee-department", h.employee.AssignHandler)

	secured.POST("/departments", h.department.CreateHandler)
	secured.GET("/departments", h.department.ListHandler)

	secured.POST("/salaries", h.salary.CreateHandler)
	secured.GET("/salaries", h.salary.ListHandler)
	secured.PUT("/salaries/:id", h.salary.UpdateHandler)
	secured.DELETE("/salaries/:id", h.salary.DeleteHandler)

	reports := secured.Group("/reports")
	reports.GET("/monthly", h.report.MonthlyHandler)
	reports.GET("/monthly/export", h.report.ExportHandler)
	reports.POST("/monthly/archive", h.report.ArchiveHandler)
	reports.GET("/archive", h.report.ListArchivedHandler)
	reports.GET("/archive/:year/:month", h.report.GetArchivedHandler)

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	secured.POST("/employees/reindex", h.employee.ReindexHandler, adminOnly)
	secured.POST("/schema/refresh", h.salary.RefreshSchemaHandler, adminOnly)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + config.DefaultEnvConfig.APP_PORT
	errCh := make(chan error, 1)
	go func() {
		logger.InfoLog(ctx, "Server listening on %s", addr)
		if err := a.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		a.Close(context.Background())
		if ok {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultEnvConfig.SHUTDOWN_TIMEOUT)
	defer cancel()
	err := a.Echo.Shutdown(shutdownCtx)
	a.Close(shutdownCtx)
	return err
}

// Close releases every backend connection. Safe to call on a partially
// initialized App.
func (a *App) Close(ctx context.Context) {
	if a.cancelSubscriptions != nil {
		a.cancelSubscriptions()
	}
	if a.DataStoreClient != nil {
		if err := a.DataStoreClient.Close(); err != nil {
			logger.WarnLog(ctx, "Failed to close datastore client: %v", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.WarnLog(ctx, "Failed to close redis client: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.WarnLog(ctx, "Failed to close database: %v", err)
		}
	}
	logger.InfoLog(ctx, "Resources released")
}
