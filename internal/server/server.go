package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"pharma-portal/internal/config"
	"pharma-portal/internal/mailer"
	custommiddleware "pharma-portal/internal/middleware"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/service"
	"pharma-portal/internal/session"
	"pharma-portal/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, sender mailer.Sender) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if err := db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["redis"] = "down"
		}
		custommiddleware.RespondWithJSON(w, status, body)
	})

	// Repositories
	dbx := sqlx.NewDb(db, "pgx")
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	roleRepo := repository.NewRoleRepository(dbx)
	verificationRepo := repository.NewVerificationRepository(dbx)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(repository.MockInvoices(time.Now(), cfg.Shop.TaxRate))
	store := session.NewRedisStore(redisClient, cfg.Shop.DefaultLanguage)

	// Services
	authz := service.NewAuthorizer(roleRepo, logger)
	emailService := service.NewEmailService(sender, cfg.Email.StaffAddress, cfg.Email.SiteURL, logger)
	userService := service.NewUserService(userRepo, refreshTokenRepo, roleRepo, emailService, cfg.JWT, cfg.Email.SiteURL, logger)
	roleService := service.NewRoleService(roleRepo, userRepo, logger)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(store, productRepo, cfg.Shop.TaxRate)
	orderService := service.NewOrderService(orderRepo, productRepo, store, cfg.Shop.TaxRate, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo, cfg.Shop.TaxRate)
	verificationService := service.NewVerificationService(verificationRepo, roleService, logger)

	// Middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(authz, logger)
	emailRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         "ratelimit:send-email",
	}, logger)

	// Routes
	transport.NewUserHandler(userService, authz, logger).RegisterRoutes(router, authMiddleware)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewSessionHandler(store, logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewInvoiceHandler(invoiceService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewRoleHandler(roleService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewVerificationHandler(verificationService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewFunctionHandler(emailService, roleService, logger).RegisterRoutes(router, emailRateLimit, authMiddleware, adminMiddleware)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
