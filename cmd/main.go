package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/cancel_booking"
	checkInHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/check_in_booking"
	checkOutHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/check_out_booking"
	commitBookingHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/commit_booking"
	createHoldHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/create_hold"
	expireStaleHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/expire_stale_holds"
	extendHoldHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/extend_hold"
	getBookingHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/get_booking"
	getHoldHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/get_hold"
	markNoShowHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/mark_no_show"
	quotePriceHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/quote_price"
	releaseHoldHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/release_hold"
	submitRefundHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/submit_refund"
	syncInventoryHandler "github.com/m04kA/SMC-HotelService/internal/api/handlers/sync_inventory"
	"github.com/m04kA/SMC-HotelService/internal/api/middleware"
	"github.com/m04kA/SMC-HotelService/internal/config"
	bookingRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/booking"
	holdRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/hold"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	policyRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/policy"
	roomTypeRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/roomtype"
	couponServiceClient "github.com/m04kA/SMC-HotelService/internal/integrations/couponservice"
	notifyServiceClient "github.com/m04kA/SMC-HotelService/internal/integrations/notifyservice"
	paymentGWClient "github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
	bookingsService "github.com/m04kA/SMC-HotelService/internal/service/bookings"
	holdsService "github.com/m04kA/SMC-HotelService/internal/service/holds"
	inventoryService "github.com/m04kA/SMC-HotelService/internal/service/inventory"
	pricingService "github.com/m04kA/SMC-HotelService/internal/service/pricing"
	refundsService "github.com/m04kA/SMC-HotelService/internal/service/refunds"
	cancelBookingUC "github.com/m04kA/SMC-HotelService/internal/usecase/cancel_booking"
	commitBookingUC "github.com/m04kA/SMC-HotelService/internal/usecase/commit_booking"
	"github.com/m04kA/SMC-HotelService/pkg/dbmetrics"
	"github.com/m04kA/SMC-HotelService/pkg/logger"
	"github.com/m04kA/SMC-HotelService/pkg/metrics"
	"github.com/m04kA/SMC-HotelService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-HotelService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-HotelService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	paymentClient := paymentGWClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	couponClient := couponServiceClient.NewClient(
		cfg.CouponService.URL,
		time.Duration(cfg.CouponService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PaymentGW=%s, CouponService=%s, NotifyService=%s)",
		cfg.PaymentService.URL, cfg.CouponService.URL, cfg.NotifyService.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		inventoryRepository *inventoryRepo.Repository
		holdRepository      *holdRepo.Repository
		bookingRepository   *bookingRepo.Repository
		policyRepository    *policyRepo.Repository
		roomTypeRepository  *roomTypeRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		inventoryRepository = inventoryRepo.NewRepository(wrappedDB)
		holdRepository = holdRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		roomTypeRepository = roomTypeRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		inventoryRepository = inventoryRepo.NewRepository(db)
		holdRepository = holdRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		roomTypeRepository = roomTypeRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	holdsSvc := holdsService.NewService(
		inventoryRepository,
		holdRepository,
		txMgr,
		cfg.Holds.ToDomain(),
		log,
	)
	pricingSvc := pricingService.NewService(
		roomTypeRepository,
		inventoryRepository,
		couponClient,
		cfg.Pricing.ToDomain(),
		log,
	)
	refundsSvc := refundsService.NewService(
		policyRepository,
		bookingRepository,
		paymentClient,
		txMgr,
		log,
	)
	bookingsSvc := bookingsService.NewService(bookingRepository, txMgr, log)
	inventorySvc := inventoryService.NewService(
		inventoryRepository,
		roomTypeRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	commitBookingUseCase := commitBookingUC.NewUseCase(
		holdRepository,
		bookingRepository,
		inventoryRepository,
		pricingSvc,
		refundsSvc,
		paymentClient,
		notifyClient,
		txMgr,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		inventoryRepository,
		refundsSvc,
		notifyClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createHold := createHoldHandler.NewHandler(holdsSvc, log)
	getHold := getHoldHandler.NewHandler(holdsSvc, log)
	extendHold := extendHoldHandler.NewHandler(holdsSvc, log)
	releaseHold := releaseHoldHandler.NewHandler(holdsSvc, log)
	expireStale := expireStaleHandler.NewHandler(holdsSvc, log)
	quotePrice := quotePriceHandler.NewHandler(pricingSvc, log)
	commitBooking := commitBookingHandler.NewHandler(commitBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	checkIn := checkInHandler.NewHandler(bookingsSvc, log)
	checkOut := checkOutHandler.NewHandler(bookingsSvc, log)
	markNoShow := markNoShowHandler.NewHandler(bookingsSvc, log)
	syncInventory := syncInventoryHandler.NewHandler(inventorySvc, log)
	submitRefund := submitRefundHandler.NewHandler(refundsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Служебный endpoint для периодического sweep'а просроченных холдов
	r.HandleFunc("/internal/holds/expire-stale", expireStale.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// --- Холды ---
	api.HandleFunc("/holds", createHold.Handle).Methods(http.MethodPost)
	api.HandleFunc("/holds/{token}", getHold.Handle).Methods(http.MethodGet)
	api.HandleFunc("/holds/{token}/extend", extendHold.Handle).Methods(http.MethodPost)
	api.HandleFunc("/holds/{token}", releaseHold.Handle).Methods(http.MethodDelete)

	// --- Расчёт стоимости ---
	api.HandleFunc("/quotes", quotePrice.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", commitBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/code/{code}", getBooking.HandleByCode).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/refund", submitRefund.Handle).Methods(http.MethodPost)

	// --- Операторские операции (стойка регистрации, менеджеры отеля) ---
	protected.HandleFunc("/bookings/{bookingId}/check-in", checkIn.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/check-out", checkOut.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/no-show", markNoShow.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/room-types/{roomTypeId}/inventory", syncInventory.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
