package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/globalidara/bootcamp-registration/api"
	"github.com/globalidara/bootcamp-registration/localstore"
	"github.com/globalidara/bootcamp-registration/payment"
	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
	"github.com/globalidara/bootcamp-registration/syncer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	settings := getSettingsFromEnv()

	store, err := localstore.Open(settings.DBPath)
	if err != nil {
		logger.Error("Failed to open local store", slog.String("path", settings.DBPath), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	sheetsClient := sheets.NewClient(settings.SheetsEndpoint, settings.SheetsReadable, logger)

	scheduler := syncer.NewScheduler(store, sheetsClient, logger, syncer.Config{
		Interval: settings.SyncInterval,
	})
	probe := syncer.NewProbe(sheetsClient, scheduler, logger, settings.ProbeInterval)

	var provider payment.Provider
	if settings.PaystackSecretKey != "" {
		provider = payment.NewPaystack(settings.PaystackSecretKey, logger)
	}

	registrationAPI := api.NewAPI(
		store,
		sheetsClient,
		scheduler,
		provider,
		registration.Event{
			Name:          settings.EventName,
			Price:         money.New(settings.PriceMinorUnits, settings.Currency),
			ContactNumber: settings.ContactNumber,
		},
		api.Config{
			PaystackPublicKey: settings.PaystackPublicKey,
			VerifyPayments:    provider != nil,
			CallbackURL:       settings.CallbackURL,
			SuccessURL:        settings.SuccessURL,
			AllowedOrigins:    settings.AllowedOrigins,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)
	go probe.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/", registrationAPI.Handler())
	mux.Handle("GET /metrics", promhttp.Handler())

	s := &http.Server{
		Handler:           mux,
		Addr:              net.JoinHostPort(settings.Host, settings.Port),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("Starting server", slog.String("addr", s.Addr))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

type Settings struct {
	Host string
	Port string

	DBPath string

	SheetsEndpoint string
	SheetsReadable bool
	SyncInterval   time.Duration
	ProbeInterval  time.Duration

	EventName       string
	PriceMinorUnits int64
	Currency        string
	ContactNumber   string

	PaystackPublicKey string
	PaystackSecretKey string
	CallbackURL       string
	SuccessURL        string
	AllowedOrigins    []string
}

func getSettingsFromEnv() Settings {
	return Settings{
		Host: getEnvOrDefault("HOST", "0.0.0.0"),
		Port: getEnvOrDefault("PORT", "8080"),

		DBPath: getEnvOrDefault("DB_PATH", "registrations.db"),

		SheetsEndpoint: getEnvOrDefault("SHEETS_ENDPOINT_URL", ""),
		SheetsReadable: getEnvBoolOrDefault("SHEETS_READABLE", false),
		SyncInterval:   getEnvDurationOrDefault("SYNC_INTERVAL", 30*time.Second),
		ProbeInterval:  getEnvDurationOrDefault("PROBE_INTERVAL", time.Minute),

		EventName:       getEnvOrDefault("EVENT_NAME", "Global Idara Tech Bootcamp"),
		PriceMinorUnits: getEnvInt64OrDefault("PRICE_MINOR_UNITS", 1200000),
		Currency:        getEnvOrDefault("CURRENCY", money.NGN),
		ContactNumber:   getEnvOrDefault("CONTACT_NUMBER", ""),

		PaystackPublicKey: getEnvOrDefault("PAYSTACK_PUBLIC_KEY", ""),
		PaystackSecretKey: getEnvOrDefault("PAYSTACK_SECRET_KEY", ""),
		CallbackURL:       getEnvOrDefault("CALLBACK_URL", ""),
		SuccessURL:        getEnvOrDefault("SUCCESS_URL", "/"),
		AllowedOrigins:    splitNonEmpty(getEnvOrDefault("ALLOWED_ORIGINS", "")),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return defaultVal
}

func getEnvInt64OrDefault(key string, defaultVal int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return defaultVal
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
