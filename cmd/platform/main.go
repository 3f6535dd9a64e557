package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evidify/platform/internal/ehr"
	"github.com/evidify/platform/internal/ledger"
	"github.com/evidify/platform/internal/packet"
	"github.com/evidify/platform/internal/render"
	"github.com/evidify/platform/internal/shared/auth"
	"github.com/evidify/platform/internal/shared/config"
	"github.com/evidify/platform/internal/shared/database"
	"github.com/evidify/platform/internal/shared/metrics"
	secmiddleware "github.com/evidify/platform/internal/shared/middleware"
	"github.com/evidify/platform/internal/tsa"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	DB          *database.DB
	LedgerStore ledger.Store
	Exporter    *ehr.Exporter
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Packet storage (optional - fall back to in-memory without a database)
	var packetStore packet.Store
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Packets will be kept in memory only...")
		packetStore = packet.NewMemoryStore()
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
		packetStore = packet.NewRepository(db.Pool)

		// Feed the connection gauge from pool stats.
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				metrics.RecordDBConnections(int(db.Pool.Stat().TotalConns()))
			}
		}()
	}

	// Session event ledger (optional KurrentDB backend)
	if cfg.KurrentDB.Enabled {
		store, err := ledger.NewKurrentStore(ctx, cfg.KurrentDB.ConnectionString())
		if err != nil {
			fmt.Printf("Warning: KurrentDB not available: %v\n", err)
			fmt.Println("Session chains will be kept in memory only...")
			app.LedgerStore = ledger.NewMemoryStore()
		} else {
			app.LedgerStore = store
			defer store.Close()
			fmt.Println("KurrentDB ledger store initialized")
		}
	} else {
		app.LedgerStore = ledger.NewMemoryStore()
	}
	sessionLedger := ledger.New(app.LedgerStore)

	// Attestation authority
	var attestor *tsa.Attestor
	if cfg.TSA.Enabled {
		var authority *tsa.Authority
		if cfg.TSA.CertPath != "" && cfg.TSA.KeyPath != "" {
			authority, err = tsa.NewAuthorityFromFiles(cfg.TSA.AuthorityName, cfg.TSA.CertPath, cfg.TSA.KeyPath)
		} else {
			authority, err = tsa.NewAuthorityWithGeneratedCert(cfg.TSA.AuthorityName)
		}
		if err != nil {
			fmt.Printf("Warning: TSA initialization failed: %v\n", err)
			fmt.Println("Packets will carry no attestation checkpoints...")
		} else {
			attestor = tsa.NewAttestor(authority)
			fmt.Printf("Attestation authority ready (%s)\n", authority.Name())
		}
	}

	// EHR reporting export (optional, best-effort)
	if cfg.EHR.Enabled {
		exporter, err := ehr.New(ctx, ehr.Config{
			Host:         cfg.EHR.Host,
			Port:         cfg.EHR.Port,
			Database:     cfg.EHR.Database,
			User:         cfg.EHR.User,
			Password:     cfg.EHR.Password,
			Encrypt:      cfg.EHR.Encrypt,
			SummaryTable: cfg.EHR.SummaryTable,
			Timeout:      cfg.EHR.Timeout,
		})
		if err != nil {
			fmt.Printf("Warning: EHR reporting database not available: %v\n", err)
		} else {
			app.Exporter = exporter
			defer exporter.Close()
			fmt.Println("EHR summary export enabled")
		}
	}

	generator := packet.NewGenerator(packet.NewAnonymizer([]byte(cfg.Anonymization.HMACKey)))

	packetHandler := packet.NewHandler(generator, packetStore, sessionLedger, attestor, app.Exporter)
	reportHandler := render.NewHandler(packetStore)
	ledgerHandler := ledger.NewHandler(sessionLedger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(metrics.Middleware)
	r.Use(secmiddleware.CORS(secmiddleware.DefaultCORSConfig()))
	r.Use(secmiddleware.NewIPRateLimiter(50, 100).Middleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// API info
	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(auth.Middleware(cfg.Auth))
		}

		r.Mount("/sessions", ledgerHandler.Routes())
		r.Mount("/packets", packetHandler.Routes())
		r.Mount("/reports", reportHandler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("Evidify Expert Witness Packet Platform")
	fmt.Println("============================================")
	fmt.Printf("Environment:    %s\n", cfg.Server.Env)
	fmt.Printf("Server:         http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:            http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:         http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Auth:           %v\n", cfg.Auth.Enabled)
	fmt.Printf("TSA:            %v\n", cfg.TSA.Enabled)
	fmt.Printf("KurrentDB:      %v (%s:%d)\n", cfg.KurrentDB.Enabled, cfg.KurrentDB.Host, cfg.KurrentDB.Port)
	fmt.Printf("EHR export:     %v\n", cfg.EHR.Enabled)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "Evidify Expert Witness Packet Platform",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		// Check database
		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		// Check KurrentDB ledger store
		if store, ok := app.LedgerStore.(*ledger.KurrentStore); ok {
			if err := store.Health(r.Context()); err != nil {
				checks["kurrentdb"] = "not ready: " + err.Error()
			} else {
				checks["kurrentdb"] = "ready"
			}
		} else {
			checks["kurrentdb"] = "not configured"
		}

		// Check EHR reporting database
		if app.Exporter != nil {
			if err := app.Exporter.Health(r.Context()); err != nil {
				checks["ehr"] = "not ready: " + err.Error()
			} else {
				checks["ehr"] = "ready"
			}
		} else {
			checks["ehr"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}
