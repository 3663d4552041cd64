package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aditsw/smartsheet/internal/api/handlers"
	"github.com/aditsw/smartsheet/internal/api/middleware"
	"github.com/aditsw/smartsheet/internal/assistant"
	"github.com/aditsw/smartsheet/internal/config"
	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/ledger"
	"github.com/aditsw/smartsheet/internal/sheet"
)

var (
	serveAddr string
	demoData  bool
)

// serveCmd runs the dashboard API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: `Start the HTTP API backing the dashboard. If a sheet URL was
connected in a previous session it is loaded from config and synced on
startup; otherwise connect one via POST /api/connect.`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&demoData, "demo", false, "seed sample transactions instead of syncing a sheet")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if serveAddr == "" {
		serveAddr = cfg.Server.Addr
	}

	ctx := context.Background()

	// The assistant is optional: without a key the categorization and
	// insight endpoints degrade instead of blocking startup.
	var ai *assistant.Assistant
	if cfg.Gemini.APIKey != "" {
		ai, err = assistant.New(ctx, cfg.Gemini.APIKey, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create assistant")
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - categorization and insights disabled")
	}

	book := newLedger(ai)

	switch {
	case demoData:
		book.Seed(domain.SampleTransactions())
		log.Info().Int("count", len(domain.SampleTransactions())).Msg("Seeded sample data")
	case cfg.Sheet.URL != "":
		book.SetSource(sheet.NewClient(cfg.Sheet.URL))
		if err := book.Sync(ctx); err != nil {
			log.Warn().Err(err).Msg("Startup sync failed - serving empty working set")
		}
	default:
		log.Info().Msg("No sheet connected yet - use POST /api/connect")
	}

	transactionsHandler := handlers.NewTransactionsHandler(book, log)
	summaryHandler := handlers.NewSummaryHandler(book, log)
	syncHandler := handlers.NewSyncHandler(book, log)
	assistantHandler := handlers.NewAssistantHandler(ai, book, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		transactionsHandler.Delete(w, r, id)
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/connect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.Connect(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.Sync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			syncHandler.Status(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assistantHandler.Insights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assistantHandler.ScanReceipt(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         serveAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serveAddr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func newLedger(ai *assistant.Assistant) *ledger.Ledger {
	if ai == nil {
		// A nil interface value, not a typed nil
		return ledger.New(nil, log)
	}
	return ledger.New(ai, log)
}
