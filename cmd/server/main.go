package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/andremonteiro/diagnostico/internal/api"
	dbstore "github.com/andremonteiro/diagnostico/internal/db"
	"github.com/andremonteiro/diagnostico/internal/middleware"
	"github.com/andremonteiro/diagnostico/internal/services"
	"github.com/andremonteiro/diagnostico/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	addr := utils.SafeEnv("DIAG_ADDR", ":8080")
	commit := os.Getenv("DIAG_COMMIT")
	buildTime := os.Getenv("DIAG_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	mux := http.NewServeMux()
	// API routes
	router := api.NewRouter(store, middleware.SignToken)
	router.Register(mux)
	// Branding changes show up in the logs so operators can correlate
	// frontend asset swaps with deploys.
	router.Settings().OnChange(func(v services.Settings) {
		log.Printf("branding updated: logo=%q navbar_logo=%q at=%s", v.Logo, v.NavbarLogo, v.UpdatedAt.Format(time.RFC3339))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Diagnóstico API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Static frontend if DIAG_STATIC_DIR is set (fullstack image).
	if staticDir := os.Getenv("DIAG_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.SecureHeaders(middleware.CORS(middleware.LocaleMiddleware(middleware.WithAuth(mux)))))

	log.Printf("Diagnóstico server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore picks the backing store: SQLite when DIAG_SQLITE_PATH is set,
// in-memory otherwise. On first run with SQLite, a legacy JSON snapshot
// (DIAG_DB_PATH) is migrated in.
func openStore() (api.Store, error) {
	sqlitePath := os.Getenv("DIAG_SQLITE_PATH")
	if sqlitePath == "" {
		log.Printf("DIAG_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}

	migrationsDir := os.Getenv("DIAG_MIGRATIONS_DIR")
	if err := MigrateIfNeeded(os.Getenv("DIAG_DB_PATH"), sqlitePath, migrationsDir); err != nil {
		return nil, fmt.Errorf("legacy migration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return dbstore.NewStore(sqliteDB)
}
