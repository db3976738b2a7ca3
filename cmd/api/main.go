// cmd/api/main.go
// Main entry point for the matching service
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TomShtern/Date-Program-sub007/internal/common/database"
	"github.com/TomShtern/Date-Program-sub007/internal/common/utils"
	"github.com/TomShtern/Date-Program-sub007/internal/config"
	"github.com/TomShtern/Date-Program-sub007/internal/dating"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

func main() {
	// Enable detailed logging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Matching Core API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Printf("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPostgresConfig())
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize Profile module
	log.Println("\n👤 Step 7: Initializing Profile module...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 8. Initialize Matching module
	log.Println("\n💘 Step 8: Initializing Matching module...")

	datingRepo := dating.NewPostgresRepository(db)
	finder := dating.NewCandidateFinder(profileRepo, datingRepo, cfg.CandidatePoolLimit)

	qualityScorer, err := dating.NewQualityScorer(cfg)
	if err != nil {
		log.Fatal("❌ Invalid match quality weights:", err)
	}
	standoutScorer, err := dating.NewStandoutScorer(cfg)
	if err != nil {
		log.Fatal("❌ Invalid standout weights:", err)
	}
	log.Println("   ✅ Compatibility scorers configured")

	standoutEngine := dating.NewStandoutEngine(
		datingRepo, profileRepo, finder, standoutScorer,
		redisClient, cfg.MaxStandoutsPerDay, cfg.DiversityDays,
	)
	limiter := dating.NewDailyLimiter(datingRepo, redisClient, cfg.DailyLikeLimit, cfg.PremiumDailyLikeLimit)
	sessions := dating.NewSessionTracker(cfg.SessionTimeout, cfg.MaxSwipesPerSession, cfg.SuspiciousSwipeVelocity)

	hub := dating.NewHub()
	go hub.Run()
	log.Println("   ✅ WebSocket hub started")

	datingService := dating.NewService(
		datingRepo, profileRepo, finder, qualityScorer, standoutEngine,
		limiter, dating.NewStripedLocks(), sessions, hub,
		dating.ServiceConfig{AutoBanThreshold: cfg.AutoBanThreshold},
	)
	datingHandler := dating.NewHandler(datingService)
	adminService := dating.NewAdminService(db)
	log.Println("✅ Matching module initialized")

	// 9. Setup routes
	log.Println("\n🛣️  Step 9: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	identity := identityMiddleware(profileService)

	profile.RegisterRoutes(router, profileHandler, identity)
	log.Println("   ✅ Profile routes registered")

	dating.RegisterRoutes(router, datingHandler, hub, identity)
	log.Println("   ✅ Matching routes registered")

	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(identity)
	admin.HandleFunc("/stats", getMatchingStats(adminService)).Methods("GET")
	admin.HandleFunc("/reported", getReportedUsers(adminService, cfg.AutoBanThreshold)).Methods("GET")
	log.Println("   ✅ Admin routes registered")

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 10. Start background jobs
	log.Println("\n⏰ Step 10: Starting scheduler...")
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	dating.NewScheduler(datingService).Start(schedulerCtx)
	log.Println("✅ Scheduler started")

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	stopScheduler()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	})
}

// identityMiddleware resolves the caller from the X-User-ID header set by
// the gateway, stashes it in the request context and refreshes the
// caller's last-active timestamp.
func identityMiddleware(profiles profile.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing X-User-ID header")
				return
			}

			if err := profiles.Touch(r.Context(), userID); err != nil {
				log.Printf("⚠️  Failed to touch last-active for %s: %v", userID, err)
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getMatchingStats(admin *dating.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := admin.GetMatchingStats(r.Context())
		if err != nil {
			log.Printf("❌ Failed to load matching stats: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		utils.RespondWithData(w, http.StatusOK, stats)
	}
}

func getReportedUsers(admin *dating.AdminService, minReports int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reported, err := admin.ReviewReportedUsers(r.Context(), minReports)
		if err != nil {
			log.Printf("❌ Failed to load reported users: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load reported users")
			return
		}
		utils.RespondWithData(w, http.StatusOK, reported)
	}
}

// Middleware functions

// requestIDMiddleware tags every request with an ID for log correlation.
// An ID supplied by the gateway wins.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set("X-Request-ID", requestID)
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			age INT NOT NULL DEFAULT 0,
			gender VARCHAR(32) NOT NULL DEFAULT '',
			bio TEXT,
			photos TEXT[] NOT NULL DEFAULT '{}',
			interests TEXT[] NOT NULL DEFAULT '{}',
			height_cm INT,
			location_lat DOUBLE PRECISION,
			location_lng DOUBLE PRECISION,
			drinking VARCHAR(32) NOT NULL DEFAULT '',
			smoking VARCHAR(32) NOT NULL DEFAULT '',
			kids_stance VARCHAR(32) NOT NULL DEFAULT '',
			looking_for VARCHAR(32) NOT NULL DEFAULT '',
			pace JSONB NOT NULL DEFAULT '{}',
			preferences JSONB NOT NULL DEFAULT '{}',
			dealbreakers JSONB NOT NULL DEFAULT '{}',
			premium BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			last_active_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_active ON users(last_active_at DESC NULLS LAST)`,

		`CREATE TABLE IF NOT EXISTS swipes (
			id BIGSERIAL PRIMARY KEY,
			swiper_id VARCHAR(64) NOT NULL REFERENCES users(id),
			target_id VARCHAR(64) NOT NULL REFERENCES users(id),
			direction VARCHAR(8) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (swiper_id, target_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swipes_swiper_created ON swipes(swiper_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipes(target_id)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id VARCHAR(130) PRIMARY KEY,
			user1_id VARCHAR(64) NOT NULL REFERENCES users(id),
			user2_id VARCHAR(64) NOT NULL REFERENCES users(id),
			state VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
			score INT,
			matched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			ended_by VARCHAR(64)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches(user1_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id)`,

		`CREATE TABLE IF NOT EXISTS blocks (
			blocker_id VARCHAR(64) NOT NULL REFERENCES users(id),
			blocked_id VARCHAR(64) NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (blocker_id, blocked_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id BIGSERIAL PRIMARY KEY,
			reporter_id VARCHAR(64) NOT NULL REFERENCES users(id),
			target_id VARCHAR(64) NOT NULL REFERENCES users(id),
			reason TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_target ON reports(target_id)`,

		`CREATE TABLE IF NOT EXISTS standout_batches (
			id BIGSERIAL PRIMARY KEY,
			viewer_id VARCHAR(64) NOT NULL REFERENCES users(id),
			day VARCHAR(10) NOT NULL,
			picks JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (viewer_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_standout_batches_day ON standout_batches(day)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
