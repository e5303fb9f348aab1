package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mlarcade/config"
	"mlarcade/internal/audio"
	"mlarcade/internal/engine"
	"mlarcade/internal/questionbank"
	"mlarcade/internal/repository"
	"mlarcade/internal/store"
	"mlarcade/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()
	cfg := config.Load()

	var mongoDB *mongo.Database
	needsMongo := cfg.StatsBackend == "mongo" || cfg.CatalogSource == "mongo"
	if needsMongo {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer client.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")
		mongoDB = client.Database(cfg.MongoDB)
	}

	// Stats backend
	var statsStore store.Store
	switch cfg.StatsBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")
		statsStore = store.NewRedisStore(rdb)
	case "mongo":
		statsStore = store.NewMongoStore(mongoDB)
	default:
		statsStore = store.NewFileStore(cfg.StatsPath)
	}
	log.Printf("Stats backend: %s", cfg.StatsBackend)

	// Question catalog
	var bank *questionbank.Bank
	if cfg.CatalogSource == "mongo" {
		catalogRepo := repository.NewCatalogRepo(mongoDB)
		questions, err := catalogRepo.GetAll(ctx)
		if err != nil {
			log.Fatal("Failed to load catalog from MongoDB:", err)
		}
		if len(questions) == 0 {
			log.Fatal("Catalog collection is empty, run cmd/seed first")
		}
		bank = questionbank.New(questions)
	} else {
		bank = questionbank.Default()
	}
	log.Printf("Catalog loaded: %d questions", bank.Len())

	// Audio: degrades to silent no-ops on hosts without a device.
	sounds := audio.NewSystem()
	if cfg.AudioMuted && !sounds.Muted() {
		sounds.ToggleMute()
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	wsHandler := ws.NewHandler(wsHub, bank, statsStore, engine.DefaultConfig(), sounds)
	log.Println("WebSocket hub started")

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.HandleFunc("/v1/catalog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, bank.All())
	}).Methods("GET")
	router.HandleFunc("/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := statsStore.Load(r.Context())
		if err != nil {
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}).Methods("GET")
	router.HandleFunc("/v1/arcade", wsHandler.ArcadeWS).Methods("GET")

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  GET /healthz")
		log.Println("  GET /v1/catalog")
		log.Println("  GET /v1/stats")
		log.Println("  WS  /v1/arcade")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sounds.StopMusic()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
