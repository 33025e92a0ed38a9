package main

import (
	"fmt"
	"log"
	"net/http"

	"patientsim/config"
	"patientsim/db"
	"patientsim/handlers"
	"patientsim/services"
	"patientsim/services/catalog"
	"patientsim/services/metrics"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	var repo db.ReportRepository
	if cfg.DatabaseURL == "" {
		log.Printf("[WARN] DB_URL not set, reports are kept in memory")
		repo = db.NewInMemoryReportRepository()
	} else {
		pgRepo, err := db.NewPostgresReportRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[ERROR] Failed to initialize report database: %v", err)
		}
		repo = pgRepo
	}
	defer repo.Close()

	backend, err := services.NewBackend(cfg)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize LLM backend: %v", err)
	}

	compiler, err := services.NewCompiler(cfg.PromptDir, cfg.Simulation.WordSample)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize persona compiler: %v", err)
	}

	recorder := metrics.NewRecorder()
	simulationService := services.NewSimulationService(cfg.Simulation, catalog.Default(), compiler, backend, repo, recorder)
	simulationHandler := handlers.NewSimulationHandler(simulationService)
	catalogHandler := handlers.NewCatalogHandler(simulationService)

	router := mux.NewRouter()

	router.Use(recorder.Middleware)
	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	simulationHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.Handle("/metrics", recorder.Handler()).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s (backend %s)\n", cfg.Port, cfg.LLMBackend)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("[ERROR] Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// jsonMiddleware sets the JSON content type on everything except the
// Prometheus scrape endpoint, which negotiates its own format.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metrics" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
