package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"patientsim/services"

	"github.com/gorilla/mux"
)

type SimulationHandler struct {
	service *services.SimulationService
}

func NewSimulationHandler(service *services.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

func (h *SimulationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/simulations", h.RunSimulation).Methods("POST")
	router.HandleFunc("/simulations", h.ListReports).Methods("GET")
	router.HandleFunc("/simulations/{id}", h.GetReport).Methods("GET")
}

// RunSimulation runs one interview. An empty body simulates a random demo
// patient with the configured defaults.
func (h *SimulationHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received simulation request")

	var req services.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[ERROR] Failed to decode simulation request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.VolunteerProbability != nil && (*req.VolunteerProbability < 0 || *req.VolunteerProbability > 1) {
		writeErrorResponse(w, http.StatusBadRequest, "volunteer_probability must be between 0 and 1")
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		log.Printf("[ERROR] Simulation failed: %v", err)
		writeErrorResponse(w, statusFor(err), err.Error())
		return
	}

	log.Printf("[INFO] Simulation %s completed successfully", result.SessionID)
	writeJSONResponse(w, http.StatusCreated, result)
}

func (h *SimulationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports()
	if err != nil {
		writeErrorResponse(w, statusFor(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, reports)
}

func (h *SimulationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.service.GetReport(id)
	if err != nil {
		log.Printf("[ERROR] Failed to get report %s: %v", id, err)
		writeErrorResponse(w, statusFor(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}
