package handlers

import (
	"fmt"
	"net/http"

	"patientsim/services"

	"github.com/gorilla/mux"
)

type DiagnosisNotFoundResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions"`
}

type CatalogHandler struct {
	service *services.SimulationService
}

func NewCatalogHandler(service *services.SimulationService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/diagnoses", h.ListDiagnoses).Methods("GET")
	router.HandleFunc("/diagnoses/{name}", h.GetDiagnosis).Methods("GET")
}

func (h *CatalogHandler) ListDiagnoses(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.service.Diagnoses())
}

func (h *CatalogHandler) GetDiagnosis(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	entry, suggestions, ok := h.service.Diagnosis(name)
	if !ok {
		if suggestions == nil {
			suggestions = []string{}
		}
		writeJSONResponse(w, http.StatusNotFound, DiagnosisNotFoundResponse{
			Error:       fmt.Sprintf("unknown diagnosis %q", name),
			Suggestions: suggestions,
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, entry)
}
