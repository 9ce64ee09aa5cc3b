package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	applog "quintal/internal/log"
	"quintal/models"
)

type rawMaterialRequest struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

type rawMaterialResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type rawMaterialUpdateResponse struct {
	rawMaterialResponse
	Recalculated int `json:"recalculated"`
}

type costChangeResponse struct {
	ID        uint            `json:"id"`
	Before    decimal.Decimal `json:"before"`
	After     decimal.Decimal `json:"after"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

// RawMaterialResource handles REST-style interactions for raw materials.
func (a *API) RawMaterialResource(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		applog.Debug(r.Context(), "raw material request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	userID, ok := a.currentUserID(r)
	if !ok {
		applog.Debug(r.Context(), "raw material request missing authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/raw-materials")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			a.listRawMaterials(w, r, userID)
		case http.MethodPost:
			a.createRawMaterial(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid raw material identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}
	materialID := uint(idValue)

	if len(segments) > 1 && segments[1] == "history" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.rawMaterialHistory(w, r, materialID, userID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.showRawMaterial(w, r, materialID, userID)
	case http.MethodPut:
		a.updateRawMaterialCost(w, r, materialID, userID)
	case http.MethodDelete:
		a.deleteRawMaterial(w, r, materialID, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *API) listRawMaterials(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	materials, err := a.materials.List(ctx, userID)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to load raw materials")
		return
	}

	responses := make([]rawMaterialResponse, 0, len(materials))
	for _, material := range materials {
		responses = append(responses, projectRawMaterial(material))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (a *API) createRawMaterial(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var payload rawMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid raw material create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	material, err := a.materials.Create(ctx, userID, payload.Name, payload.Cost)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to create raw material")
		return
	}

	writeJSON(w, http.StatusCreated, projectRawMaterial(*material))
}

func (a *API) showRawMaterial(w http.ResponseWriter, r *http.Request, materialID, userID uint) {
	ctx := r.Context()
	material, err := a.materials.Get(ctx, userID, materialID)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to load raw material")
		return
	}
	writeJSON(w, http.StatusOK, projectRawMaterial(*material))
}

func (a *API) updateRawMaterialCost(w http.ResponseWriter, r *http.Request, materialID, userID uint) {
	ctx := r.Context()
	var payload rawMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid raw material update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	material, recalculated, err := a.materials.UpdateCost(ctx, userID, materialID, payload.Cost)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to update raw material")
		return
	}

	writeJSON(w, http.StatusOK, rawMaterialUpdateResponse{
		rawMaterialResponse: projectRawMaterial(*material),
		Recalculated:        recalculated,
	})
}

func (a *API) deleteRawMaterial(w http.ResponseWriter, r *http.Request, materialID, userID uint) {
	ctx := r.Context()
	if err := a.materials.Delete(ctx, userID, materialID); err != nil {
		writeDomainError(ctx, w, err, "unable to delete raw material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) rawMaterialHistory(w http.ResponseWriter, r *http.Request, materialID, userID uint) {
	ctx := r.Context()
	changes, err := a.materials.History(ctx, userID, materialID)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to load cost history")
		return
	}

	responses := make([]costChangeResponse, 0, len(changes))
	for _, change := range changes {
		responses = append(responses, costChangeResponse{
			ID:        change.ID,
			Before:    change.Before,
			After:     change.After,
			Reason:    change.Reason,
			CreatedAt: change.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

func projectRawMaterial(material models.RawMaterial) rawMaterialResponse {
	return rawMaterialResponse{
		ID:        material.ID,
		Name:      material.Name,
		Cost:      material.Cost,
		CreatedAt: material.CreatedAt,
		UpdatedAt: material.UpdatedAt,
	}
}
