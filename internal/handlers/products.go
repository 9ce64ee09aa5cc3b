package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quintal/internal/costing"
	applog "quintal/internal/log"
	"quintal/models"
)

type productIngredientRequest struct {
	RawMaterialID uint            `json:"raw_material_id"`
	Percentage    decimal.Decimal `json:"percentage"`
}

type productRequest struct {
	Name           string                     `json:"name"`
	AdditionalCost decimal.Decimal            `json:"additional_cost"`
	Ingredients    []productIngredientRequest `json:"ingredients"`
}

type productIngredientResponse struct {
	ID            uint                 `json:"id"`
	RawMaterialID uint                 `json:"raw_material_id"`
	Percentage    decimal.Decimal      `json:"percentage"`
	RawMaterial   *rawMaterialResponse `json:"raw_material,omitempty"`
}

type productResponse struct {
	ID             uint                        `json:"id"`
	Name           string                      `json:"name"`
	AdditionalCost decimal.Decimal             `json:"additional_cost"`
	TotalCost      decimal.Decimal             `json:"total_cost"`
	Ingredients    []productIngredientResponse `json:"ingredients"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// ProductResource handles REST-style interactions for products.
func (a *API) ProductResource(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		applog.Debug(r.Context(), "product request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	userID, ok := a.currentUserID(r)
	if !ok {
		applog.Debug(r.Context(), "product request missing authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/products")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			a.listProducts(w, r, userID)
		case http.MethodPost:
			a.createProduct(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	productID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		a.showProduct(w, r, productID, userID)
	case http.MethodDelete:
		a.deleteProduct(w, r, productID, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	products, err := a.products.List(ctx, userID)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := costing.ProductInput{
		Name:           payload.Name,
		AdditionalCost: payload.AdditionalCost,
	}
	for _, ingredient := range payload.Ingredients {
		input.Ingredients = append(input.Ingredients, costing.IngredientInput{
			RawMaterialID: ingredient.RawMaterialID,
			Percentage:    ingredient.Percentage,
		})
	}

	product, err := a.products.Create(ctx, userID, input)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(*product))
}

func (a *API) showProduct(w http.ResponseWriter, r *http.Request, productID, userID uint) {
	ctx := r.Context()
	product, err := a.products.Get(ctx, userID, productID)
	if err != nil {
		writeDomainError(ctx, w, err, "unable to load product")
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(*product))
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request, productID, userID uint) {
	ctx := r.Context()
	if err := a.products.Delete(ctx, userID, productID); err != nil {
		writeDomainError(ctx, w, err, "unable to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectProduct(product models.Product) productResponse {
	response := productResponse{
		ID:             product.ID,
		Name:           product.Name,
		AdditionalCost: product.AdditionalCost,
		TotalCost:      product.TotalCost,
		Ingredients:    make([]productIngredientResponse, 0, len(product.Ingredients)),
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}

	for _, ingredient := range product.Ingredients {
		projected := productIngredientResponse{
			ID:            ingredient.ID,
			RawMaterialID: ingredient.RawMaterialID,
			Percentage:    ingredient.Percentage,
		}
		if ingredient.RawMaterial != nil {
			material := projectRawMaterial(*ingredient.RawMaterial)
			projected.RawMaterial = &material
		}
		response.Ingredients = append(response.Ingredients, projected)
	}

	return response
}
