package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"quintal/internal/costing"
	"quintal/models"
)

func TestCreateProductHandler(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")

	flour := seedMaterial(t, database, user.ID, "Flour", "100")
	sugar := seedMaterial(t, database, user.ID, "Sugar", "50")

	body := jsonBody(t, productRequest{
		Name:           "Cake",
		AdditionalCost: decimal.NewFromInt(10),
		Ingredients: []productIngredientRequest{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(70)},
			{RawMaterialID: sugar.ID, Percentage: decimal.NewFromInt(30)},
		},
	})
	r := httptest.NewRequest(http.MethodPost, "/app/api/products", body)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	resp := decodeJSON[productResponse](t, rec)
	if resp.Name != "Cake" {
		t.Fatalf("response name = %q", resp.Name)
	}
	if !resp.TotalCost.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("response total = %s, want 95", resp.TotalCost)
	}
	if len(resp.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(resp.Ingredients))
	}
	for _, ingredient := range resp.Ingredients {
		if ingredient.RawMaterial == nil {
			t.Fatalf("expected raw material expanded on ingredient %d", ingredient.ID)
		}
	}
}

func TestCreateProductRejectsBadShares(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")
	flour := seedMaterial(t, database, user.ID, "Flour", "100")

	body := jsonBody(t, productRequest{
		Name:           "Thin Cake",
		AdditionalCost: decimal.NewFromInt(10),
		Ingredients: []productIngredientRequest{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(99)},
		},
	})
	r := httptest.NewRequest(http.MethodPost, "/app/api/products", body)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var count int64
	if err := database.Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no product rows after rejected create, found %d", count)
	}
}

func TestCreateProductRejectsForeignMaterial(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")
	other := createTestUser(t, database, "other@example.com", "password123")
	foreign := seedMaterial(t, database, other.ID, "Flour", "100")

	body := jsonBody(t, productRequest{
		Name:           "Cake",
		AdditionalCost: decimal.Zero,
		Ingredients: []productIngredientRequest{
			{RawMaterialID: foreign.ID, Percentage: decimal.NewFromInt(100)},
		},
	})
	r := httptest.NewRequest(http.MethodPost, "/app/api/products", body)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListProductsHandler(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")
	other := createTestUser(t, database, "other@example.com", "password123")

	flour := seedMaterial(t, database, user.ID, "Flour", "100")
	foreignFlour := seedMaterial(t, database, other.ID, "Flour", "200")

	full := func(id uint) []costing.IngredientInput {
		return []costing.IngredientInput{{RawMaterialID: id, Percentage: decimal.NewFromInt(100)}}
	}
	seedProduct(t, database, user.ID, costing.ProductInput{Name: "Waffle", AdditionalCost: decimal.Zero, Ingredients: full(flour.ID)})
	seedProduct(t, database, user.ID, costing.ProductInput{Name: "Bread", AdditionalCost: decimal.Zero, Ingredients: full(flour.ID)})
	seedProduct(t, database, other.ID, costing.ProductInput{Name: "Aioli", AdditionalCost: decimal.Zero, Ingredients: full(foreignFlour.ID)})

	r := httptest.NewRequest(http.MethodGet, "/app/api/products", nil)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeJSON[[]productResponse](t, rec)
	if len(resp) != 2 {
		t.Fatalf("expected 2 products for tenant, got %d", len(resp))
	}
	if resp[0].Name != "Bread" || resp[1].Name != "Waffle" {
		t.Fatalf("expected name-ascending order, got %s, %s", resp[0].Name, resp[1].Name)
	}
}

func TestShowProductScopesToTenant(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")
	other := createTestUser(t, database, "other@example.com", "password123")

	foreignFlour := seedMaterial(t, database, other.ID, "Flour", "100")
	foreign := seedProduct(t, database, other.ID, costing.ProductInput{
		Name:           "Cake",
		AdditionalCost: decimal.Zero,
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: foreignFlour.ID, Percentage: decimal.NewFromInt(100)},
		},
	})

	r := httptest.NewRequest(http.MethodGet, "/app/api/products/"+itoa(foreign.ID), nil)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteProductHandler(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")

	flour := seedMaterial(t, database, user.ID, "Flour", "100")
	product := seedProduct(t, database, user.ID, costing.ProductInput{
		Name:           "Cake",
		AdditionalCost: decimal.Zero,
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(100)},
		},
	})

	r := httptest.NewRequest(http.MethodDelete, "/app/api/products/"+itoa(product.ID), nil)
	r = asUser(t, api, r, user)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	r = httptest.NewRequest(http.MethodGet, "/app/api/products/"+itoa(product.ID), nil)
	r = asUser(t, api, r, user)
	rec = httptest.NewRecorder()
	api.ProductResource(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProductResourceUsesBearerToken(t *testing.T) {
	api, database := newTestAPI(t)
	user := createTestUser(t, database, "owner@example.com", "password123")
	flour := seedMaterial(t, database, user.ID, "Flour", "100")
	seedProduct(t, database, user.ID, costing.ProductInput{
		Name:           "Cake",
		AdditionalCost: decimal.Zero,
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(100)},
		},
	})

	token, _, err := api.tokens.Issue(user.ID, user.Email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/app/api/products", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	api.ProductResource(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	resp := decodeJSON[[]productResponse](t, rec)
	if len(resp) != 1 {
		t.Fatalf("expected 1 product via bearer auth, got %d", len(resp))
	}
}
