package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ms-storefront/internal/catalog"
	"ms-storefront/internal/logger"
	"ms-storefront/internal/models"
	"ms-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Catalog *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(svc *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Catalog: svc, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.FeaturedProducts)
		r.Get("/{productId}", h.GetProduct)
		r.Post("/{productId}/reviews", h.AddReview)
	})
}

// ListProducts handles the catalog listing with filters and sorting taken
// from query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	products, err := h.Catalog.ListProducts(filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListProducts: query failed: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list products", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Products listed", products))
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.FeaturedProducts()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("FeaturedProducts: query failed: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list featured products", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Featured products listed", products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.Logger.Info("API", fmt.Sprintf("GetProduct: productId=%s", productID))

	detail, err := h.Catalog.GetProductDetail(productID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetProduct: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Product not found", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Product found", detail))
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req struct {
		UserName string `json:"user_name"`
		Content  string `json:"content"`
		Rating   int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	review, err := h.Catalog.AddReview(productID, req.UserName, req.Content, req.Rating)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddReview: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to add review", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Review added", review))
}

func parseFilter(r *http.Request) catalog.Filter {
	q := r.URL.Query()

	filter := catalog.Filter{
		Search:    q.Get("search"),
		Brands:    q["brand"],
		Sizes:     q["size"],
		Condition: models.ProductCondition(q.Get("condition")),
		Sort:      catalog.SortOption(q.Get("sort")),
	}

	if v := q.Get("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = parsed
		}
	}
	if v := q.Get("max_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = parsed
		}
	}

	return filter
}
