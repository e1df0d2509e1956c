package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/cache"
	"github.com/stacksmart/deal-stacking-service/internal/models"
	"github.com/stacksmart/deal-stacking-service/internal/repository"
	"github.com/stacksmart/deal-stacking-service/internal/stacking"
)

// --- Request / Response DTOs ---

type OptimizeRequest struct {
	Deals       []models.DealRecord `json:"deals"`
	BasePrice   float64             `json:"base_price"`
	UserContext *models.UserContext `json:"user_context,omitempty"`
	// ProductID sources candidates from the stored offer feed when the
	// caller supplies no deals of its own.
	ProductID string `json:"product_id,omitempty"`
}

type OptimizedDeal struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DealType    string  `json:"deal_type"`
	Value       float64 `json:"value"`
	ValueType   string  `json:"value_type"`
	Code        string  `json:"code,omitempty"`
	Platform    string  `json:"platform,omitempty"`
	Confidence  float64 `json:"confidence"`
}

type OptimizeResponse struct {
	OptimizedDeals   []OptimizedDeal `json:"optimized_deals"`
	TotalSavings     float64         `json:"total_savings"`
	FinalPrice       float64         `json:"final_price"`
	OriginalPrice    float64         `json:"original_price"`
	Confidence       float64         `json:"confidence"`
	ApplicationOrder []string        `json:"application_order"`
	Warnings         []string        `json:"warnings"`
	ProcessingTime   float64         `json:"processing_time"`
}

type ValidateRequestBody struct {
	Deals     []models.DealRecord `json:"deals"`
	BasePrice float64             `json:"base_price"`
}

type CreateOfferRequest struct {
	ProductID   string   `json:"product_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DealType    string   `json:"deal_type"`
	Value       float64  `json:"value"`
	ValueType   string   `json:"value_type"`
	Code        string   `json:"code,omitempty"`
	MinPurchase *float64 `json:"min_purchase,omitempty"`
	MaxDiscount *float64 `json:"max_discount,omitempty"`
	ValidFrom   string   `json:"valid_from,omitempty"`   // RFC3339
	ValidUntil  string   `json:"valid_until,omitempty"`  // RFC3339
	Platform    string   `json:"platform,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Stackable   *bool    `json:"stackable,omitempty"`
	Terms       []string `json:"terms,omitempty"`
	Priority    int      `json:"priority,omitempty"`
}

// OfferSource is the slice of the repository the handlers need; an
// interface so tests can stub the feed.
type OfferSource interface {
	Insert(ctx context.Context, offer *models.StoredOffer) error
	ListByProduct(ctx context.Context, productID string) ([]models.StoredOffer, error)
}

// --- Handler struct & constructor ---

type DealHandler struct {
	offers OfferSource
	cache  *cache.OfferCache
	engine *stacking.Engine
	log    *zap.Logger
}

func NewDealHandler(db *sql.DB, engine *stacking.Engine, log *zap.Logger) *DealHandler {
	return &DealHandler{
		offers: repository.NewOfferRepo(db),
		cache:  cache.NewOfferCache(),
		engine: engine,
		log:    log,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseTimeOrEmpty(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Handlers ---

// OptimizeDeals handles POST /deals/optimize
func (h *DealHandler) OptimizeDeals(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}
	if req.BasePrice <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "base_price must be positive"})
		return
	}

	records := req.Deals
	if len(records) == 0 && req.ProductID != "" {
		offers, err := h.productOffers(r.Context(), req.ProductID)
		if err != nil {
			h.log.Error("loading stored offers failed", zap.String("product_id", req.ProductID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_load_offers"})
			return
		}
		records = make([]models.DealRecord, len(offers))
		for i, offer := range offers {
			records[i] = offer.Record()
		}
	}

	result := h.engine.Optimize(records, req.BasePrice, req.UserContext)

	optimized := make([]OptimizedDeal, len(result.Deals))
	for i, deal := range result.Deals {
		optimized[i] = OptimizedDeal{
			ID:          deal.ID,
			Title:       deal.Title,
			Description: deal.Description,
			DealType:    string(deal.DealType),
			Value:       deal.Value,
			ValueType:   string(deal.ValueType),
			Code:        deal.Code,
			Platform:    deal.Platform,
			Confidence:  deal.Confidence,
		}
	}

	writeJSON(w, http.StatusOK, OptimizeResponse{
		OptimizedDeals:   optimized,
		TotalSavings:     result.TotalSavings,
		FinalPrice:       result.FinalPrice,
		OriginalPrice:    result.OriginalPrice,
		Confidence:       result.Confidence,
		ApplicationOrder: result.ApplicationOrder,
		Warnings:         result.Warnings,
		ProcessingTime:   result.ProcessingTime,
	})
}

// ValidateStack handles POST /deals/validate
func (h *DealHandler) ValidateStack(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}
	if req.BasePrice <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "base_price must be positive"})
		return
	}

	writeJSON(w, http.StatusOK, h.engine.ValidateStack(req.Deals, req.BasePrice))
}

// ListOffers handles GET /deals/offers?product_id=...
func (h *DealHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id required"})
		return
	}

	offers, err := h.productOffers(r.Context(), productID)
	if err != nil {
		h.log.Error("listing offers failed", zap.String("product_id", productID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_list_offers"})
		return
	}
	if offers == nil {
		offers = []models.StoredOffer{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// CreateOffer handles POST /admin/offers — ingests one scraped offer.
func (h *DealHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}
	if req.ProductID == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id and title required"})
		return
	}
	if _, err := models.ParseDealType(req.DealType); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown deal_type"})
		return
	}
	if _, err := models.ParseValueType(req.ValueType); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown value_type"})
		return
	}
	if req.Value < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must be non-negative"})
		return
	}

	validFrom, err := parseTimeOrEmpty(req.ValidFrom)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid valid_from; use RFC3339"})
		return
	}
	validUntil, err := parseTimeOrEmpty(req.ValidUntil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid valid_until; use RFC3339"})
		return
	}

	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	stackable := true
	if req.Stackable != nil {
		stackable = *req.Stackable
	}

	offer := models.StoredOffer{
		ID:          uuid.NewString(),
		ProductID:   req.ProductID,
		Title:       req.Title,
		Description: req.Description,
		DealType:    req.DealType,
		Value:       req.Value,
		ValueType:   req.ValueType,
		Code:        req.Code,
		MinPurchase: req.MinPurchase,
		MaxDiscount: req.MaxDiscount,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		Platform:    req.Platform,
		Confidence:  confidence,
		Stackable:   stackable,
		Terms:       req.Terms,
		Priority:    req.Priority,
	}

	if err := h.offers.Insert(r.Context(), &offer); err != nil {
		h.log.Error("offer insert failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_offer"})
		return
	}
	h.cache.Invalidate(req.ProductID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "offer_created",
		"offer_id": offer.ID,
	})
}

func (h *DealHandler) productOffers(ctx context.Context, productID string) ([]models.StoredOffer, error) {
	if offers, ok := h.cache.Get(productID); ok {
		return offers, nil
	}
	offers, err := h.offers.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	h.cache.Set(productID, offers)
	return offers, nil
}
