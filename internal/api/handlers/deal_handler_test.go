package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/cache"
	"github.com/stacksmart/deal-stacking-service/internal/models"
	"github.com/stacksmart/deal-stacking-service/internal/stacking"
)

type stubOfferSource struct {
	offers []models.StoredOffer
	listed int
}

func (s *stubOfferSource) Insert(ctx context.Context, offer *models.StoredOffer) error {
	s.offers = append(s.offers, *offer)
	return nil
}

func (s *stubOfferSource) ListByProduct(ctx context.Context, productID string) ([]models.StoredOffer, error) {
	s.listed++
	var out []models.StoredOffer
	for _, o := range s.offers {
		if o.ProductID == productID {
			out = append(out, o)
		}
	}
	return out, nil
}

func testHandler(src *stubOfferSource) *DealHandler {
	return &DealHandler{
		offers: src,
		cache:  cache.NewOfferCache(),
		engine: stacking.NewEngine(stacking.DefaultConfig(), nil),
		log:    zap.NewNop(),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestOptimizeDealsEndpoint(t *testing.T) {
	h := testHandler(&stubOfferSource{})
	body := `{
		"base_price": 2000,
		"deals": [
			{"id":"c1","title":"SAVE10","deal_type":"coupon","value":10,"value_type":"percentage","confidence":0.9},
			{"id":"cb1","title":"Cashback","deal_type":"cashback","value":5,"value_type":"percentage","confidence":0.8}
		]
	}`
	rr := postJSON(t, h.OptimizeDeals, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}

	var resp OptimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.OptimizedDeals) != 2 {
		t.Fatalf("optimized %d deals, want 2", len(resp.OptimizedDeals))
	}
	// 2000 -> 1800 -> 1710
	if resp.FinalPrice != 1710 || resp.TotalSavings != 290 {
		t.Errorf("final/savings = %v/%v, want 1710/290", resp.FinalPrice, resp.TotalSavings)
	}
	if resp.OriginalPrice != 2000 {
		t.Errorf("original price = %v, want 2000", resp.OriginalPrice)
	}
}

func TestOptimizeDealsRejectsBadInput(t *testing.T) {
	h := testHandler(&stubOfferSource{})

	if rr := postJSON(t, h.OptimizeDeals, `not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rr.Code)
	}
	if rr := postJSON(t, h.OptimizeDeals, `{"deals":[],"base_price":0}`); rr.Code != http.StatusBadRequest {
		t.Errorf("zero base price: status = %d, want 400", rr.Code)
	}
}

func TestOptimizeDealsSourcesStoredOffers(t *testing.T) {
	src := &stubOfferSource{offers: []models.StoredOffer{{
		ID: "o1", ProductID: "p42", Title: "Feed coupon",
		DealType: "coupon", Value: 10, ValueType: "percentage",
		Confidence: 0.9, Stackable: true,
	}}}
	h := testHandler(src)

	rr := postJSON(t, h.OptimizeDeals, `{"base_price":1000,"product_id":"p42"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var resp OptimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.OptimizedDeals) != 1 || resp.OptimizedDeals[0].ID != "o1" {
		t.Fatalf("stored offer not optimized: %+v", resp.OptimizedDeals)
	}

	// second call must hit the cache, not the repo
	postJSON(t, h.OptimizeDeals, `{"base_price":1000,"product_id":"p42"}`)
	if src.listed != 1 {
		t.Errorf("repo listed %d times, want 1 (cache miss only)", src.listed)
	}
}

func TestValidateStackEndpoint(t *testing.T) {
	h := testHandler(&stubOfferSource{})

	rr := postJSON(t, h.ValidateStack, `{
		"base_price": 1000,
		"deals": [
			{"id":"a","title":"A","deal_type":"coupon","value":10,"value_type":"percentage"},
			{"id":"b","title":"B","deal_type":"coupon","value":5,"value_type":"percentage"}
		]
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var v models.StackValidation
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if v.Valid {
		t.Fatal("two coupons should not validate")
	}
	if !strings.Contains(v.Error, "not stackable") {
		t.Errorf("error = %q, want non-stackable mention", v.Error)
	}
}

func TestCreateOfferEndpoint(t *testing.T) {
	src := &stubOfferSource{}
	h := testHandler(src)

	rr := postJSON(t, h.CreateOffer, `{
		"product_id": "p1", "title": "New offer", "deal_type": "cashback",
		"value": 5, "value_type": "percentage", "platform": "amazon"
	}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if len(src.offers) != 1 {
		t.Fatalf("stored %d offers, want 1", len(src.offers))
	}
	// the handler assigns the ID; the offer source must receive it as-is
	if src.offers[0].ID == "" {
		t.Error("offer reached the source without an ID")
	}
	var created struct {
		OfferID string `json:"offer_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if created.OfferID != src.offers[0].ID {
		t.Errorf("response offer_id %q != stored ID %q", created.OfferID, src.offers[0].ID)
	}
	if src.offers[0].Confidence != 1.0 || !src.offers[0].Stackable {
		t.Errorf("defaults not applied: %+v", src.offers[0])
	}

	rr = postJSON(t, h.CreateOffer, `{"product_id":"p1","title":"Bad","deal_type":"mystery","value":5,"value_type":"percentage"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown deal_type: status = %d, want 400", rr.Code)
	}
}

func TestListOffersEndpoint(t *testing.T) {
	src := &stubOfferSource{offers: []models.StoredOffer{{
		ID: "o1", ProductID: "p1", Title: "Offer", DealType: "coupon",
		Value: 10, ValueType: "percentage", Confidence: 1, Stackable: true,
	}}}
	h := testHandler(src)

	req := httptest.NewRequest(http.MethodGet, "/deals/offers?product_id=p1", nil)
	rr := httptest.NewRecorder()
	h.ListOffers(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp struct {
		Offers []models.StoredOffer `json:"offers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Offers) != 1 || resp.Offers[0].ID != "o1" {
		t.Errorf("offers = %+v, want the stored one", resp.Offers)
	}

	req = httptest.NewRequest(http.MethodGet, "/deals/offers", nil)
	rr = httptest.NewRecorder()
	h.ListOffers(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing product_id: status = %d, want 400", rr.Code)
	}
}
