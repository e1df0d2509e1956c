package stacking

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

func TestParseDealsDropsBadRecordsKeepsRest(t *testing.T) {
	records := []models.DealRecord{
		{"id": "ok1", "deal_type": "coupon", "value": 10.0, "value_type": "percentage"},
		{"id": "bad_type", "deal_type": "mystery", "value": 5.0},
		{"id": "bad_value_type", "deal_type": "cashback", "value": 5.0, "value_type": "gold"},
		{"id": "bad_value", "deal_type": "cashback", "value": "ten percent", "value_type": "percentage"},
		{"id": "ok2", "deal_type": "cashback", "value": 5.0, "value_type": "fixed"},
	}

	deals := parseDeals(records, zap.NewNop())

	if len(deals) != 2 {
		t.Fatalf("parsed %d deals, want 2", len(deals))
	}
	if deals[0].ID != "ok1" || deals[1].ID != "ok2" {
		t.Errorf("survivors out of order: %s, %s", deals[0].ID, deals[1].ID)
	}
}

func TestParseDealDefaults(t *testing.T) {
	deals := parseDeals([]models.DealRecord{{"title": "bare"}}, zap.NewNop())
	if len(deals) != 1 {
		t.Fatalf("parsed %d deals, want 1", len(deals))
	}
	d := deals[0]
	if d.DealType != models.DealTypeCoupon {
		t.Errorf("default deal_type = %s, want coupon", d.DealType)
	}
	if d.ValueType != models.ValuePercentage {
		t.Errorf("default value_type = %s, want percentage", d.ValueType)
	}
	if d.Value != 0 {
		t.Errorf("default value = %v, want 0", d.Value)
	}
	if d.Confidence != 1.0 {
		t.Errorf("default confidence = %v, want 1.0", d.Confidence)
	}
	if !d.Stackable {
		t.Error("default stackable should be true")
	}
	if d.ID != "deal_0" {
		t.Errorf("default id = %q, want deal_0", d.ID)
	}
	if d.MinPurchase != nil || d.MaxDiscount != nil || d.ValidFrom != nil || d.ValidUntil != nil {
		t.Error("optional fields should default to unset")
	}
}

func TestParseDealNumericCoercion(t *testing.T) {
	records := []models.DealRecord{{
		"deal_type":    "cashback",
		"value":        "12.5",
		"value_type":   "percentage",
		"confidence":   0.75,
		"min_purchase": 500,
		"priority":     2.0,
	}}
	deals := parseDeals(records, zap.NewNop())
	if len(deals) != 1 {
		t.Fatalf("parsed %d deals, want 1", len(deals))
	}
	d := deals[0]
	if d.Value != 12.5 {
		t.Errorf("value = %v, want 12.5", d.Value)
	}
	if d.MinPurchase == nil || *d.MinPurchase != 500 {
		t.Errorf("min_purchase = %v, want 500", d.MinPurchase)
	}
	if d.Priority != 2 {
		t.Errorf("priority = %d, want 2", d.Priority)
	}
}

func TestParseDealOptionalFieldsLenient(t *testing.T) {
	// malformed optional fields are treated as unset, not fatal
	records := []models.DealRecord{{
		"deal_type":    "coupon",
		"value":        10.0,
		"value_type":   "percentage",
		"min_purchase": "a lot",
		"valid_until":  "next tuesday",
	}}
	deals := parseDeals(records, zap.NewNop())
	if len(deals) != 1 {
		t.Fatalf("parsed %d deals, want 1", len(deals))
	}
	if deals[0].MinPurchase != nil {
		t.Error("malformed min_purchase should be nil")
	}
	if deals[0].ValidUntil != nil {
		t.Error("malformed valid_until should be nil")
	}
}

func TestParseDealTimesAndTerms(t *testing.T) {
	until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []models.DealRecord{{
		"deal_type":   "card_offer",
		"value":       5.0,
		"value_type":  "percentage",
		"valid_until": until.Format(time.RFC3339),
		"terms":       []interface{}{"HDFC card required", 42, "online only"},
	}}
	deals := parseDeals(records, zap.NewNop())
	if len(deals) != 1 {
		t.Fatalf("parsed %d deals, want 1", len(deals))
	}
	d := deals[0]
	if d.ValidUntil == nil || !d.ValidUntil.Equal(until) {
		t.Errorf("valid_until = %v, want %v", d.ValidUntil, until)
	}
	if len(d.Terms) != 2 || d.Terms[0] != "HDFC card required" || d.Terms[1] != "online only" {
		t.Errorf("terms = %v, want the two string entries", d.Terms)
	}
}
