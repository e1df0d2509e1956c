package models

import "time"

// StoredOffer is a row of the scraped retailer-offer feed. The feed is
// host-service state that supplies the optimizer's candidate records; the
// optimizer itself never reads or writes storage.
//
// DealType and ValueType are kept as raw strings here: feed rows may carry
// values the engine does not recognize, and the stacking parser is the
// single place that decides what is valid.
type StoredOffer struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DealType    string     `json:"deal_type"`
	Value       float64    `json:"value"`
	ValueType   string     `json:"value_type"`
	Code        string     `json:"code,omitempty"`
	MinPurchase *float64   `json:"min_purchase,omitempty"`
	MaxDiscount *float64   `json:"max_discount,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Confidence  float64    `json:"confidence"`
	Stackable   bool       `json:"stackable"`
	Terms       []string   `json:"terms,omitempty"`
	Priority    int        `json:"priority,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Record converts the stored row into the loose input shape the optimizer
// consumes.
func (o StoredOffer) Record() DealRecord {
	rec := DealRecord{
		"id":          o.ID,
		"title":       o.Title,
		"description": o.Description,
		"deal_type":   o.DealType,
		"value":       o.Value,
		"value_type":  o.ValueType,
		"code":        o.Code,
		"platform":    o.Platform,
		"confidence":  o.Confidence,
		"stackable":   o.Stackable,
		"terms":       o.Terms,
		"priority":    o.Priority,
	}
	if o.MinPurchase != nil {
		rec["min_purchase"] = *o.MinPurchase
	}
	if o.MaxDiscount != nil {
		rec["max_discount"] = *o.MaxDiscount
	}
	if o.ValidFrom != nil {
		rec["valid_from"] = *o.ValidFrom
	}
	if o.ValidUntil != nil {
		rec["valid_until"] = *o.ValidUntil
	}
	return rec
}
