package models

import (
	"fmt"
	"time"
)

// DealType is the closed set of discount instruments the engine knows about.
type DealType string

const (
	DealTypeCoupon      DealType = "coupon"
	DealTypeCashback    DealType = "cashback"
	DealTypeDiscount    DealType = "discount"
	DealTypeCardOffer   DealType = "card_offer"
	DealTypeWalletOffer DealType = "wallet_offer"
	DealTypeMembership  DealType = "membership"
	DealTypeReferral    DealType = "referral"
	DealTypeBundle      DealType = "bundle"
)

// ParseDealType rejects anything outside the closed set.
func ParseDealType(s string) (DealType, error) {
	switch DealType(s) {
	case DealTypeCoupon, DealTypeCashback, DealTypeDiscount, DealTypeCardOffer,
		DealTypeWalletOffer, DealTypeMembership, DealTypeReferral, DealTypeBundle:
		return DealType(s), nil
	}
	return "", fmt.Errorf("unknown deal_type %q", s)
}

// ValueType says how a deal's value is interpreted against the running price.
type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueFixed      ValueType = "fixed"
	ValuePoints     ValueType = "points"
)

func ParseValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case ValuePercentage, ValueFixed, ValuePoints:
		return ValueType(s), nil
	}
	return "", fmt.Errorf("unknown value_type %q", s)
}

// DealRecord is the loosely-typed input shape handed to the optimizer by
// upstream collaborators (scraped feeds, extension payloads). Any key may
// be absent or the wrong type; the parser decides what survives.
type DealRecord map[string]interface{}

// Deal is a single validated candidate offer. Immutable once parsed.
type Deal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DealType    DealType   `json:"deal_type"`
	Value       float64    `json:"value"`
	ValueType   ValueType  `json:"value_type"`
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
}

// UserContext carries the caller's profile hints used by eligibility
// filtering and preference scoring. All fields default to empty.
type UserContext struct {
	Cards              []string `json:"cards,omitempty"`
	Memberships        []string `json:"memberships,omitempty"`
	PreferredDealTypes []string `json:"preferred_deal_types,omitempty"`
	PreferredPlatforms []string `json:"preferred_platforms,omitempty"`
}
