package stacking

import "github.com/stacksmart/deal-stacking-service/internal/models"

// CompatibilityRule classifies an unordered pair of deal types.
type CompatibilityRule int

const (
	// RuleConditional is the default for any pair not in the table.
	// It is treated as allowed during validation; only Exclusive vetoes.
	RuleConditional CompatibilityRule = iota
	RuleStackable
	RuleExclusive
)

type typePair struct {
	a, b models.DealType
}

// Rules holds the compatibility matrix and the application priority order.
// Built once at startup, read-only afterwards, safe for concurrent use.
type Rules struct {
	matrix   map[typePair]CompatibilityRule
	priority map[models.DealType]int
}

// applicationOrder fixes the sequence in which stacked deals hit the
// running price: memberships first, cashback-style offers near the end.
var applicationOrder = []models.DealType{
	models.DealTypeMembership,
	models.DealTypeBundle,
	models.DealTypeDiscount,
	models.DealTypeCoupon,
	models.DealTypeCardOffer,
	models.DealTypeCashback,
	models.DealTypeWalletOffer,
	models.DealTypeReferral,
}

var stackablePairs = []typePair{
	{models.DealTypeCoupon, models.DealTypeCashback},
	{models.DealTypeCoupon, models.DealTypeCardOffer},
	{models.DealTypeCoupon, models.DealTypeWalletOffer},
	{models.DealTypeDiscount, models.DealTypeCashback},
	{models.DealTypeDiscount, models.DealTypeCardOffer},
	{models.DealTypeCashback, models.DealTypeCardOffer},
	{models.DealTypeCashback, models.DealTypeWalletOffer},
	{models.DealTypeMembership, models.DealTypeCoupon},
	{models.DealTypeMembership, models.DealTypeCashback},
	{models.DealTypeReferral, models.DealTypeCoupon},
}

// Two of a kind never stack for coupons and store discounts, and bundle
// pricing already folds those in.
var exclusivePairs = []typePair{
	{models.DealTypeCoupon, models.DealTypeCoupon},
	{models.DealTypeDiscount, models.DealTypeDiscount},
	{models.DealTypeBundle, models.DealTypeCoupon},
	{models.DealTypeBundle, models.DealTypeDiscount},
}

// DefaultRules builds the immutable rule set.
func DefaultRules() *Rules {
	r := &Rules{
		matrix:   make(map[typePair]CompatibilityRule),
		priority: make(map[models.DealType]int, len(applicationOrder)),
	}
	for _, p := range stackablePairs {
		r.matrix[p] = RuleStackable
		r.matrix[typePair{p.b, p.a}] = RuleStackable
	}
	for _, p := range exclusivePairs {
		r.matrix[p] = RuleExclusive
		r.matrix[typePair{p.b, p.a}] = RuleExclusive
	}
	for i, t := range applicationOrder {
		r.priority[t] = i
	}
	return r
}

// Compatibility looks up a pair; unlisted pairs are Conditional.
func (r *Rules) Compatibility(a, b models.DealType) CompatibilityRule {
	return r.matrix[typePair{a, b}]
}

// priorityIndex returns the application rank of a deal type.
func (r *Rules) priorityIndex(t models.DealType) int {
	return r.priority[t]
}

// compatibleStack reports whether no pair in the set is Exclusive.
func (r *Rules) compatibleStack(deals []models.Deal) bool {
	for i := 0; i < len(deals); i++ {
		for j := i + 1; j < len(deals); j++ {
			if r.Compatibility(deals[i].DealType, deals[j].DealType) == RuleExclusive {
				return false
			}
		}
	}
	return true
}
