package stacking

import (
	"math"
	"sort"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

// complexityDecay is the per-extra-deal multiplier on aggregate confidence.
const complexityDecay = 0.95

// Preference bonus weights per matching deal.
const (
	preferredTypeBonus     = 5.0
	preferredPlatformBonus = 2.0
)

// sortByApplicationOrder returns the stack sorted into application order.
// The sort is stable so equal-priority deals keep their input order.
func sortByApplicationOrder(deals []models.Deal, rules *Rules) []models.Deal {
	sorted := make([]models.Deal, len(deals))
	copy(sorted, deals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rules.priorityIndex(sorted[i].DealType) < rules.priorityIndex(sorted[j].DealType)
	})
	return sorted
}

// applyStack simulates applying the stack to basePrice in application order
// and returns (totalSavings, finalPrice, sortedDeals). Percentage deals cut
// the running price, not the original; the running price never drops below
// zero, so savings can never exceed the original price.
func applyStack(deals []models.Deal, rules *Rules, basePrice float64) (float64, float64, []models.Deal) {
	sorted := sortByApplicationOrder(deals, rules)

	currentPrice := basePrice
	totalSavings := 0.0

	for _, deal := range sorted {
		var discount float64
		switch deal.ValueType {
		case models.ValuePercentage:
			discount = currentPrice * deal.Value / 100
			if deal.MaxDiscount != nil && discount > *deal.MaxDiscount {
				discount = *deal.MaxDiscount
			}
		case models.ValueFixed:
			discount = math.Min(deal.Value, currentPrice)
		default:
			// points and anything future: taken at face value, no
			// conversion to currency.
			discount = deal.Value
		}

		currentPrice -= discount
		if currentPrice < 0 {
			currentPrice = 0
		}
		totalSavings += discount
	}
	return totalSavings, currentPrice, sorted
}

// stackConfidence aggregates per-deal confidence with a mild penalty for
// stacking complexity: avg * 0.95^(n-1).
func stackConfidence(deals []models.Deal) float64 {
	if len(deals) == 0 {
		return 0
	}
	sum := 0.0
	for _, deal := range deals {
		sum += deal.Confidence
	}
	avg := sum / float64(len(deals))
	return avg * math.Pow(complexityDecay, float64(len(deals)-1))
}

// preferenceBonus rewards stacks that match the user's historical tastes.
func preferenceBonus(deals []models.Deal, userCtx *models.UserContext) float64 {
	if userCtx == nil {
		return 0
	}
	bonus := 0.0
	for _, deal := range deals {
		if containsString(userCtx.PreferredDealTypes, string(deal.DealType)) {
			bonus += preferredTypeBonus
		}
		if deal.Platform != "" && containsString(userCtx.PreferredPlatforms, deal.Platform) {
			bonus += preferredPlatformBonus
		}
	}
	return bonus
}

// scoreStack is the selection metric: savings weighted by confidence, plus
// the preference bonus.
func scoreStack(deals []models.Deal, rules *Rules, basePrice float64, userCtx *models.UserContext) float64 {
	savings, _, _ := applyStack(deals, rules, basePrice)
	return savings*stackConfidence(deals) + preferenceBonus(deals, userCtx)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
