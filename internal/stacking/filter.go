package stacking

import (
	"strings"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

// filterEligible applies the eligibility rules in input order and returns
// the survivors. basePrice is the cart total the stack would apply to.
func filterEligible(deals []models.Deal, basePrice float64, userCtx *models.UserContext, minConfidence float64) []models.Deal {
	eligible := make([]models.Deal, 0, len(deals))

	for _, deal := range deals {
		if deal.MinPurchase != nil && basePrice < *deal.MinPurchase {
			continue
		}
		if deal.Confidence < minConfidence {
			continue
		}
		// Order-dependent on purpose: a non-stackable deal survives only
		// while nothing has been accepted yet, so the first one seen is
		// special. Product behavior to date depends on this single-pass
		// rule; do not rewrite it as a property of the accepted set.
		if !deal.Stackable && len(eligible) > 0 {
			continue
		}
		if !eligibleForUser(deal, userCtx) {
			continue
		}
		eligible = append(eligible, deal)
	}
	return eligible
}

// eligibleForUser checks profile-dependent rules. With no context at all,
// every deal passes, membership offers included.
func eligibleForUser(deal models.Deal, userCtx *models.UserContext) bool {
	if userCtx == nil {
		return true
	}

	if deal.DealType == models.DealTypeCardOffer && termsMentionCard(deal.Terms) && len(userCtx.Cards) == 0 {
		return false
	}
	if deal.DealType == models.DealTypeMembership && len(userCtx.Memberships) == 0 {
		return false
	}
	return true
}

func termsMentionCard(terms []string) bool {
	for _, term := range terms {
		if strings.Contains(strings.ToLower(term), "card") {
			return true
		}
	}
	return false
}
