package stacking

import "github.com/stacksmart/deal-stacking-service/internal/models"

// generateCombinations enumerates candidate stacks: every singleton, then
// every size-k subset for k = 2..min(n, maxStackSize), in lexicographic
// order over input indices. Subsets containing an Exclusive pair are pruned
// during construction rather than generated and rejected, so everything
// returned is already a compatible stack. Enumeration order is fixed; the
// selector's first-found tie-breaking depends on it.
func generateCombinations(deals []models.Deal, rules *Rules, maxStackSize int) [][]models.Deal {
	var combos [][]models.Deal

	for _, deal := range deals {
		combos = append(combos, []models.Deal{deal})
	}

	maxSize := maxStackSize
	if len(deals) < maxSize {
		maxSize = len(deals)
	}
	for size := 2; size <= maxSize; size++ {
		combos = appendCombosOfSize(combos, deals, rules, size)
	}
	return combos
}

func appendCombosOfSize(combos [][]models.Deal, deals []models.Deal, rules *Rules, size int) [][]models.Deal {
	current := make([]models.Deal, 0, size)

	var extend func(start int)
	extend = func(start int) {
		if len(current) == size {
			stack := make([]models.Deal, size)
			copy(stack, current)
			combos = append(combos, stack)
			return
		}
		for i := start; i < len(deals); i++ {
			if clashes(deals[i], current, rules) {
				continue
			}
			current = append(current, deals[i])
			extend(i + 1)
			current = current[:len(current)-1]
		}
	}
	extend(0)
	return combos
}

// clashes reports whether adding candidate to the partial stack would
// introduce an Exclusive pair.
func clashes(candidate models.Deal, partial []models.Deal, rules *Rules) bool {
	for _, member := range partial {
		if rules.Compatibility(member.DealType, candidate.DealType) == RuleExclusive {
			return true
		}
	}
	return false
}
