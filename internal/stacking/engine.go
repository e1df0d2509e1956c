package stacking

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/concurrency"
	"github.com/stacksmart/deal-stacking-service/internal/models"
)

// scoringWorkers bounds the fan-out used when scoring candidate stacks.
const scoringWorkers = 4

// Config bounds the optimizer's search. Zero values fall back to defaults.
type Config struct {
	// MaxStackSize caps how many deals one stack may combine.
	MaxStackSize int
	// MinConfidence is the eligibility floor on per-deal confidence.
	MinConfidence float64
	// MaxEligibleDeals caps how many eligible deals enter subset
	// generation; the search is exhaustive, so this is the lever that
	// keeps a single request's CPU bounded.
	MaxEligibleDeals int
}

func DefaultConfig() Config {
	return Config{
		MaxStackSize:     5,
		MinConfidence:    0.6,
		MaxEligibleDeals: 12,
	}
}

// Engine finds the highest-value compatible stack of deals for a cart
// price. It holds only immutable rule tables and is safe for concurrent
// use; every call is a pure function of its arguments.
type Engine struct {
	rules *Rules
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
}

func NewEngine(cfg Config, log *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.MaxStackSize <= 0 {
		cfg.MaxStackSize = def.MaxStackSize
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.MaxEligibleDeals <= 0 {
		cfg.MaxEligibleDeals = def.MaxEligibleDeals
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		rules: DefaultRules(),
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Optimize searches for the best compatible subset of the candidate deals
// against basePrice. It never returns an error: malformed records are
// dropped, and an infeasible search degrades to a zero-savings result with
// an explanatory warning.
func (e *Engine) Optimize(records []models.DealRecord, basePrice float64, userCtx *models.UserContext) models.StackedDealResult {
	start := e.now()

	deals := parseDeals(records, e.log)
	eligible := filterEligible(deals, basePrice, userCtx, e.cfg.MinConfidence)

	var warnings []string
	if len(eligible) > e.cfg.MaxEligibleDeals {
		e.log.Warn("eligible deals exceed search cap, truncating",
			zap.Int("eligible", len(eligible)),
			zap.Int("cap", e.cfg.MaxEligibleDeals))
		eligible = eligible[:e.cfg.MaxEligibleDeals]
		warnings = append(warnings,
			fmt.Sprintf("Considered only the first %d eligible deals", e.cfg.MaxEligibleDeals))
	}

	combos := generateCombinations(eligible, e.rules, e.cfg.MaxStackSize)
	best := e.selectBest(combos, basePrice, userCtx)

	result := e.assembleResult(best, basePrice, warnings, start)
	e.log.Info("optimized deal stack",
		zap.Int("candidates", len(records)),
		zap.Int("eligible", len(eligible)),
		zap.Int("combinations", len(combos)),
		zap.Int("selected", len(result.Deals)),
		zap.Float64("total_savings", result.TotalSavings))
	return result
}

// selectBest scores every candidate stack and keeps the first one whose
// score strictly beats the running best, so ties resolve to the earliest
// combination in generation order. Scoring fans out across workers into an
// index-addressed slice; the deterministic selection scan happens after.
func (e *Engine) selectBest(combos [][]models.Deal, basePrice float64, userCtx *models.UserContext) []models.Deal {
	if len(combos) == 0 {
		return nil
	}

	scores := make([]float64, len(combos))
	concurrency.FanOut(scoringWorkers, len(combos), func(i int) {
		scores[i] = scoreStack(combos[i], e.rules, basePrice, userCtx)
	})

	bestIdx := -1
	bestScore := 0.0
	for i, score := range scores {
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	return combos[bestIdx]
}

func (e *Engine) assembleResult(best []models.Deal, basePrice float64, warnings []string, start time.Time) models.StackedDealResult {
	if len(best) == 0 {
		return models.StackedDealResult{
			Deals:            []models.Deal{},
			TotalSavings:     0,
			FinalPrice:       basePrice,
			OriginalPrice:    basePrice,
			Confidence:       0,
			ApplicationOrder: []string{},
			Warnings:         append(warnings, "No valid deal combinations found"),
			ProcessingTime:   e.now().Sub(start).Seconds(),
		}
	}

	totalSavings, finalPrice, sorted := applyStack(best, e.rules, basePrice)
	confidence := stackConfidence(best)

	applicationOrder := make([]string, len(sorted))
	for i, deal := range sorted {
		applicationOrder[i] = fmt.Sprintf("%s: %s", deal.DealType, deal.Title)
	}

	if len(best) > 3 {
		warnings = append(warnings, "Complex deal stack - verify all terms apply")
	}
	if confidence < 0.8 {
		warnings = append(warnings, "Some deals have lower confidence - double-check availability")
	}
	warnings = append(warnings, e.stackWarnings(sorted)...)
	if warnings == nil {
		warnings = []string{}
	}

	return models.StackedDealResult{
		Deals:            best,
		TotalSavings:     totalSavings,
		FinalPrice:       finalPrice,
		OriginalPrice:    basePrice,
		Confidence:       confidence,
		ApplicationOrder: applicationOrder,
		Warnings:         warnings,
		ProcessingTime:   e.now().Sub(start).Seconds(),
	}
}

// ValidateStack checks a caller-chosen stack as-is: no eligibility filter
// and no search, just pairwise compatibility plus the savings simulation.
func (e *Engine) ValidateStack(records []models.DealRecord, basePrice float64) models.StackValidation {
	deals := parseDeals(records, e.log)

	if !e.rules.compatibleStack(deals) {
		return models.StackValidation{
			Valid:    false,
			Error:    "Deal combination is not stackable",
			Warnings: []string{},
		}
	}

	totalSavings, finalPrice, sorted := applyStack(deals, e.rules, basePrice)
	warnings := e.stackWarnings(sorted)
	if warnings == nil {
		warnings = []string{}
	}

	return models.StackValidation{
		Valid:        true,
		TotalSavings: totalSavings,
		FinalPrice:   finalPrice,
		Confidence:   stackConfidence(deals),
		Warnings:     warnings,
	}
}

// stackWarnings flags deals expiring within 24 hours and surfaces the
// combined minimum-purchase requirement of the stack.
func (e *Engine) stackWarnings(deals []models.Deal) []string {
	var warnings []string

	cutoff := e.now().Add(24 * time.Hour)
	for _, deal := range deals {
		if deal.ValidUntil != nil && deal.ValidUntil.Before(cutoff) {
			warnings = append(warnings, fmt.Sprintf("Deal '%s' expires soon", deal.Title))
		}
	}

	totalMinPurchase := 0.0
	for _, deal := range deals {
		if deal.MinPurchase != nil {
			totalMinPurchase += *deal.MinPurchase
		}
	}
	if totalMinPurchase > 0 {
		warnings = append(warnings, fmt.Sprintf("Minimum purchase requirement: ₹%g", totalMinPurchase))
	}
	return warnings
}
