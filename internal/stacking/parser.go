package stacking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

// parseDeals converts loose records into validated Deals. A record with an
// unrecognized deal_type/value_type or an unparsable value/confidence is
// dropped and logged; a bad record is never fatal to the batch. Relative
// order of the survivors matches the input.
func parseDeals(records []models.DealRecord, log *zap.Logger) []models.Deal {
	deals := make([]models.Deal, 0, len(records))

	for _, rec := range records {
		deal, err := parseDeal(rec, len(deals))
		if err != nil {
			log.Warn("dropping unparsable deal record", zap.Error(err))
			continue
		}
		deals = append(deals, deal)
	}
	return deals
}

func parseDeal(rec models.DealRecord, ordinal int) (models.Deal, error) {
	dealType, err := models.ParseDealType(stringField(rec, "deal_type", string(models.DealTypeCoupon)))
	if err != nil {
		return models.Deal{}, err
	}
	valueType, err := models.ParseValueType(stringField(rec, "value_type", string(models.ValuePercentage)))
	if err != nil {
		return models.Deal{}, err
	}
	value, err := floatField(rec, "value", 0)
	if err != nil {
		return models.Deal{}, fmt.Errorf("value: %w", err)
	}
	confidence, err := floatField(rec, "confidence", 1.0)
	if err != nil {
		return models.Deal{}, fmt.Errorf("confidence: %w", err)
	}

	return models.Deal{
		ID:          stringField(rec, "id", fmt.Sprintf("deal_%d", ordinal)),
		Title:       stringField(rec, "title", ""),
		Description: stringField(rec, "description", ""),
		DealType:    dealType,
		Value:       value,
		ValueType:   valueType,
		Code:        stringField(rec, "code", ""),
		MinPurchase: optionalFloat(rec, "min_purchase"),
		MaxDiscount: optionalFloat(rec, "max_discount"),
		ValidFrom:   optionalTime(rec, "valid_from"),
		ValidUntil:  optionalTime(rec, "valid_until"),
		Platform:    stringField(rec, "platform", ""),
		Confidence:  confidence,
		Stackable:   boolField(rec, "stackable", true),
		Terms:       stringListField(rec, "terms"),
		Priority:    intField(rec, "priority", 0),
	}, nil
}

func stringField(rec models.DealRecord, key, def string) string {
	if v, ok := rec[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func boolField(rec models.DealRecord, key string, def bool) bool {
	if v, ok := rec[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// floatField coerces the numeric shapes JSON decoding produces.
func floatField(rec models.DealRecord, key string, def float64) (float64, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return def, nil
	}
	return coerceFloat(v)
}

func coerceFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func intField(rec models.DealRecord, key string, def int) int {
	if v, ok := rec[key]; ok && v != nil {
		if f, err := coerceFloat(v); err == nil {
			return int(f)
		}
	}
	return def
}

// optionalFloat returns nil when the field is absent or malformed.
func optionalFloat(rec models.DealRecord, key string) *float64 {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	f, err := coerceFloat(v)
	if err != nil {
		return nil
	}
	return &f
}

// optionalTime accepts RFC3339 strings; anything else is treated as unset.
func optionalTime(rec models.DealRecord, key string) *time.Time {
	v, ok := rec[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func stringListField(rec models.DealRecord, key string) []string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
