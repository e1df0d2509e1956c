package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

type OfferRepo struct {
	db *sql.DB
}

func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// Insert stores one scraped offer under the caller-assigned ID.
func (r *OfferRepo) Insert(ctx context.Context, offer *models.StoredOffer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO retailer_offers
		(id, product_id, title, description, deal_type, value, value_type, code,
		 min_purchase, max_discount, valid_from, valid_until, platform,
		 confidence, stackable, terms, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW())
	`
	_, err = tx.ExecContext(ctx, query,
		offer.ID,
		offer.ProductID,
		offer.Title,
		offer.Description,
		offer.DealType,
		offer.Value,
		offer.ValueType,
		offer.Code,
		offer.MinPurchase,
		offer.MaxDiscount,
		offer.ValidFrom,
		offer.ValidUntil,
		offer.Platform,
		offer.Confidence,
		offer.Stackable,
		pq.Array(offer.Terms),
		offer.Priority,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// ListByProduct returns the stored feed for a product in insertion order.
func (r *OfferRepo) ListByProduct(ctx context.Context, productID string) ([]models.StoredOffer, error) {
	query := `
		SELECT id, product_id, title, description, deal_type, value, value_type, code,
		       min_purchase, max_discount, valid_from, valid_until, platform,
		       confidence, stackable, terms, priority, created_at
		FROM retailer_offers
		WHERE product_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var offers []models.StoredOffer
	for rows.Next() {
		var (
			o           models.StoredOffer
			description sql.NullString
			code        sql.NullString
			minPurchase sql.NullFloat64
			maxDiscount sql.NullFloat64
			validFrom   sql.NullTime
			validUntil  sql.NullTime
			platform    sql.NullString
			terms       pq.StringArray
		)
		if err := rows.Scan(
			&o.ID,
			&o.ProductID,
			&o.Title,
			&description,
			&o.DealType,
			&o.Value,
			&o.ValueType,
			&code,
			&minPurchase,
			&maxDiscount,
			&validFrom,
			&validUntil,
			&platform,
			&o.Confidence,
			&o.Stackable,
			&terms,
			&o.Priority,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.Description = description.String
		o.Code = code.String
		o.Platform = platform.String
		if minPurchase.Valid {
			v := minPurchase.Float64
			o.MinPurchase = &v
		}
		if maxDiscount.Valid {
			v := maxDiscount.Float64
			o.MaxDiscount = &v
		}
		if validFrom.Valid {
			t := validFrom.Time
			o.ValidFrom = &t
		}
		if validUntil.Valid {
			t := validUntil.Time
			o.ValidUntil = &t
		}
		o.Terms = []string(terms)
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
