package cache

import (
	"sync"

	"github.com/stacksmart/deal-stacking-service/internal/models"
)

// OfferCache keeps recently fetched offer feeds keyed by product ID so the
// optimize path does not hit the store on every request.
type OfferCache struct {
	mu    sync.RWMutex
	store map[string][]models.StoredOffer
}

func NewOfferCache() *OfferCache {
	return &OfferCache{
		store: make(map[string][]models.StoredOffer),
	}
}

func (c *OfferCache) Get(productID string) ([]models.StoredOffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	offers, ok := c.store[productID]
	return offers, ok
}

func (c *OfferCache) Set(productID string, offers []models.StoredOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[productID] = offers
}

// Invalidate drops a product's cached feed, e.g. after an ingest.
func (c *OfferCache) Invalidate(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, productID)
}
