package repository

import (
	"context"
	"sync"
	"time"

	"github.com/farmcart/checkout-service/internal/models"
)

// CartRepository holds the per-buyer carts in memory. Carts live until
// checkout succeeds; nothing here survives a restart, which matches the
// cart's lifecycle (retained across navigation, not across sessions).
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*models.Cart)}
}

// GetCart returns a copy of the buyer's cart, creating an empty one on first
// access. Mutations go through UpdateCart so that one mutation completes
// before the next is observed.
func (r *CartRepository) GetCart(ctx context.Context, buyerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[buyerID]
	if !ok {
		cart = &models.Cart{
			BuyerID:   buyerID,
			Items:     make(map[string]models.CartItem),
			UpdatedAt: time.Now(),
		}
		r.carts[buyerID] = cart
	}

	return cart.Clone(), nil
}

func (r *CartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.BuyerID] = cart.Clone()

	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, buyerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, buyerID)

	return nil
}
