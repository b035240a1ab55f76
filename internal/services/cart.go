package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	repository "github.com/farmcart/checkout-service/internal/repositories"
)

// CartService owns every cart mutation. Each operation reads the current
// cart, applies exactly one change and writes the result back, so the total
// is recomputed from the lines on every write and can never drift.
type CartService struct {
	logger *slog.Logger
	repo   *repository.CartRepository
}

func NewCartService(logger *slog.Logger, repo *repository.CartRepository) *CartService {
	return &CartService{logger: logger, repo: repo}
}

func (s *CartService) GetCart(ctx context.Context, buyerID string) (*models.Cart, error) {
	return s.repo.GetCart(ctx, buyerID)
}

// AddItem inserts the product at quantity 1, or bumps the quantity by one if
// the cart already holds a line for it.
func (s *CartService) AddItem(ctx context.Context, buyerID string, req *models.AddItemRequest) (*models.Cart, error) {

	item := models.CartItem{
		ProductID: req.ProductID,
		Slug:      req.Slug,
		Title:     req.Title,
		UnitPrice: req.UnitPrice,
		Quantity:  1,
	}

	if item.Key() == "" {
		return nil, errors.ValidationError("Product needs an id or a slug to be added to the cart")
	}

	cart, err := s.repo.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if existing, ok := cart.Items[item.Key()]; ok {
		existing.Quantity++
		cart.Items[item.Key()] = existing
	} else {
		cart.Items[item.Key()] = item
	}

	return s.writeBack(ctx, cart)
}

// DecreaseItem lowers the line's quantity by one and removes the line when it
// reaches zero. Decreasing a product that is not in the cart is a no-op.
func (s *CartService) DecreaseItem(ctx context.Context, buyerID, productKey string) (*models.Cart, error) {

	cart, err := s.repo.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	existing, ok := cart.Items[productKey]
	if !ok {
		return cart, nil
	}

	existing.Quantity--

	if existing.Quantity <= 0 {
		delete(cart.Items, productKey)
	} else {
		cart.Items[productKey] = existing
	}

	return s.writeBack(ctx, cart)
}

// RemoveItem drops the whole line regardless of quantity.
func (s *CartService) RemoveItem(ctx context.Context, buyerID, productKey string) (*models.Cart, error) {

	cart, err := s.repo.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	delete(cart.Items, productKey)

	return s.writeBack(ctx, cart)
}

// ClearCart empties the cart in one step.
func (s *CartService) ClearCart(ctx context.Context, buyerID string) error {

	cart := &models.Cart{
		BuyerID: buyerID,
		Items:   make(map[string]models.CartItem),
	}

	if _, err := s.writeBack(ctx, cart); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Cart cleared", slog.String("buyer_id", buyerID))

	return nil
}

func (s *CartService) writeBack(ctx context.Context, cart *models.Cart) (*models.Cart, error) {

	total := 0.0
	for _, item := range cart.Items {
		total += item.Subtotal()
	}

	cart.Total = total
	cart.UpdatedAt = time.Now()

	if err := s.repo.UpdateCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}
