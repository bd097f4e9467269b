// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zodak/storefront-api/internal/domain/pricing"
	"github.com/zodak/storefront-api/internal/domain/product"
	"github.com/zodak/storefront-api/internal/notify"
)

// guestCartTTL is how long an untouched guest cart survives. User carts
// are kept without expiry.
const guestCartTTL = 24 * time.Hour

// Catalog supplies the product snapshot copied into a cart line at add
// time. Implemented by the product service.
type Catalog interface {
	SnapshotVariant(productID uint, size, color string) (*product.Snapshot, error)
}

// Service owns the load -> mutate -> persist cycle of session carts. A
// cart is touched by one request at a time within a browsing session;
// there is no cross-session sharing and no locking.
type Service struct {
	store    Store
	catalog  Catalog
	notifier notify.Notifier
	logger   *logrus.Logger
}

// NewService creates a new cart service.
func NewService(store Store, catalog Catalog, notifier notify.Notifier, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// AddRequest represents add to cart request
type AddRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateRequest represents update cart line request. Zero removes the line.
type UpdateRequest struct {
	Quantity int `json:"quantity"`
}

// ItemView is a cart line decorated with derived display fields.
type ItemView struct {
	pricing.Line
	LineTotal    decimal.Decimal `json:"line_total"`
	AtStockLimit bool            `json:"at_stock_limit"`
}

// Response represents a shopping cart with items and totals.
type Response struct {
	Items  []ItemView     `json:"items"`
	Totals pricing.Totals `json:"totals"`
	// Clamped is set on add/update responses when the requested quantity
	// exceeded the stock limit and was silently reduced.
	Clamped bool `json:"clamped,omitempty"`
}

// Get retrieves the cart for the user or guest session.
func (s *Service) Get(ctx context.Context, userID *uint, sessionID string) (*Response, error) {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, err
	}
	c := s.load(ctx, key)
	return s.respond(c, false), nil
}

// Add merges a product variant into the cart. The catalog snapshot
// (name, unit price, image, stock limit) is taken now and never
// refreshed. Emits an "Added ... to bag" notification.
func (s *Service) Add(ctx context.Context, userID *uint, sessionID string, req *AddRequest) (*Response, error) {
	snap, err := s.catalog.SnapshotVariant(req.ProductID, req.Size, req.Color)
	if err != nil {
		return nil, err
	}

	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, err
	}

	c := s.load(ctx, key)
	res := c.Add(pricing.LineInput{
		ProductID:  snap.ProductID,
		Name:       snap.Name,
		UnitPrice:  snap.UnitPrice,
		ImageRef:   snap.ImageRef,
		Size:       req.Size,
		Color:      req.Color,
		StockLimit: snap.StockLimit,
	}, req.Quantity)

	s.persist(ctx, key, c, userID)
	s.notifier.Notify(ctx, notifyKey(userID, sessionID), fmt.Sprintf("Added %s to bag", snap.Name))

	return s.respond(c, res.Clamped), nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
// Unknown line ids leave the cart untouched.
func (s *Service) UpdateQuantity(ctx context.Context, userID *uint, sessionID, lineID string, quantity int) (*Response, error) {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, err
	}

	c := s.load(ctx, key)
	wantClamp := false
	if line := c.Find(lineID); line != nil && quantity > line.StockLimit {
		wantClamp = true
	}
	if c.UpdateQuantity(lineID, quantity) {
		s.persist(ctx, key, c, userID)
	}

	return s.respond(c, wantClamp), nil
}

// Remove deletes a line and emits a removal notification when the line
// existed. Removing an unknown line is a no-op.
func (s *Service) Remove(ctx context.Context, userID *uint, sessionID, lineID string) (*Response, error) {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, err
	}

	c := s.load(ctx, key)
	if removed, ok := c.Remove(lineID); ok {
		s.persist(ctx, key, c, userID)
		s.notifier.Notify(ctx, notifyKey(userID, sessionID), fmt.Sprintf("Removed %s", removed.Name))
	}

	return s.respond(c, false), nil
}

// Clear empties the cart. Called by the order handler after a successful
// placement.
func (s *Service) Clear(ctx context.Context, userID *uint, sessionID string) error {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, key)
}

// Lines returns the raw cart lines for order creation. A guest without a
// session simply has an empty cart; placement then fails with the
// empty-cart error rather than a server error.
func (s *Service) Lines(ctx context.Context, userID *uint, sessionID string) ([]pricing.Line, error) {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, nil
	}
	return s.load(ctx, key).Lines(), nil
}

// MergeGuestCart folds a guest session cart into the user's cart after
// login, accumulating quantities line by line (clamped as usual), then
// drops the guest cart.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, sessionID string) (*Response, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required to merge guest cart")
	}

	guestKey := fmt.Sprintf("cart:session:%s", sessionID)
	userKey := fmt.Sprintf("cart:user:%d", userID)

	guest := s.load(ctx, guestKey)
	target := s.load(ctx, userKey)

	for _, line := range guest.Lines() {
		target.Add(pricing.LineInput{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			ImageRef:   line.ImageRef,
			Size:       line.Size,
			Color:      line.Color,
			StockLimit: line.StockLimit,
		}, line.Quantity)
	}

	uid := userID
	s.persist(ctx, userKey, target, &uid)
	if err := s.store.Delete(ctx, guestKey); err != nil {
		s.logger.WithError(err).WithField("key", guestKey).Warn("failed to drop guest cart after merge")
	}

	return s.respond(target, false), nil
}

func (s *Service) key(userID *uint, sessionID string) (string, error) {
	if userID != nil {
		return fmt.Sprintf("cart:user:%d", *userID), nil
	}
	if sessionID == "" {
		return "", fmt.Errorf("session ID required for guest cart")
	}
	return fmt.Sprintf("cart:session:%s", sessionID), nil
}

// notifyKey picks the notification channel with the same precedence as
// the cart key, so an authenticated request without a session cookie
// still gets its own channel instead of the empty one.
func notifyKey(userID *uint, sessionID string) string {
	if userID != nil {
		return fmt.Sprintf("user:%d", *userID)
	}
	return sessionID
}

// load deserializes the stored cart. A missing cart is an empty cart;
// corrupt payloads are logged and treated as empty rather than failing
// the request.
func (s *Service) load(ctx context.Context, key string) *pricing.Cart {
	data, err := s.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WithError(err).WithField("key", key).Warn("failed to load cart")
		}
		return pricing.NewCart()
	}

	var lines []pricing.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("corrupt cart payload, starting empty")
		return pricing.NewCart()
	}
	return pricing.FromLines(lines)
}

// persist writes the cart back. Persistence is best-effort: failures are
// logged and the in-memory cart remains the source of truth for the rest
// of the request.
func (s *Service) persist(ctx context.Context, key string, c *pricing.Cart, userID *uint) {
	data, err := json.Marshal(c.Lines())
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to serialize cart")
		return
	}

	ttl := guestCartTTL
	if userID != nil {
		ttl = 0
	}
	if err := s.store.Save(ctx, key, data, ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to persist cart")
	}
}

func (s *Service) respond(c *pricing.Cart, clamped bool) *Response {
	lines := c.Lines()
	items := make([]ItemView, len(lines))
	for i, line := range lines {
		items[i] = ItemView{
			Line:         line,
			LineTotal:    line.LineTotal().Round(2),
			AtStockLimit: line.AtStockLimit(),
		}
	}
	return &Response{
		Items:   items,
		Totals:  c.Totals().Rounded(),
		Clamped: clamped,
	}
}
