package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/mascotienda/backend-tienda/internal/delivery"
)

var (
	// ErrNotFound is returned when the cart does not exist or has expired.
	ErrNotFound = errors.New("cart not found")
	// ErrLineNotFound is returned when the referenced line is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQty is returned when a quantity is zero or negative.
	ErrInvalidQty = errors.New("quantity must be a positive integer")
	// ErrInvalidPrice is returned when a unit price is negative.
	ErrInvalidPrice = errors.New("unit price must not be negative")
)

// Cart is one checkout session. It is single-writer: only the active session
// mutates it, so no cross-request locking is needed.
type Cart struct {
	ID          string          `json:"id"`
	Lines       []Line          `json:"lines"`
	CouponCode  string          `json:"couponCode,omitempty"`
	Destination json.RawMessage `json:"destination,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Dest decodes the stored destination, if any.
func (c Cart) Dest() (delivery.Destination, error) {
	if len(c.Destination) == 0 {
		return nil, nil
	}
	return delivery.UnmarshalDestination(c.Destination)
}

// Service stores cart sessions as JSON documents in Redis with a sliding TTL.
type Service struct {
	R   *redis.Client
	TTL time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func cartKey(id string) string { return "cart:" + id }

// Create starts a new empty cart session.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	now := s.now()
	c := Cart{ID: uuid.NewString(), Lines: []Line{}, CreatedAt: now, UpdatedAt: now}
	if err := s.save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// AddItem appends a line, merging with an existing line of the same product
// and size. Zero or negative quantities are rejected here, at the point the
// line enters the cart.
func (s *Service) AddItem(ctx context.Context, id string, line Line) (Cart, error) {
	if line.Qty <= 0 {
		return Cart{}, ErrInvalidQty
	}
	if line.UnitPrice.IsNegative() {
		return Cart{}, ErrInvalidPrice
	}
	if strings.TrimSpace(line.ProductID) == "" {
		return Cart{}, errors.New("productId is required")
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	merged := false
	for i, existing := range c.Lines {
		if existing.ProductID == line.ProductID && existing.SizeLabel == line.SizeLabel {
			c.Lines[i].Qty += line.Qty
			merged = true
			break
		}
	}
	if !merged {
		c.Lines = append(c.Lines, line)
	}
	return s.persist(ctx, c)
}

// UpdateItem changes the quantity of a line. Removal is explicit via
// RemoveItem, so non-positive quantities are rejected.
func (s *Service) UpdateItem(ctx context.Context, id, productID, sizeLabel string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, ErrInvalidQty
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	for i, existing := range c.Lines {
		if existing.ProductID == productID && existing.SizeLabel == sizeLabel {
			c.Lines[i].Qty = qty
			return s.persist(ctx, c)
		}
	}
	return Cart{}, ErrLineNotFound
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, id, productID, sizeLabel string) (Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	for i, existing := range c.Lines {
		if existing.ProductID == productID && existing.SizeLabel == sizeLabel {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return s.persist(ctx, c)
		}
	}
	return Cart{}, ErrLineNotFound
}

// ApplyCoupon records the entered code on the cart. Resolution happens at
// quote and checkout time against the live registry; an unknown code simply
// resolves to a zero discount there.
func (s *Service) ApplyCoupon(ctx context.Context, id, code string) (Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	c.CouponCode = strings.TrimSpace(code)
	return s.persist(ctx, c)
}

// RemoveCoupon clears any applied code.
func (s *Service) RemoveCoupon(ctx context.Context, id string) (Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	c.CouponCode = ""
	return s.persist(ctx, c)
}

// SetDestination stores the chosen delivery destination.
func (s *Service) SetDestination(ctx context.Context, id string, dest delivery.Destination) (Cart, error) {
	encoded, err := delivery.MarshalDestination(dest)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	c.Destination = encoded
	return s.persist(ctx, c)
}

func (s *Service) persist(ctx context.Context, c Cart) (Cart, error) {
	c.UpdatedAt = s.now()
	if err := s.save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c Cart) error {
	if s == nil || s.R == nil {
		return errors.New("cart service not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if err := s.R.Set(ctx, cartKey(c.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
