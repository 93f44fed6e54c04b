package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyOrder    = errors.New("order must contain at least one item")
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrOrderNotFound = errors.New("order not found")
)

// Service is the order ledger of one session. It holds the orders of a
// single partition at a time.
type Service interface {
	// PlaceOrder prices the supplied lines, records a Processing order paid
	// with the given method and prepends it to the current partition.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Order, error)

	// Orders returns the current partition, most recent first.
	Orders() []Order

	// GetByID looks an order up in the current partition.
	GetByID(id string) (Order, error)

	// ClearSessionOrders empties the current partition.
	ClearSessionOrders(ctx context.Context)

	// SwitchPartition replaces the in-memory list with the persisted list
	// of partition. Nothing is merged.
	SwitchPartition(ctx context.Context, partition string)

	Partition() string
}

type service struct {
	repo       Repository
	dispatcher EventDispatcher
	logger     log.FieldLogger
	now        func() time.Time

	mu        sync.RWMutex
	partition string
	orders    []Order
}

// NewService creates a ledger positioned on partition.
func NewService(ctx context.Context, repo Repository, dispatcher EventDispatcher, logger log.FieldLogger, partition string) Service {
	s := &service{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.WithField("store", "orders"),
		now:        time.Now,
	}
	s.SwitchPartition(ctx, partition)
	return s
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !req.Method.Valid() {
		return Order{}, errors.Wrapf(ErrInvalidMethod, "%q", req.Method)
	}

	var subtotal float64
	items := make([]Item, 0, len(req.Items))
	for _, line := range req.Items {
		subtotal += line.Product.Price * float64(line.Qty)
		it := Item{
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Size:      line.Size,
			Qty:       line.Qty,
			Price:     line.Product.Price,
			Images:    line.Product.Images,
			Team:      line.Product.Team,
			Sport:     line.Product.Sport,
			Custom:    line.Custom,
		}
		items = append(items, it.clone())
	}

	var shippingFee, discount float64
	if req.Pricing != nil {
		shippingFee = req.Pricing.Shipping
		discount = req.Pricing.Discount
	}

	o := Order{
		ID:        generateOrderNumber(s.now()),
		CreatedAt: s.now().UTC(),
		Status:    StatusProcessing,
		Payment: Payment{
			Method:    req.Method,
			Status:    PaymentPaid,
			Reference: req.Reference,
		},
		Totals: Totals{
			Subtotal: round2(subtotal),
			Shipping: round2(shippingFee),
			Discount: round2(discount),
			Total:    round2(subtotal + shippingFee - discount),
		},
		Items:    items,
		Shipping: req.Shipping,
	}

	s.mu.Lock()
	s.orders = append([]Order{o}, s.orders...)
	partition := s.partition
	snapshot := append([]Order(nil), s.orders...)
	s.mu.Unlock()

	s.persist(ctx, partition, snapshot)
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(OrderPlaced{Order: o.clone(), Partition: partition}); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Warn("dispatching order event")
		}
	}
	return o.clone(), nil
}

func (s *service) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.clone()
	}
	return out
}

func (s *service) GetByID(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.clone(), nil
		}
	}
	return Order{}, ErrOrderNotFound
}

func (s *service) ClearSessionOrders(ctx context.Context) {
	s.mu.Lock()
	s.orders = nil
	partition := s.partition
	s.mu.Unlock()

	s.persist(ctx, partition, nil)
}

func (s *service) SwitchPartition(ctx context.Context, partition string) {
	orders, err := s.repo.Load(ctx, partition)
	if err != nil {
		s.logger.WithError(err).WithField("partition", partition).Warn("loading orders, starting empty")
		orders = nil
	}

	s.mu.Lock()
	s.partition = partition
	s.orders = orders
	s.mu.Unlock()
}

func (s *service) Partition() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partition
}

func (s *service) persist(ctx context.Context, partition string, orders []Order) {
	if err := s.repo.Save(ctx, partition, orders); err != nil {
		s.logger.WithError(err).WithField("partition", partition).Warn("persisting orders")
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// generateOrderNumber creates a human-readable order number: JX-YYYYMMDD-XXXX
func generateOrderNumber(now time.Time) string {
	date := now.Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("JX-%s-%s", date, suffix)
}

func round2(v float64) float64 {
	if v < 0 {
		return -round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
