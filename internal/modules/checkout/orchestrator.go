// Package checkout drives the four-step checkout wizard from accepted terms
// to a placed order.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
)

var (
	ErrTermsNotAccepted = errors.New("terms must be accepted")
	ErrWrongStep        = errors.New("not available at this step")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoMethod         = errors.New("choose a payment method")
)

// Cart is the part of the cart store checkout uses.
type Cart interface {
	Detailed() []cart.DetailedLine
	ReplaceWithSingle(ctx context.Context, productID, size string, qty int, snap *catalog.Snapshot, custom *cart.Customization)
	Clear(ctx context.Context)
}

// Deps are the collaborators of an Orchestrator. OnComplete runs after an
// order is placed and defaults to clearing the cart.
type Deps struct {
	Cart        Cart
	Ledger      order.Service
	Payments    payment.Service
	ETA         ETAPolicy
	Adjustments order.Adjustments
	OnComplete  func(ctx context.Context)
	Logger      log.FieldLogger
}

// Orchestrator is the checkout wizard of one session.
type Orchestrator struct {
	cart        Cart
	ledger      order.Service
	payments    payment.Service
	eta         ETAPolicy
	adjustments order.Adjustments
	onComplete  func(ctx context.Context)
	logger      log.FieldLogger
	now         func() time.Time

	mu       sync.Mutex
	step     Step
	accepted bool
	details  Details
	method   payment.Method
}

func NewOrchestrator(deps Deps) *Orchestrator {
	o := &Orchestrator{
		cart:        deps.Cart,
		ledger:      deps.Ledger,
		payments:    deps.Payments,
		eta:         deps.ETA,
		adjustments: deps.Adjustments,
		onComplete:  deps.OnComplete,
		logger:      deps.Logger,
		now:         time.Now,
	}
	if o.eta == nil {
		o.eta = FixedETA(DefaultDeliveryDays)
	}
	if o.onComplete == nil {
		o.onComplete = func(ctx context.Context) { o.cart.Clear(ctx) }
	}
	if o.logger == nil {
		o.logger = log.StandardLogger()
	}
	o.logger = o.logger.WithField("component", "checkout")
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	lines := o.cart.Detailed()
	return State{
		Step:     o.step,
		Accepted: o.accepted,
		Details:  o.details,
		Method:   o.method,
		Items:    len(lines),
		Amount:   o.amount(lines),
	}
}

func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *Orchestrator) AcceptTerms(accepted bool) {
	o.mu.Lock()
	o.accepted = accepted
	o.mu.Unlock()
}

// SetDetails stores the form and returns its field errors, if any. The
// step does not change.
func (o *Orchestrator) SetDetails(d Details) FieldErrors {
	o.mu.Lock()
	o.details = d
	o.mu.Unlock()
	return ValidateDetails(d)
}

// Next moves one step right when the current step's guard passes. At
// Payment it does nothing.
func (o *Orchestrator) Next() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.step {
	case StepTerms:
		if !o.accepted {
			return ErrTermsNotAccepted
		}
	case StepDetails:
		if errs := ValidateDetails(o.details); errs != nil {
			return &ValidationError{Fields: errs}
		}
	case StepPayment:
		return nil
	}
	o.step++
	return nil
}

// Back moves one step left; at Terms it does nothing.
func (o *Orchestrator) Back() {
	o.mu.Lock()
	if o.step > StepTerms {
		o.step--
	}
	o.mu.Unlock()
}

func (o *Orchestrator) SelectMethod(m payment.Method) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepPayment {
		return ErrWrongStep
	}
	if !m.Valid() {
		return errors.Wrapf(payment.ErrUnsupportedMethod, "%q", m)
	}
	o.method = m
	return nil
}

// Amount is what the payment step charges: cart total plus configured
// shipping less discount.
func (o *Orchestrator) Amount() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.amount(o.cart.Detailed())
}

func (o *Orchestrator) amount(lines []cart.DetailedLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total + o.adjustments.Shipping - o.adjustments.Discount
}

// Pay runs the selected gateway and, when it succeeds, places the order,
// runs the completion hook and restarts the wizard. req.Method overrides
// the selected method when set; req.Amount is ignored.
func (o *Orchestrator) Pay(ctx context.Context, req payment.Request) (Confirmation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepPayment {
		return Confirmation{}, ErrWrongStep
	}
	if req.Method == "" {
		req.Method = o.method
	}
	if req.Method == "" {
		return Confirmation{}, ErrNoMethod
	}
	lines := o.cart.Detailed()
	if len(lines) == 0 {
		return Confirmation{}, ErrEmptyCart
	}
	req.Amount = o.amount(lines)

	receipt, err := o.payments.Pay(ctx, &req)
	if err != nil {
		return Confirmation{}, err
	}

	adjustments := o.adjustments
	placed, err := o.ledger.PlaceOrder(ctx, order.PlaceOrderRequest{
		Items: lines,
		Shipping: order.Shipping{
			Name:       o.details.Name,
			Email:      o.details.Email,
			Address:    o.details.Address,
			City:       o.details.City,
			PostalCode: o.details.PostalCode,
		},
		Method:    req.Method,
		Reference: receipt.Reference,
		Pricing:   &adjustments,
	})
	if err != nil {
		return Confirmation{}, errors.Wrap(err, "placing order")
	}
	o.logger.WithField("order_id", placed.ID).Info("order placed")

	o.onComplete(ctx)
	o.reset()

	eta := o.eta(o.now(), req.Method)
	conf := Confirmation{
		OrderID:   placed.ID,
		Items:     make([]ConfirmationItem, 0, len(placed.Items)),
		Total:     placed.Totals.Total,
		ETA:       eta,
		ETALabel:  ETALabel(eta),
		Reference: receipt.Reference,
	}
	for _, it := range placed.Items {
		conf.Items = append(conf.Items, ConfirmationItem{Name: it.Name, Size: it.Size, Qty: it.Qty, Price: it.Price})
	}
	return conf, nil
}

// BuyNow replaces the cart with one line and restarts the wizard so the
// impulse purchase is checked out alone.
func (o *Orchestrator) BuyNow(ctx context.Context, productID, size string, qty int, snap *catalog.Snapshot, custom *cart.Customization) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.ReplaceWithSingle(ctx, productID, size, qty, snap, custom)
	o.reset()
}

// Reset returns to Terms and forgets the form.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.reset()
	o.mu.Unlock()
}

func (o *Orchestrator) reset() {
	o.step = StepTerms
	o.accepted = false
	o.details = Details{}
	o.method = ""
}
