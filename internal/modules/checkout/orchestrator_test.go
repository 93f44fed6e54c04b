package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

type checkoutFixture struct {
	orch   *Orchestrator
	cart   *cart.Store
	ledger order.Service
}

func setupCheckoutTest(t *testing.T) checkoutFixture {
	t.Helper()
	ctx := context.Background()
	logger := logging.Discard()
	store := storage.NewMemory()

	carts := cart.NewStore(ctx, store, nil, logger)
	ledger := order.NewService(ctx, order.NewStoreRepository(store), order.LogDispatcher{Logger: logger}, logger, "jerseyx_orders_guest")
	upi := payment.UPIConfig{PayeeVPA: "jerseyx@upi", PayeeName: "JerseyX"}
	payments := payment.NewService(payment.NewRegistry(upi), upi)

	orch := NewOrchestrator(Deps{Cart: carts, Ledger: ledger, Payments: payments, Logger: logger})
	orch.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return checkoutFixture{orch: orch, cart: carts, ledger: ledger}
}

func nyHome() *catalog.Snapshot {
	p, _ := catalog.StaticProduct("FB-NY-01")
	snap := p.Snapshot()
	return &snap
}

func validDetails() Details {
	return Details{
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Phone:      "9999999999",
		Address:    "12 MG Road",
		City:       "Bengaluru",
		PostalCode: "560001",
	}
}

func toPayment(t *testing.T, o *Orchestrator) {
	t.Helper()
	o.AcceptTerms(true)
	require.NoError(t, o.Next())
	require.Nil(t, o.SetDetails(validDetails()))
	require.NoError(t, o.Next())
	require.NoError(t, o.Next())
	require.Equal(t, StepPayment, o.Step())
}

func TestNext_TermsGuard(t *testing.T) {
	f := setupCheckoutTest(t)

	err := f.orch.Next()
	assert.True(t, errors.Is(err, ErrTermsNotAccepted))
	assert.Equal(t, StepTerms, f.orch.Step())

	f.orch.AcceptTerms(true)
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepDetails, f.orch.Step())
}

func TestNext_DetailsGuard(t *testing.T) {
	f := setupCheckoutTest(t)
	f.orch.AcceptTerms(true)
	require.NoError(t, f.orch.Next())

	d := validDetails()
	d.Email = "not-an-email"
	d.PostalCode = "12"
	errs := f.orch.SetDetails(d)
	assert.Equal(t, "Enter a valid email", errs["email"])
	assert.Equal(t, "Postal code too short", errs["postal"])

	var verr *ValidationError
	require.True(t, errors.As(f.orch.Next(), &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Equal(t, StepDetails, f.orch.Step())

	assert.Nil(t, f.orch.SetDetails(validDetails()))
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepReview, f.orch.Step())
}

func TestValidateDetails_Required(t *testing.T) {
	errs := ValidateDetails(Details{})
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Address is required", errs["address"])
	assert.NotContains(t, errs, "postal")
	assert.NotContains(t, errs, "phone")
	assert.NotContains(t, errs, "city")
}

func TestNextAndBack_Bounds(t *testing.T) {
	f := setupCheckoutTest(t)

	f.orch.Back()
	assert.Equal(t, StepTerms, f.orch.Step())

	toPayment(t, f.orch)
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepPayment, f.orch.Step())

	f.orch.Back()
	assert.Equal(t, StepReview, f.orch.Step())
	f.orch.Back()
	f.orch.Back()
	f.orch.Back()
	assert.Equal(t, StepTerms, f.orch.Step())
}

func TestSelectMethod_OnlyAtPayment(t *testing.T) {
	f := setupCheckoutTest(t)
	assert.True(t, errors.Is(f.orch.SelectMethod(payment.MethodUPI), ErrWrongStep))

	toPayment(t, f.orch)
	assert.True(t, errors.Is(f.orch.SelectMethod("BITCOIN"), payment.ErrUnsupportedMethod))
	require.NoError(t, f.orch.SelectMethod(payment.MethodCard))
	assert.Equal(t, payment.MethodCard, f.orch.State().Method)
}

func TestPay_Guards(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.orch.Pay(ctx, payment.Request{Method: payment.MethodUPI})
	assert.True(t, errors.Is(err, ErrWrongStep))

	toPayment(t, f.orch)
	_, err = f.orch.Pay(ctx, payment.Request{})
	assert.True(t, errors.Is(err, ErrNoMethod))

	_, err = f.orch.Pay(ctx, payment.Request{Method: payment.MethodUPI})
	assert.True(t, errors.Is(err, ErrEmptyCart))
	assert.Empty(t, f.ledger.Orders())
}

func TestPay_EndToEnd(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	f.cart.Add(ctx, "FB-NY-01", "M", 2, nyHome(), nil)
	toPayment(t, f.orch)
	assert.Equal(t, 3998.0, f.orch.Amount())
	require.NoError(t, f.orch.SelectMethod(payment.MethodUPI))

	conf, err := f.orch.Pay(ctx, payment.Request{})
	require.NoError(t, err)

	assert.Regexp(t, `^JX-20260302-[A-Z0-9]{4}$`, conf.OrderID)
	assert.Equal(t, 3998.0, conf.Total)
	require.Len(t, conf.Items, 1)
	assert.Equal(t, ConfirmationItem{Name: "NY Guardians Home Jersey", Size: "M", Qty: 2, Price: 1999}, conf.Items[0])
	assert.Equal(t, time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), conf.ETA)
	assert.Equal(t, "7 Mar", conf.ETALabel)
	assert.NotEmpty(t, conf.Reference)

	orders := f.ledger.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, conf.OrderID, orders[0].ID)
	assert.Equal(t, order.PaymentPaid, orders[0].Payment.Status)
	assert.Equal(t, payment.MethodUPI, orders[0].Payment.Method)
	assert.Equal(t, conf.Reference, orders[0].Payment.Reference)
	assert.Equal(t, "560001", orders[0].Shipping.PostalCode)

	assert.Empty(t, f.cart.Items())
	state := f.orch.State()
	assert.Equal(t, StepTerms, state.Step)
	assert.False(t, state.Accepted)
	assert.Equal(t, Details{}, state.Details)
}

func TestPay_GatewayRejectionKeepsCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	f.cart.Add(ctx, "FB-NY-01", "L", 1, nyHome(), nil)
	toPayment(t, f.orch)

	_, err := f.orch.Pay(ctx, payment.Request{Method: payment.MethodCard, Card: &payment.CardDetails{Number: "42"}})
	var perr *payment.ValidationError
	require.True(t, errors.As(err, &perr))

	assert.Len(t, f.cart.Items(), 1)
	assert.Empty(t, f.ledger.Orders())
	assert.Equal(t, StepPayment, f.orch.Step())
}

func TestPay_AppliesAdjustments(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	f.orch.adjustments = order.Adjustments{Shipping: 99, Discount: 100}

	f.cart.Add(ctx, "FB-NY-01", "M", 1, nyHome(), nil)
	toPayment(t, f.orch)
	assert.Equal(t, 1998.0, f.orch.Amount())

	conf, err := f.orch.Pay(ctx, payment.Request{Method: payment.MethodWallet, Wallet: "Paytm"})
	require.NoError(t, err)
	assert.Equal(t, 1998.0, conf.Total)
}

func TestPay_CustomCompletionHook(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	called := false
	f.orch.onComplete = func(context.Context) { called = true }

	f.cart.Add(ctx, "FB-NY-01", "M", 1, nyHome(), nil)
	toPayment(t, f.orch)
	_, err := f.orch.Pay(ctx, payment.Request{Method: payment.MethodNetBanking, Bank: "HDFC"})
	require.NoError(t, err)

	assert.True(t, called)
	assert.Len(t, f.cart.Items(), 1)
}

func TestBuyNow_ReplacesCartAndResets(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	f.cart.Add(ctx, "FB-NY-01", "M", 3, nyHome(), nil)
	toPayment(t, f.orch)

	p, _ := catalog.StaticProduct("BB-LA-23")
	snap := p.Snapshot()
	f.orch.BuyNow(ctx, "BB-LA-23", "L", 1, &snap, &cart.Customization{Name: "kobe", Number: "824"})

	items := f.cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "BB-LA-23", items[0].ProductID)
	assert.Equal(t, 1, items[0].Qty)
	require.NotNil(t, items[0].Custom)
	assert.Equal(t, "KOBE", items[0].Custom.Name)
	assert.Equal(t, "82", items[0].Custom.Number)
	assert.Equal(t, StepTerms, f.orch.Step())
}

func TestETA(t *testing.T) {
	now := time.Date(2026, 12, 29, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 Jan", ETALabel(FixedETA(5)(now, payment.MethodUPI)))

	policy := RandomETA(3, 6)
	for i := 0; i < 20; i++ {
		days := int(policy(now, payment.MethodCard).Sub(now).Hours() / 24)
		assert.Contains(t, []int{3, 6}, days)
	}
}

func TestStep_MarshalJSON(t *testing.T) {
	b, err := StepReview.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"Review"`, string(b))
}
