// Package checkout sequences a cart through payment to a persisted
// order: validate, create a payment intent, confirm the card payment,
// persist the order, clear the cart.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

// DeliveryFee is added on top of the cart total. The intent amount and
// the stored order total must both come from this constant or the
// charged amount and the recorded total diverge.
const DeliveryFee int64 = 50

// StatusSucceeded is the only processor status that lets a checkout
// proceed to order persistence. Pending and requires-action payments
// are treated as failures; there is no polling.
const StatusSucceeded = "succeeded"

type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateCreatingIntent    State = "creating_intent"
	StateConfirmingPayment State = "confirming_payment"
	StatePersistingOrder   State = "persisting_order"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// ValidationError reports a precondition failure caught before any
// network call. The orchestrator returns to Idle and the user can
// correct and resubmit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IntentRequest is the payment-intent creation payload. Amount is in
// minor units (total plus delivery fee, times 100).
type IntentRequest struct {
	Amount          int64
	UserID          string
	Items           []models.CartItem
	ShippingAddress models.ShippingAddress
	IdempotencyKey  string
}

type Intent struct {
	ID           string
	ClientSecret string
}

// IntentCreator asks the payment processor for an
// authorized-but-unconfirmed charge identified by a client secret.
type IntentCreator interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
}

type Confirmation struct {
	PaymentIntentID string
	Status          string
}

// PaymentConfirmer completes the intent with the tokenized payment
// method, mirroring the shipping form into the billing details.
type PaymentConfirmer interface {
	ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethod string, billing models.ShippingAddress) (Confirmation, error)
}

// OrderWriter persists the completed order.
type OrderWriter interface {
	SaveOrder(ctx context.Context, order models.Order) error
}

// StockReader reports current stock for a product. Optional; when nil
// the orchestrator skips stock reconciliation.
type StockReader interface {
	Stock(ctx context.Context, productID string) (int, error)
}

// CartStore is the slice of the cart the orchestrator needs.
type CartStore interface {
	Items() []models.CartItem
	GetTotal() int64
	ClearCart(ctx context.Context) error
}

type SubmitRequest struct {
	UserID          string
	Cart            CartStore
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
}

// Orchestrator runs one checkout at a time. A second submission while
// one is in flight fails validation instead of creating a second
// payment intent.
type Orchestrator struct {
	intents  IntentCreator
	payments PaymentConfirmer
	orders   OrderWriter
	stock    StockReader

	mu    sync.Mutex
	busy  bool
	state State
}

func New(intents IntentCreator, payments PaymentConfirmer, orders OrderWriter, stock StockReader) *Orchestrator {
	return &Orchestrator{
		intents:  intents,
		payments: payments,
		orders:   orders,
		stock:    stock,
		state:    StateIdle,
	}
}

// State reports the current checkout state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Submit runs the full checkout sequence. Validation failures return a
// *ValidationError and leave the state in Idle; failures past
// validation leave it in Failed with the cart untouched. On success the
// cart has been cleared and exactly one order was persisted.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (models.Order, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return models.Order{}, &ValidationError{Reason: "a checkout is already in progress"}
	}
	o.busy = true
	o.state = StateValidating
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	items := req.Cart.Items()
	if err := o.validate(ctx, req, items); err != nil {
		o.setState(StateIdle)
		return models.Order{}, err
	}

	total := req.Cart.GetTotal() + DeliveryFee

	o.setState(StateCreatingIntent)
	intent, err := o.intents.CreateIntent(ctx, IntentRequest{
		Amount:          total * 100,
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  uuid.New().String(),
	})
	if err != nil {
		o.setState(StateFailed)
		return models.Order{}, fmt.Errorf("creating payment intent: %w", err)
	}

	o.setState(StateConfirmingPayment)
	confirmation, err := o.payments.ConfirmCardPayment(ctx, intent.ClientSecret, req.PaymentMethod, req.ShippingAddress)
	if err != nil {
		o.setState(StateFailed)
		// Processor messages are surfaced verbatim.
		return models.Order{}, err
	}
	if confirmation.Status != StatusSucceeded {
		o.setState(StateFailed)
		return models.Order{}, fmt.Errorf("payment not completed: status %q", confirmation.Status)
	}

	o.setState(StatePersistingOrder)
	order := models.Order{
		UserID:          req.UserID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		PaymentID:       confirmation.PaymentIntentID,
		PaymentStatus:   "completed",
		OrderStatus:     models.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := o.orders.SaveOrder(ctx, order); err != nil {
		o.setState(StateFailed)
		return models.Order{}, fmt.Errorf("saving order: %w", err)
	}

	if err := req.Cart.ClearCart(ctx); err != nil {
		o.setState(StateFailed)
		return order, fmt.Errorf("order %s placed but clearing cart failed: %w", confirmation.PaymentIntentID, err)
	}

	o.setState(StateSucceeded)
	return order, nil
}

func (o *Orchestrator) validate(ctx context.Context, req SubmitRequest, items []models.CartItem) error {
	if o.payments == nil || o.intents == nil {
		return &ValidationError{Reason: "payment system not loaded"}
	}
	if len(items) == 0 {
		return &ValidationError{Reason: "your cart is empty"}
	}
	if req.UserID == "" {
		return &ValidationError{Reason: "please login to complete payment"}
	}
	if !req.ShippingAddress.Complete() {
		return &ValidationError{Reason: "please fill all fields completely"}
	}
	if o.stock == nil {
		return nil
	}
	for _, item := range items {
		available, err := o.stock.Stock(ctx, item.ProductID)
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("could not verify stock for %s", item.Name)}
		}
		if item.Quantity > available {
			return &ValidationError{Reason: fmt.Sprintf("only %d of %s left in stock", available, item.Name)}
		}
	}
	return nil
}
