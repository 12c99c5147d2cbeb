package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CountsAsFulfilled reports whether an order in this status has legitimately
// consumed stock. This is the single definition shared by the live counter
// path and the historical reconstruction path; the two must never diverge.
func (s OrderStatus) CountsAsFulfilled() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCompleted
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the payment status can transition to the target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusPaid
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	case PaymentStatusRefunded:
		return false
	}
	return false
}

// OrderItem represents a line item in a sales order.
// Items are immutable once created: quantity and price are fixed at order
// creation time, with the unit price taken from the catalog rather than the
// caller.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// newOrderItem creates a new order item
func newOrderItem(orderID, productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		TotalPrice:  unitPrice.MultiplyByInt(quantity).Amount(),
		CreatedAt:   time.Now(),
	}, nil
}

// Order represents a sales order. It is the aggregate root of the sales
// ledger: rows are appended by order creation and only their status fields
// change afterwards. Cancellation is a status write, never a deletion, so
// historical reconstruction can always replay the full ledger.
type Order struct {
	shared.AuditedAggregateRoot
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"` // nil = walk-in customer
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Note          string          `gorm:"type:varchar(500)"`
	ConfirmedAt   *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in draft status with no items
func NewOrder(createdBy uuid.UUID, customerID *uuid.UUID) (*Order, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creator user ID cannot be empty")
	}

	return &Order{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		CustomerID:           customerID,
		Status:               OrderStatusDraft,
		PaymentStatus:        PaymentStatusPending,
		FinalAmount:          decimal.Zero,
		Items:                make([]OrderItem, 0),
	}, nil
}

// AddItem adds a line item. Only possible while the order is in draft.
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added to draft orders")
	}

	item, err := newOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// SetNote sets the order note
func (o *Order) SetNote(note string) {
	o.Note = note
	o.Touch()
}

// Confirm transitions draft -> confirmed. The caller (the fulfillment
// coordinator) must deduct stock in the same transaction as this status
// write.
func (o *Order) Confirm() error {
	if err := o.ensureTransition(OrderStatusConfirmed); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order without items")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Complete transitions confirmed -> completed. No stock effect: the
// deduction already happened at confirmation.
func (o *Order) Complete() error {
	if err := o.ensureTransition(OrderStatusCompleted); err != nil {
		return err
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Cancel transitions draft or confirmed -> cancelled. WasFulfilled reports
// whether the order had consumed stock before cancelling, i.e. whether the
// caller must restock in the same transaction.
func (o *Order) Cancel() (wasFulfilled bool, err error) {
	if err := o.ensureTransition(OrderStatusCancelled); err != nil {
		return false, err
	}

	wasFulfilled = o.Status.CountsAsFulfilled()
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return wasFulfilled, nil
}

// SetPaymentStatus applies a payment status transition
func (o *Order) SetPaymentStatus(target PaymentStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid payment status: %s", target))
	}
	if target == o.PaymentStatus {
		return nil // idempotent
	}
	if !o.PaymentStatus.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change payment status from %s to %s", o.PaymentStatus, target))
	}

	o.PaymentStatus = target
	o.Touch()
	o.IncrementVersion()
	return nil
}

// CountsAsFulfilled reports whether this order currently consumes stock
func (o *Order) CountsAsFulfilled() bool {
	return o.Status.CountsAsFulfilled()
}

// IsDraft returns true if the order is in draft status
func (o *Order) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of item quantities
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// GetFinalAmountMoney returns the final amount as Money
func (o *Order) GetFinalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(o.FinalAmount)
}

func (o *Order) ensureTransition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	o.FinalAmount = total
}
