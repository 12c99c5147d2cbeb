package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
)

// StockInStatus represents the status of a stock-in receipt
type StockInStatus string

const (
	StockInStatusDraft     StockInStatus = "draft"
	StockInStatusConfirmed StockInStatus = "confirmed"
	StockInStatusCancelled StockInStatus = "cancelled"
)

// IsValid checks if the status is a valid StockInStatus
func (s StockInStatus) IsValid() bool {
	switch s {
	case StockInStatusDraft, StockInStatusConfirmed, StockInStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of StockInStatus
func (s StockInStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Unlike sales orders, a confirmed receipt cannot be cancelled: goods are
// already on the shelf and the correction path is an outbound order, not a
// retroactive edit of the inbound ledger.
func (s StockInStatus) CanTransitionTo(target StockInStatus) bool {
	switch s {
	case StockInStatusDraft:
		return target == StockInStatusConfirmed || target == StockInStatusCancelled
	case StockInStatusConfirmed, StockInStatusCancelled:
		return false // Terminal states
	}
	return false
}

// StockInItem represents a line item in a stock-in receipt.
// Like order items, rows are immutable once created.
type StockInItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	StockInOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	Quantity       int64           `gorm:"not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockInItem) TableName() string {
	return "stock_in_items"
}

func newStockInItem(stockInOrderID, productID uuid.UUID, productName string, quantity int64, unitCost valueobject.Money) (*StockInItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit cost cannot be negative")
	}

	return &StockInItem{
		ID:             uuid.New(),
		StockInOrderID: stockInOrderID,
		ProductID:      productID,
		ProductName:    productName,
		Quantity:       quantity,
		UnitCost:       unitCost.Amount(),
		TotalPrice:     unitCost.MultiplyByInt(quantity).Amount(),
		CreatedAt:      time.Now(),
	}, nil
}

// StockInOrder represents an inbound goods receipt. Together with its items
// it forms the inbound half of the inventory ledger: confirmed receipts are
// permanent evidence of stock arriving and are never deleted or edited.
type StockInOrder struct {
	shared.AuditedAggregateRoot
	SupplierName string          `gorm:"type:varchar(200)"`
	Status       StockInStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Note         string          `gorm:"type:varchar(500)"`
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time

	Items []StockInItem `gorm:"foreignKey:StockInOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (StockInOrder) TableName() string {
	return "stock_in_orders"
}

// NewStockInOrder creates a new stock-in receipt in draft status. Every
// receipt names its supplier; goods do not appear out of nowhere.
func NewStockInOrder(createdBy uuid.UUID, supplierName string) (*StockInOrder, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creator user ID cannot be empty")
	}
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot be empty")
	}

	return &StockInOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		SupplierName:         supplierName,
		Status:               StockInStatusDraft,
		TotalAmount:          decimal.Zero,
		Items:                make([]StockInItem, 0),
	}, nil
}

// AddItem adds a line item. Only possible while the receipt is in draft.
func (s *StockInOrder) AddItem(productID uuid.UUID, productName string, quantity int64, unitCost valueobject.Money) (*StockInItem, error) {
	if s.Status != StockInStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added to draft stock-in orders")
	}

	item, err := newStockInItem(s.ID, productID, productName, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotal()
	s.Touch()
	return &s.Items[len(s.Items)-1], nil
}

// SetNote sets the receipt note
func (s *StockInOrder) SetNote(note string) {
	s.Note = note
	s.Touch()
}

// Confirm transitions draft -> confirmed. The caller must increase product
// stock counters in the same transaction as this status write.
func (s *StockInOrder) Confirm() error {
	if !s.Status.CanTransitionTo(StockInStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm stock-in order in %s status", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm a stock-in order without items")
	}

	now := time.Now()
	s.Status = StockInStatusConfirmed
	s.ConfirmedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// Cancel transitions draft -> cancelled. Confirmed receipts cannot be
// cancelled.
func (s *StockInOrder) Cancel() error {
	if !s.Status.CanTransitionTo(StockInStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel stock-in order in %s status", s.Status))
	}

	now := time.Now()
	s.Status = StockInStatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// IsConfirmed returns true if the receipt has been confirmed
func (s *StockInOrder) IsConfirmed() bool {
	return s.Status == StockInStatusConfirmed
}

// ItemCount returns the number of line items
func (s *StockInOrder) ItemCount() int {
	return len(s.Items)
}

// TotalQuantity returns the sum of item quantities
func (s *StockInOrder) TotalQuantity() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// GetTotalAmountMoney returns the total amount as Money
func (s *StockInOrder) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(s.TotalAmount)
}

func (s *StockInOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.TotalPrice)
	}
	s.TotalAmount = total
}
