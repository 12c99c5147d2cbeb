package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDeleted  ProductStatus = "deleted"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product represents a product/SKU in the catalog.
// It is the aggregate root for product operations and owns the materialized
// stock counter. StockQuantity is mutated exclusively through ReceiveStock
// and DeductStock, which are driven by stock-in confirmation and order
// fulfillment; a generic product edit can never touch the counter.
type Product struct {
	shared.AuditedAggregateRoot
	SKU           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Selling price
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StockQuantity int64           `gorm:"not null;default:0"` // Materialized counter, never negative
	MinStock      int64           `gorm:"not null;default:0"` // Low stock threshold (0 = use default)
	MaxStock      int64           `gorm:"not null;default:0"` // High stock threshold (0 = use default)
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in active status with zero stock
func NewProduct(createdBy uuid.UUID, sku, name, unit string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "pcs"
	}

	return &Product{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		SKU:                  strings.ToUpper(sku),
		Name:                 name,
		Unit:                 unit,
		Price:                decimal.Zero,
		CostPrice:            decimal.Zero,
		Status:               ProductStatusActive,
	}, nil
}

// Update updates the product's basic information.
// The stock counter is intentionally not reachable from here: once ledger
// backed operations exist for a product, its quantity is derived state.
func (p *Product) Update(name, description, unit string) error {
	if err := p.setBasicInfo(name, description, unit); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// UpdateDetails replaces the full master-data set in one move. The version
// is bumped exactly once, so the optimistic save still matches the row the
// product was loaded from.
func (p *Product) UpdateDetails(name, description, unit string, price, costPrice valueobject.Money, minStock, maxStock int64) error {
	if err := p.setBasicInfo(name, description, unit); err != nil {
		return err
	}
	if err := p.setPrices(price, costPrice); err != nil {
		return err
	}
	if err := p.setThresholds(minStock, maxStock); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetPrices sets the selling and cost prices
func (p *Product) SetPrices(price, costPrice valueobject.Money) error {
	if err := p.setPrices(price, costPrice); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetThresholds sets the min/max stock thresholds used for classification
func (p *Product) SetThresholds(minStock, maxStock int64) error {
	if err := p.setThresholds(minStock, maxStock); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *Product) setBasicInfo(name, description, unit string) error {
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	if unit != "" {
		p.Unit = unit
	}
	return nil
}

func (p *Product) setPrices(price, costPrice valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	p.Price = price.Amount()
	p.CostPrice = costPrice.Amount()
	return nil
}

func (p *Product) setThresholds(minStock, maxStock int64) error {
	if minStock < 0 || maxStock < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Stock thresholds cannot be negative")
	}
	if maxStock > 0 && minStock > maxStock {
		return shared.NewDomainError("INVALID_THRESHOLD", "Min stock cannot exceed max stock")
	}
	p.MinStock = minStock
	p.MaxStock = maxStock
	return nil
}

// SetInitialStock seeds the counter at creation time, before any ledger
// entries exist for the product. It must not be used afterwards.
func (p *Product) SetInitialStock(quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Initial stock cannot be negative")
	}
	p.StockQuantity = quantity
	return nil
}

// ReceiveStock increases the stock counter (stock-in confirmation, order
// cancellation restock)
func (p *Product) ReceiveStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	p.StockQuantity += quantity
	p.Touch()
	p.IncrementVersion()
	return nil
}

// DeductStock decreases the stock counter (order fulfillment).
// The counter can never go negative; the caller must treat the failure as a
// conflict and roll back the surrounding transaction.
func (p *Product) DeductStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.StockQuantity < quantity {
		return shared.ErrInsufficientStock
	}

	p.StockQuantity -= quantity
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Activate marks the product as active
func (p *Product) Activate() error {
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot activate a deleted product")
	}
	p.Status = ProductStatusActive
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate a deleted product")
	}
	p.Status = ProductStatusInactive
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Delete soft-deletes the product. Ledger entries referencing it are kept.
func (p *Product) Delete() error {
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Product is already deleted")
	}
	p.Status = ProductStatusDeleted
	p.Touch()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsDeleted returns true if the product has been soft-deleted
func (p *Product) IsDeleted() bool {
	return p.Status == ProductStatusDeleted
}

// GetPriceMoney returns the selling price as Money
func (p *Product) GetPriceMoney() valueobject.Money {
	return valueobject.NewMoneyVND(p.Price)
}

// GetCostPriceMoney returns the cost price as Money
func (p *Product) GetCostPriceMoney() valueobject.Money {
	return valueobject.NewMoneyVND(p.CostPrice)
}

// StockValue returns the inventory value at cost (quantity x cost price)
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(p.StockQuantity))
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
