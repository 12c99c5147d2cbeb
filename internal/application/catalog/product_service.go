package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
)

// StockSeeder records opening stock for a newly created product through the
// inbound ledger, keeping the counter reconstructable
type StockSeeder interface {
	SeedInitialStock(ctx context.Context, createdBy, productID uuid.UUID, quantity int64) error
}

// ProductService handles product catalog operations. Stock counters are out
// of its reach: initial stock is delegated to the seeder and every later
// change goes through stock-in and order flows.
type ProductService struct {
	products catalog.ProductRepository
	seeder   StockSeeder
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, seeder StockSeeder, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		seeder:   seeder,
		logger:   logger,
	}
}

// Create creates a new product. Initial stock, when given, is recorded as a
// confirmed opening receipt rather than written directly to the counter.
func (s *ProductService) Create(ctx context.Context, createdBy uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.products.FindBySKU(ctx, req.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Product with SKU %s already exists", req.SKU))
	}

	product, err := catalog.NewProduct(createdBy, req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := product.SetPrices(
		valueobject.NewMoneyVNDFromFloat(req.Price),
		valueobject.NewMoneyVNDFromFloat(req.CostPrice),
	); err != nil {
		return nil, err
	}
	if req.MinStock > 0 || req.MaxStock > 0 {
		if err := product.SetThresholds(req.MinStock, req.MaxStock); err != nil {
			return nil, err
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	if req.InitialStock > 0 && s.seeder != nil {
		if err := s.seeder.SeedInitialStock(ctx, createdBy, product.ID, req.InitialStock); err != nil {
			return nil, err
		}
		// Re-read: the seeding receipt moved the counter.
		product, err = s.products.FindByID(ctx, product.ID)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// Update updates product master data. The request carries no stock field
// and the domain mutators called here cannot touch the counter.
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.UpdateDetails(
		req.Name, req.Description, req.Unit,
		valueobject.NewMoneyVNDFromFloat(req.Price),
		valueobject.NewMoneyVNDFromFloat(req.CostPrice),
		req.MinStock, req.MaxStock,
	); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// UpdatePrices changes the selling and cost prices, leaving everything
// else untouched
func (s *ProductService) UpdatePrices(ctx context.Context, productID uuid.UUID, req UpdatePricesRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.SetPrices(
		valueobject.NewMoneyVNDFromFloat(req.Price),
		valueobject.NewMoneyVNDFromFloat(req.CostPrice),
	); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// SetThresholds changes the low/high stock thresholds used by the
// inventory classifier
func (s *ProductService) SetThresholds(ctx context.Context, productID uuid.UUID, req UpdateThresholdsRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.SetThresholds(req.MinStock, req.MaxStock); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.NewFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	} else {
		domainFilter.Filters["exclude_status"] = string(catalog.ProductStatusDeleted)
	}

	products, err := s.products.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Activate marks a product as active
func (s *ProductService) Activate(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Activate)
}

// Deactivate marks a product as inactive, blocking new orders for it
func (s *ProductService) Deactivate(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Deactivate)
}

// Delete soft-deletes a product. The row stays so historical orders and
// receipts keep resolving.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	_, err := s.changeStatus(ctx, productID, (*catalog.Product).Delete)
	return err
}

func (s *ProductService) changeStatus(ctx context.Context, productID uuid.UUID, change func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := change(product); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}
