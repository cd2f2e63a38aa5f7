// Package admin loads the admin console's dashboard and reports and runs its
// management actions. Every call requires an admin session.
package admin

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/apiclient"
	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/report"
)

// Row counts of the dashboard and reports top lists.
const (
	DashboardTopN = 5
	ReportsTopN   = 10
)

// API is the admin part of the storefront API.
type API interface {
	Summary(ctx context.Context) (*report.Summary, error)
	MonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error)
	SalesByCategory(ctx context.Context) ([]report.CategorySales, error)
	OrderStatusCounts(ctx context.Context) ([]report.StatusCount, error)
	TopSellers(ctx context.Context, limit int) ([]report.TopProduct, error)
	RecentOrders(ctx context.Context, limit int) ([]order.Order, error)

	AdminProducts(ctx context.Context, limit, skip int) (*product.Page, error)
	UpdateStock(ctx context.Context, productID string, stock int) error
	AllOrders(ctx context.Context) ([]order.Order, error)
	SetOrderStatus(ctx context.Context, id string, status order.Status) error
	ApproveReturn(ctx context.Context, id string) error
	Users(ctx context.Context) ([]report.User, error)
	ToggleBlock(ctx context.Context, userID string) error

	AdminCategories(ctx context.Context) ([]product.Category, error)
	CreateCategory(ctx context.Context, in product.CategoryInput) (*product.Category, error)
	UpdateCategory(ctx context.Context, id string, in product.CategoryInput) (*product.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateProduct(ctx context.Context, in product.ProductInput) (*product.Product, error)
	UpdateProduct(ctx context.Context, id string, in product.ProductInput) error
	DeleteProduct(ctx context.Context, id string) error
	SetProductCategory(ctx context.Context, productID, categoryID string) error
}

var _ API = (*apiclient.Client)(nil)

// Guard checks the caller may use the admin console.
type Guard interface {
	RequireAdmin(ctx context.Context) (*auth.UserInfo, error)
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Summary         report.Summary
	MonthlyRevenue  []report.MonthlyRevenue
	SalesByCategory []report.CategorySales
	TopProducts     []report.TopProduct
	RecentOrders    []order.Order
}

// Reports is the reports page.
type Reports struct {
	SalesByCategory []report.CategorySales
	StatusCounts    []report.StatusCount
	TopProducts     []report.TopProduct
}

// Service runs admin console calls.
type Service struct {
	api   API
	guard Guard
}

// NewService creates an admin Service.
func NewService(api API, guard Guard) *Service {
	return &Service{api: api, guard: guard}
}

// LoadDashboard fetches every dashboard widget concurrently. Any failure
// fails the whole dashboard.
func (s *Service) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.api.Summary(ctx)
		if err != nil {
			return err
		}
		d.Summary = *sum
		return nil
	})
	g.Go(func() (err error) {
		d.MonthlyRevenue, err = s.api.MonthlyRevenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.SalesByCategory, err = s.api.SalesByCategory(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopProducts, err = s.api.TopSellers(ctx, DashboardTopN)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.api.RecentOrders(ctx, DashboardTopN)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "load dashboard")
	}
	return &d, nil
}

// LoadReports fetches the reports concurrently.
func (s *Service) LoadReports(ctx context.Context) (*Reports, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var r Reports
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.SalesByCategory, err = s.api.SalesByCategory(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.StatusCounts, err = s.api.OrderStatusCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.TopProducts, err = s.api.TopSellers(ctx, ReportsTopN)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "load reports")
	}
	return &r, nil
}

// Products returns one page of the catalog, rowsPerPage products starting at
// page (0-based).
func (s *Service) Products(ctx context.Context, page, rowsPerPage int) (*product.Page, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if rowsPerPage <= 0 {
		rowsPerPage = 10
	}
	if page < 0 {
		page = 0
	}
	return s.api.AdminProducts(ctx, rowsPerPage, page*rowsPerPage)
}

// UpdateStock sets a product's stock.
func (s *Service) UpdateStock(ctx context.Context, productID string, stock int) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	if stock < 0 {
		return product.ErrNegativeStock
	}
	return s.api.UpdateStock(ctx, productID, stock)
}

// Orders returns every order.
func (s *Service) Orders(ctx context.Context) ([]order.Order, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.api.AllOrders(ctx)
}

// SetOrderStatus moves an order to status.
func (s *Service) SetOrderStatus(ctx context.Context, id string, status order.Status) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.api.SetOrderStatus(ctx, id, status)
}

// ApproveReturn approves a pending return.
func (s *Service) ApproveReturn(ctx context.Context, id string) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.api.ApproveReturn(ctx, id)
}

// Users returns every account.
func (s *Service) Users(ctx context.Context) ([]report.User, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.api.Users(ctx)
}

// ToggleBlock blocks or unblocks an account.
func (s *Service) ToggleBlock(ctx context.Context, userID string) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.api.ToggleBlock(ctx, userID)
}

// Categories returns every category.
func (s *Service) Categories(ctx context.Context) ([]product.Category, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.api.AdminCategories(ctx)
}

// Category returns the category with id, or product.ErrNotFound.
func (s *Service) Category(ctx context.Context, id string) (*product.Category, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, errors.Wrapf(product.ErrNotFound, "category %s", id)
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, in product.CategoryInput) (*product.Category, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.api.CreateCategory(ctx, in)
}

// UpdateCategory replaces a category's name and description.
func (s *Service) UpdateCategory(ctx context.Context, id string, in product.CategoryInput) (*product.Category, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.api.UpdateCategory(ctx, id, in)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.api.DeleteCategory(ctx, id)
}

// CreateProduct adds a product.
func (s *Service) CreateProduct(ctx context.Context, in product.ProductInput) (*product.Product, error) {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.api.CreateProduct(ctx, in)
}

// UpdateProduct replaces a product's fields.
func (s *Service) UpdateProduct(ctx context.Context, id string, in product.ProductInput) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return s.api.UpdateProduct(ctx, id, in)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.api.DeleteProduct(ctx, id)
}

// AssignCategory moves a product to categoryID.
func (s *Service) AssignCategory(ctx context.Context, productID, categoryID string) error {
	if _, err := s.guard.RequireAdmin(ctx); err != nil {
		return err
	}
	if categoryID == "" {
		return errors.New("category is required")
	}
	return s.api.SetProductCategory(ctx, productID, categoryID)
}
