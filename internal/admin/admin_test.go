package admin

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/report"
)

// --- Mock implementations ---

type mockAPI struct {
	mu     sync.Mutex
	limits map[string]int
	failOn string

	stock   map[string]int
	skip    int
	blocked []string

	categories []product.Category
	products   map[string]product.ProductInput
	assigned   map[string]string
	deleted    []string
}

func (m *mockAPI) note(name string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limits == nil {
		m.limits = make(map[string]int)
	}
	m.limits[name] = limit
	if m.failOn == name {
		return errors.New(name + " unavailable")
	}
	return nil
}

func (m *mockAPI) Summary(_ context.Context) (*report.Summary, error) {
	if err := m.note("summary", 0); err != nil {
		return nil, err
	}
	return &report.Summary{TotalUsers: 3, TotalOrders: 7, TotalRevenue: decimal.RequireFromString("1234.50"), PendingOrders: 2}, nil
}

func (m *mockAPI) MonthlyRevenue(_ context.Context) ([]report.MonthlyRevenue, error) {
	if err := m.note("monthly", 0); err != nil {
		return nil, err
	}
	return []report.MonthlyRevenue{{Month: "2026-01", Revenue: decimal.NewFromInt(900)}}, nil
}

func (m *mockAPI) SalesByCategory(_ context.Context) ([]report.CategorySales, error) {
	if err := m.note("sales", 0); err != nil {
		return nil, err
	}
	return []report.CategorySales{{Category: "Shoes", Sales: decimal.NewFromInt(500), Quantity: 4}}, nil
}

func (m *mockAPI) OrderStatusCounts(_ context.Context) ([]report.StatusCount, error) {
	if err := m.note("status", 0); err != nil {
		return nil, err
	}
	return []report.StatusCount{{Status: order.StatusPending, Count: 2}, {Status: order.StatusDelivered, Count: 5}}, nil
}

func (m *mockAPI) TopSellers(_ context.Context, limit int) ([]report.TopProduct, error) {
	if err := m.note("top", limit); err != nil {
		return nil, err
	}
	return []report.TopProduct{{ProductID: "p1", Name: "Runner", Sold: 9, Revenue: decimal.NewFromInt(450)}}, nil
}

func (m *mockAPI) RecentOrders(_ context.Context, limit int) ([]order.Order, error) {
	if err := m.note("recent", limit); err != nil {
		return nil, err
	}
	return []order.Order{{
		ID:        "o1",
		User:      order.Customer{Name: "Ann"},
		Total:     decimal.NewFromInt(40),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}}, nil
}

func (m *mockAPI) AdminProducts(_ context.Context, limit, skip int) (*product.Page, error) {
	if err := m.note("products", limit); err != nil {
		return nil, err
	}
	m.skip = skip
	return &product.Page{Total: 42}, nil
}

func (m *mockAPI) UpdateStock(_ context.Context, productID string, stock int) error {
	if m.stock == nil {
		m.stock = make(map[string]int)
	}
	m.stock[productID] = stock
	return nil
}

func (m *mockAPI) AllOrders(_ context.Context) ([]order.Order, error) {
	return []order.Order{{ID: "o1"}, {ID: "o2"}}, nil
}

func (m *mockAPI) SetOrderStatus(_ context.Context, _ string, _ order.Status) error {
	return nil
}

func (m *mockAPI) ApproveReturn(_ context.Context, _ string) error {
	return nil
}

func (m *mockAPI) Users(_ context.Context) ([]report.User, error) {
	return []report.User{{ID: "u1", Blocked: true}}, nil
}

func (m *mockAPI) ToggleBlock(_ context.Context, userID string) error {
	m.blocked = append(m.blocked, userID)
	return nil
}

func (m *mockAPI) AdminCategories(_ context.Context) ([]product.Category, error) {
	if err := m.note("categories", 0); err != nil {
		return nil, err
	}
	return m.categories, nil
}

func (m *mockAPI) CreateCategory(_ context.Context, in product.CategoryInput) (*product.Category, error) {
	c := product.Category{ID: fmt.Sprintf("c%d", len(m.categories)+1), Name: in.Name, Description: in.Description}
	m.categories = append(m.categories, c)
	return &c, nil
}

func (m *mockAPI) UpdateCategory(_ context.Context, id string, in product.CategoryInput) (*product.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories[i].Name, m.categories[i].Description = in.Name, in.Description
			return &m.categories[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockAPI) DeleteCategory(_ context.Context, id string) error {
	m.deleted = append(m.deleted, "category:"+id)
	return nil
}

func (m *mockAPI) CreateProduct(_ context.Context, in product.ProductInput) (*product.Product, error) {
	if m.products == nil {
		m.products = make(map[string]product.ProductInput)
	}
	id := fmt.Sprintf("p%d", len(m.products)+1)
	m.products[id] = in
	return &product.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (m *mockAPI) UpdateProduct(_ context.Context, id string, in product.ProductInput) error {
	if _, ok := m.products[id]; !ok {
		return product.ErrNotFound
	}
	m.products[id] = in
	return nil
}

func (m *mockAPI) DeleteProduct(_ context.Context, id string) error {
	m.deleted = append(m.deleted, "product:"+id)
	return nil
}

func (m *mockAPI) SetProductCategory(_ context.Context, productID, categoryID string) error {
	if m.assigned == nil {
		m.assigned = make(map[string]string)
	}
	m.assigned[productID] = categoryID
	return nil
}

type mockGuard struct {
	err error
}

func (m mockGuard) RequireAdmin(_ context.Context) (*auth.UserInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &auth.UserInfo{ID: "a1", Role: auth.RoleAdmin}, nil
}

// --- Tests ---

func TestLoadDashboard(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{})

	d, err := svc.LoadDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, d.Summary.TotalOrders)
	assert.Len(t, d.MonthlyRevenue, 1)
	assert.Len(t, d.SalesByCategory, 1)
	assert.Len(t, d.TopProducts, 1)
	assert.Len(t, d.RecentOrders, 1)
	assert.Equal(t, DashboardTopN, api.limits["top"])
	assert.Equal(t, DashboardTopN, api.limits["recent"])
}

func TestLoadDashboard_AnyFailureFails(t *testing.T) {
	for _, name := range []string{"summary", "monthly", "sales", "top", "recent"} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(&mockAPI{failOn: name}, mockGuard{})
			_, err := svc.LoadDashboard(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), name+" unavailable")
		})
	}
}

func TestLoadReports(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{})

	r, err := svc.LoadReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.StatusCounts, 2)
	assert.Equal(t, ReportsTopN, api.limits["top"])
}

func TestGuarded(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{err: auth.ErrForbidden})
	ctx := context.Background()

	_, err := svc.LoadDashboard(ctx)
	require.ErrorIs(t, err, auth.ErrForbidden)
	_, err = svc.LoadReports(ctx)
	require.ErrorIs(t, err, auth.ErrForbidden)
	_, err = svc.Users(ctx)
	require.ErrorIs(t, err, auth.ErrForbidden)
	require.ErrorIs(t, svc.ToggleBlock(ctx, "u1"), auth.ErrForbidden)
	assert.Empty(t, api.limits, "no API call without an admin session")
	assert.Empty(t, api.blocked)
}

func TestManagement(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{})
	ctx := context.Background()

	page, err := svc.Products(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 20, api.skip)

	require.Error(t, svc.UpdateStock(ctx, "p1", -1))
	require.NoError(t, svc.UpdateStock(ctx, "p1", 12))
	assert.Equal(t, 12, api.stock["p1"])

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	require.NoError(t, svc.SetOrderStatus(ctx, "o1", order.StatusShipped))
	require.NoError(t, svc.ApproveReturn(ctx, "o1"))
	require.NoError(t, svc.ToggleBlock(ctx, "u1"))
	assert.Equal(t, []string{"u1"}, api.blocked)
}

func TestCategoryManagement(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{})
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, product.CategoryInput{})
	require.ErrorIs(t, err, product.ErrMissingName)

	c, err := svc.CreateCategory(ctx, product.CategoryInput{Name: "Shoes", Description: "Feet"})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	c, err = svc.UpdateCategory(ctx, "c1", product.CategoryInput{Name: "Sneakers"})
	require.NoError(t, err)
	assert.Equal(t, "Sneakers", c.Name)

	got, err := svc.Category(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Sneakers", got.Name)
	_, err = svc.Category(ctx, "c9")
	require.ErrorIs(t, err, product.ErrNotFound)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	require.NoError(t, svc.DeleteCategory(ctx, "c1"))
	assert.Equal(t, []string{"category:c1"}, api.deleted)
}

func TestProductManagement(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{})
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, product.ProductInput{Name: "Runner", Price: decimal.NewFromInt(-5)})
	require.ErrorIs(t, err, product.ErrNegativePrice)
	assert.Empty(t, api.products)

	in := product.ProductInput{Name: "Runner", Price: decimal.NewFromInt(450), Stock: 3, CategoryID: "c1"}
	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	in.Stock = -1
	require.ErrorIs(t, svc.UpdateProduct(ctx, "p1", in), product.ErrNegativeStock)
	in.Stock = 9
	require.NoError(t, svc.UpdateProduct(ctx, "p1", in))
	assert.Equal(t, 9, api.products["p1"].Stock)

	require.Error(t, svc.AssignCategory(ctx, "p1", ""))
	require.NoError(t, svc.AssignCategory(ctx, "p1", "c2"))
	assert.Equal(t, "c2", api.assigned["p1"])

	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
	assert.Equal(t, []string{"product:p1"}, api.deleted)
}

func TestManagement_Guarded(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, mockGuard{err: auth.ErrNotLoggedIn})
	ctx := context.Background()

	_, err := svc.Categories(ctx)
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	_, err = svc.CreateCategory(ctx, product.CategoryInput{Name: "Shoes"})
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	_, err = svc.CreateProduct(ctx, product.ProductInput{Name: "Runner"})
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	require.ErrorIs(t, svc.DeleteProduct(ctx, "p1"), auth.ErrNotLoggedIn)
	require.ErrorIs(t, svc.AssignCategory(ctx, "p1", "c1"), auth.ErrNotLoggedIn)

	assert.Empty(t, api.categories)
	assert.Empty(t, api.products)
	assert.Empty(t, api.deleted)
}

func TestExportXLSX(t *testing.T) {
	svc := NewService(&mockAPI{}, mockGuard{})
	ctx := context.Background()
	d, err := svc.LoadDashboard(ctx)
	require.NoError(t, err)
	r, err := svc.LoadReports(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, d, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		SheetSummary, SheetMonthly, SheetCategories, SheetTopProducts, SheetRecentOrders, SheetStatusCounts,
	}, f.GetSheetList())

	v, err := f.GetCellValue(SheetSummary, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total Users", v)

	v, err = f.GetCellValue(SheetTopProducts, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Runner", v)

	v, err = f.GetCellValue(SheetRecentOrders, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)

	v, err = f.GetCellValue(SheetRecentOrders, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 03:04", v)

	rows, err := f.GetRows(SheetStatusCounts)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportXLSX_WithoutReports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, &Dashboard{}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.NotContains(t, f.GetSheetList(), SheetStatusCounts)

	require.Error(t, ExportXLSX(&buf, nil, nil))
}
