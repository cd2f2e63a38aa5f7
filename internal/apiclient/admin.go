package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/report"
)

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// Summary returns the dashboard headline numbers.
func (c *Client) Summary(ctx context.Context) (*report.Summary, error) {
	var s report.Summary
	if err := c.do(ctx, http.MethodGet, "/api/admin/summary", nil, nil, &s); err != nil {
		return nil, errors.Wrap(err, "get summary")
	}
	return &s, nil
}

// MonthlyRevenue returns revenue per month.
func (c *Client) MonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error) {
	var out []report.MonthlyRevenue
	if err := c.do(ctx, http.MethodGet, "/api/admin/monthly-revenue", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "get monthly revenue")
	}
	return out, nil
}

// SalesByCategory returns revenue per category.
func (c *Client) SalesByCategory(ctx context.Context) ([]report.CategorySales, error) {
	var out []report.CategorySales
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports/sales-by-category", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "get sales by category")
	}
	return out, nil
}

// OrderStatusCounts returns the number of orders per status.
func (c *Client) OrderStatusCounts(ctx context.Context) ([]report.StatusCount, error) {
	var out []report.StatusCount
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports/order-status-counts", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "get order status counts")
	}
	return out, nil
}

// TopSellers returns the best selling products.
func (c *Client) TopSellers(ctx context.Context, limit int) ([]report.TopProduct, error) {
	var out []report.TopProduct
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports/top-products", limitQuery(limit), nil, &out); err != nil {
		return nil, errors.Wrap(err, "get top sellers")
	}
	return out, nil
}

// RecentOrders returns the latest orders across all users. The API wraps
// them in {"orders": [...]}.
func (c *Client) RecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/admin/recent-orders", limitQuery(limit), nil, &raw); err != nil {
		return nil, errors.Wrap(err, "get recent orders")
	}
	var out []order.Order
	if isArray(raw) {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, errors.Wrap(err, "decode recent orders")
		}
		return out, nil
	}
	var v struct {
		Orders []order.Order `json:"orders"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrap(err, "decode recent orders")
		}
	}
	if v.Orders == nil {
		return []order.Order{}, nil
	}
	return v.Orders, nil
}

// AdminProducts returns a page of the full product catalog.
func (c *Client) AdminProducts(ctx context.Context, limit, skip int) (*product.Page, error) {
	q := url.Values{
		"limit": {strconv.Itoa(limit)},
		"skip":  {strconv.Itoa(skip)},
	}
	var page product.Page
	if err := c.do(ctx, http.MethodGet, "/api/admin/products", q, nil, &page); err != nil {
		return nil, errors.Wrap(err, "list admin products")
	}
	return &page, nil
}

// UpdateStock sets the stock of a product.
func (c *Client) UpdateStock(ctx context.Context, productID string, stock int) error {
	body := struct {
		Stock int `json:"stock"`
	}{Stock: stock}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/products/"+url.PathEscape(productID)+"/stock", nil, body, nil); err != nil {
		return errors.Wrap(err, "update stock")
	}
	return nil
}

// AllOrders returns every order.
func (c *Client) AllOrders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}
	return out, nil
}

// SetOrderStatus moves an order to status.
func (c *Client) SetOrderStatus(ctx context.Context, id string, status order.Status) error {
	if !status.Valid() {
		return errors.Errorf("invalid order status %q", status)
	}
	body := struct {
		Status order.Status `json:"status"`
	}{Status: status}
	if err := c.do(ctx, http.MethodPut, "/api/admin/orders/"+url.PathEscape(id)+"/status", nil, body, nil); err != nil {
		return errors.Wrap(err, "set order status")
	}
	return nil
}

// ApproveReturn approves a customer's return request.
func (c *Client) ApproveReturn(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPut, "/api/admin/orders/"+url.PathEscape(id)+"/approve-return", nil, struct{}{}, nil); err != nil {
		return errors.Wrap(err, "approve return")
	}
	return nil
}

// Users returns every account.
func (c *Client) Users(ctx context.Context) ([]report.User, error) {
	var out []report.User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return out, nil
}

// ToggleBlock blocks or unblocks an account.
func (c *Client) ToggleBlock(ctx context.Context, userID string) error {
	if err := c.do(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(userID)+"/block", nil, struct{}{}, nil); err != nil {
		return errors.Wrap(err, "toggle block")
	}
	return nil
}

// AdminCategories returns every category for the management page.
func (c *Client) AdminCategories(ctx context.Context) ([]product.Category, error) {
	var out []product.Category
	if err := c.do(ctx, http.MethodGet, "/api/admin/categories", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "list admin categories")
	}
	return out, nil
}

// CreateCategory adds a category and returns it as stored.
func (c *Client) CreateCategory(ctx context.Context, in product.CategoryInput) (*product.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/admin/categories", nil, in, &raw); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	var cat product.Category
	if err := decodeEntity(raw, "category", &cat); err != nil {
		return nil, errors.Wrap(err, "decode category")
	}
	return &cat, nil
}

// UpdateCategory replaces a category's name and description.
func (c *Client) UpdateCategory(ctx context.Context, id string, in product.CategoryInput) (*product.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, "/api/admin/categories/"+url.PathEscape(id), nil, in, &raw); err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	cat := product.Category{ID: id}
	if err := decodeEntity(raw, "category", &cat); err != nil {
		return nil, errors.Wrap(err, "decode category")
	}
	return &cat, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/admin/categories/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return errors.Wrap(err, "delete category")
	}
	return nil
}

func productForm(in product.ProductInput) ([][2]string, formFile) {
	fields := [][2]string{
		{"name", in.Name},
		{"retail_price", in.Price.String()},
		{"stock", strconv.Itoa(in.Stock)},
		{"categoryId", in.CategoryID},
		{"description", in.Description},
	}
	name := in.ImageName
	if name == "" {
		name = "image"
	}
	return fields, formFile{field: "image", name: name, data: in.Image}
}

// CreateProduct adds a product. The form carries the image file when set.
func (c *Client) CreateProduct(ctx context.Context, in product.ProductInput) (*product.Product, error) {
	fields, file := productForm(in)
	var raw json.RawMessage
	if err := c.doForm(ctx, http.MethodPost, "/api/admin/products", fields, file, &raw); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	var p product.Product
	if err := decodeEntity(raw, "product", &p); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return &p, nil
}

// UpdateProduct replaces a product's fields, and its image when one is set.
func (c *Client) UpdateProduct(ctx context.Context, id string, in product.ProductInput) error {
	fields, file := productForm(in)
	if err := c.doForm(ctx, http.MethodPut, "/api/admin/products/"+url.PathEscape(id), fields, file, nil); err != nil {
		return errors.Wrap(err, "update product")
	}
	return nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/admin/products/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return errors.Wrap(err, "delete product")
	}
	return nil
}

// SetProductCategory moves a product to another category.
func (c *Client) SetProductCategory(ctx context.Context, productID, categoryID string) error {
	body := struct {
		CategoryID string `json:"categoryId"`
	}{CategoryID: categoryID}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/products/"+url.PathEscape(productID)+"/category", nil, body, nil); err != nil {
		return errors.Wrap(err, "set product category")
	}
	return nil
}

// decodeEntity decodes raw into out, unwrapping {"<key>": ...} when the
// response is enveloped. An empty response leaves out unchanged.
func decodeEntity(raw json.RawMessage, key string, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var env map[string]json.RawMessage
	if !isArray(raw) && json.Unmarshal(raw, &env) == nil {
		if inner, ok := env[key]; ok {
			raw = inner
		}
	}
	return json.Unmarshal(raw, out)
}
