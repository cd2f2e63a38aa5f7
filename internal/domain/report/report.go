package report

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

// Summary holds the admin dashboard headline numbers.
type Summary struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalOrders   int             `json:"totalOrders"`
	TotalProducts int             `json:"totalProducts"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	PendingOrders int             `json:"pendingOrders"`
	Delivered     int             `json:"deliveredOrders"`
}

// MonthlyRevenue is revenue aggregated per calendar month.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CategorySales is revenue aggregated per category.
type CategorySales struct {
	CategoryID string          `json:"categoryId"`
	Category   string          `json:"categoryName"`
	Sales      decimal.Decimal `json:"totalSales"`
	Quantity   int             `json:"totalQty"`
}

// StatusCount is the number of orders in a given status.
type StatusCount struct {
	Status order.Status `json:"status"`
	Count  int          `json:"count"`
}

// TopProduct is a best seller by units sold.
type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	Sold      int             `json:"totalQty"`
	Revenue   decimal.Decimal `json:"totalRevenue"`
}

// User is an account as listed in the admin console.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`

	// Blocked users cannot log in.
	Blocked bool `json:"isBlocked"`
}
