package product

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Errors returned by input validation and lookups.
var (
	ErrNotFound      = errors.New("product not found")
	ErrMissingName   = errors.New("a name is required")
	ErrNegativePrice = errors.New("price cannot be negative")
	ErrNegativeStock = errors.New("stock cannot be negative")
)

// Product represents a catalog item as returned by the storefront API.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	LegacyName  string          `json:"product_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    CategoryRef     `json:"category"`
	Rating      float64         `json:"overall_rating"`
	Reviews     int             `json:"total_reviews"`
	CreatedAt   time.Time       `json:"createdAt"`

	// Image references in every shape the API has stored over time. They are
	// kept raw and normalized by the imageref package.
	Images   json.RawMessage `json:"images,omitempty"`
	ImageURL json.RawMessage `json:"imageUrl,omitempty"`
	Image    json.RawMessage `json:"image,omitempty"`
}

// Title returns the display name. The legacy product_name field wins when
// both are set, matching what older listings showed.
func (p Product) Title() string {
	switch {
	case p.LegacyName != "":
		return p.LegacyName
	case p.Name != "":
		return p.Name
	default:
		return "Unnamed Product"
	}
}

// ImageRef returns the first present image reference, checking images,
// imageUrl and image in that order. It returns nil when none is set.
func (p Product) ImageRef() []byte {
	for _, raw := range [][]byte{p.Images, p.ImageURL, p.Image} {
		if present(raw) {
			return raw
		}
	}
	return nil
}

// present reports whether raw holds a JSON value that is not null, false or
// an empty string.
func present(raw []byte) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", `""`:
		return false
	}
	return true
}

// CategoryRef is a product's category, which the API sends either as a bare
// identifier or as a populated category object.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a string identifier, a category object or null.
func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*c = CategoryRef{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return errors.Wrap(err, "category id")
		}
		*c = CategoryRef{ID: id}
		return nil
	}

	type plain CategoryRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "category object")
	}
	*c = CategoryRef(v)
	return nil
}

// Category is a catalog category.
type Category struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug,omitempty"`
	Description string          `json:"description,omitempty"`
	Image       json.RawMessage `json:"image,omitempty"`
}

// CategoryInput is the body for creating or editing a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the input before it is sent.
func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// ProductInput is the admin form for creating or editing a product. It is
// sent as multipart form data with an optional image file.
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	Description string

	Image     []byte
	ImageName string
}

// Validate checks the input before it is sent.
func (in ProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return ErrMissingName
	case in.Price.IsNegative():
		return ErrNegativePrice
	case in.Stock < 0:
		return ErrNegativeStock
	}
	return nil
}

// Page is one page of the product listing endpoint.
type Page struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
	PageSize int       `json:"pageSize"`
}

// Paginated reports whether the server filled in pagination metadata. The
// unpaginated listing (used for client-side slicing) leaves it zero.
func (p *Page) Paginated() bool {
	return p.Pages > 0 || p.Total > 0
}

// Review is a customer review of a product.
type Review struct {
	ID        string    `json:"_id"`
	ProductID string    `json:"product"`
	UserName  string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
