package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Products returns the product listing for params. The API answers with a
// page object, or with a bare array when it does not paginate; both are
// returned as a Page, the latter without pagination metadata.
func (c *Client) Products(ctx context.Context, params url.Values) (*product.Page, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/products", params, nil, &raw); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if isArray(raw) {
		var products []product.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, errors.Wrap(err, "decode products")
		}
		return &product.Page{Products: products}, nil
	}
	page := &product.Page{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, page); err != nil {
			return nil, errors.Wrap(err, "decode product page")
		}
	}
	return page, nil
}

// TopProducts returns the curated set shown on the home page.
func (c *Client) TopProducts(ctx context.Context) ([]product.Product, error) {
	page, err := c.Products(ctx, url.Values{"top": {"true"}})
	if err != nil {
		return nil, errors.Wrap(err, "top products")
	}
	return page.Products, nil
}

// Product returns a single product.
func (c *Client) Product(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

// Categories returns every category. Concurrent callers share one request;
// a caller that gives up does not cancel it for the others.
func (c *Client) Categories(ctx context.Context) ([]product.Category, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan("categories", func() (any, error) {
		var categories []product.Category
		if err := c.do(shared, http.MethodGet, "/api/categories", nil, nil, &categories); err != nil {
			return nil, err
		}
		return categories, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, errors.Wrap(res.Err, "list categories")
		}
		return res.Val.([]product.Category), nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "list categories")
	}
}

// Category returns a category by id or slug.
func (c *Client) Category(ctx context.Context, idOrSlug string) (*product.Category, error) {
	var cat product.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(idOrSlug), nil, nil, &cat); err != nil {
		return nil, errors.Wrap(err, "get category")
	}
	return &cat, nil
}

// Reviews returns the reviews of a product.
func (c *Client) Reviews(ctx context.Context, productID string) ([]product.Review, error) {
	var reviews []product.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+url.PathEscape(productID), nil, nil, &reviews); err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return reviews, nil
}

// ReviewInput is the body for posting a review.
type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// AddReview posts a review for the logged-in user.
func (c *Client) AddReview(ctx context.Context, in ReviewInput) error {
	if err := c.do(ctx, http.MethodPost, "/api/reviews", nil, in, nil); err != nil {
		return errors.Wrap(err, "add review")
	}
	return nil
}
