package shop

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/apiclient"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/store"
)

// ErrInvalidReview is returned for a review without a 1-5 star rating.
var ErrInvalidReview = errors.New("rating must be between 1 and 5")

func catalogRejected(err error) store.Action { return store.CatalogRejected{Err: err} }

// Product loads a product and makes it the one being viewed.
func (s *Service) Product(ctx context.Context, id string) (*product.Product, error) {
	return run(ctx, s, "fetch product", store.CatalogPending{},
		func(ctx context.Context) (*product.Product, error) { return s.api.Product(ctx, id) },
		func(p *product.Product) store.Action { return store.ProductFulfilled{Product: *p} },
		catalogRejected,
	)
}

// Categories loads the category list.
func (s *Service) Categories(ctx context.Context) ([]product.Category, error) {
	return run(ctx, s, "fetch categories", store.CatalogPending{}, s.api.Categories,
		func(c []product.Category) store.Action { return store.CategoriesFulfilled{Categories: c} },
		catalogRejected,
	)
}

// SetSearchQuery records the header search box text.
func (s *Service) SetSearchQuery(q string) {
	s.store.Dispatch(store.SetSearchQuery{Query: strings.TrimSpace(q)})
}

// Reviews returns a product's reviews. A failure is logged and yields no
// reviews.
func (s *Service) Reviews(ctx context.Context, productID string) []product.Review {
	reviews, err := s.api.Reviews(ctx, productID)
	if err != nil {
		zctx.From(ctx).Warn("Fetch reviews", zap.String("product", productID), zap.Error(err))
		return []product.Review{}
	}
	return reviews
}

// AddReview posts a review as the logged-in user and returns the refreshed
// review list.
func (s *Service) AddReview(ctx context.Context, productID string, rating int, comment string) ([]product.Review, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidReview
	}
	in := apiclient.ReviewInput{
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.api.AddReview(ctx, in); err != nil {
		return nil, err
	}
	return s.Reviews(ctx, productID), nil
}
