// Package catalog composes product listing queries from filter controls and
// orchestrates the fetches that back a listing view.
//
// A Machine owns the current Query. A View subscribes to it, decides between
// the curated top set and the filtered listing, and publishes results in the
// order queries were issued, never in the order responses arrive.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// CategoryAll selects every category.
const CategoryAll = "all"

// DefaultPageSize is the number of products on a listing page.
const DefaultPageSize = 15

var (
	ErrInvalidRating      = errors.New("rating must be between 0 and 4")
	ErrInvalidPage        = errors.New("page must be at least 1")
	ErrInvalidPriceBucket = errors.New("unknown price range")
	ErrInvalidSort        = errors.New("unknown sort key")
)

// PriceBucket is one of the fixed price filters.
type PriceBucket string

const (
	PriceAll       PriceBucket = "all"
	Price0To500    PriceBucket = "0-500"
	Price501To1000 PriceBucket = "501-1000"
	Price1001To5K  PriceBucket = "1001-5000"
	Price5001Plus  PriceBucket = "5001+"
)

// PriceBuckets lists the buckets in display order.
var PriceBuckets = []PriceBucket{PriceAll, Price0To500, Price501To1000, Price1001To5K, Price5001Plus}

// priceCeiling is the upper bound the API expects for the open-ended bucket.
const priceCeiling = 100000

// ParsePriceBucket parses a bucket from its name or its wire value.
func ParsePriceBucket(s string) (PriceBucket, error) {
	switch s = strings.TrimSpace(s); s {
	case "", string(PriceAll):
		return PriceAll, nil
	case "5001-100000":
		return Price5001Plus, nil
	}
	b := PriceBucket(s)
	if !b.Valid() {
		return "", errors.Wrapf(ErrInvalidPriceBucket, "%q", s)
	}
	return b, nil
}

// Valid reports whether b is a known bucket.
func (b PriceBucket) Valid() bool {
	for _, v := range PriceBuckets {
		if b == v {
			return true
		}
	}
	return false
}

// Wire returns the value sent as the priceRange parameter.
func (b PriceBucket) Wire() string {
	if b == Price5001Plus {
		return "5001-" + strconv.Itoa(priceCeiling)
	}
	return string(b)
}

// Bounds returns the inclusive price range of b. ok is false for PriceAll.
func (b PriceBucket) Bounds() (lo, hi decimal.Decimal, ok bool) {
	bounds, ok := priceBounds[b]
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	return decimal.NewFromInt(bounds[0]), decimal.NewFromInt(bounds[1]), true
}

var priceBounds = map[PriceBucket][2]int64{
	Price0To500:    {0, 500},
	Price501To1000: {501, 1000},
	Price1001To5K:  {1001, 5000},
	Price5001Plus:  {5001, priceCeiling},
}

// Label returns the human readable bucket name.
func (b PriceBucket) Label() string {
	switch b {
	case PriceAll, "":
		return "All"
	case Price5001Plus:
		return "₹5001+"
	}
	lo, hi, ok := b.Bounds()
	if !ok {
		return string(b)
	}
	return "₹" + lo.String() + " - ₹" + hi.String()
}

// SortKey orders the filtered listing. The zero value keeps the API default.
type SortKey string

const (
	SortDefault SortKey = ""
	SortLowest  SortKey = "lowest"
	SortHighest SortKey = "highest"
	SortNewest  SortKey = "newest"
	SortPopular SortKey = "popular"
	SortRating  SortKey = "rating"
	SortReviews SortKey = "reviews"
)

// SortKeys lists the sort keys in display order.
var SortKeys = []SortKey{SortDefault, SortLowest, SortHighest, SortNewest, SortPopular, SortRating, SortReviews}

// ParseSortKey parses a sort key. "default" and "" both select SortDefault.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "default" {
		return SortDefault, nil
	}
	k := SortKey(s)
	if !k.Valid() {
		return "", errors.Wrapf(ErrInvalidSort, "%q", s)
	}
	return k, nil
}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	for _, v := range SortKeys {
		if k == v {
			return true
		}
	}
	return false
}

// Mode tells which result set a query selects.
type Mode int

const (
	// ModeDefault shows the curated top set and ignores the page.
	ModeDefault Mode = iota
	// ModeFiltered shows the filtered listing.
	ModeFiltered
)

func (m Mode) String() string {
	if m == ModeFiltered {
		return "filtered"
	}
	return "default"
}

// Query is the composed state of a listing's filter controls. It is a
// comparable value; two queries are the same query when they are ==.
type Query struct {
	Search    string
	Category  string
	Price     PriceBucket
	MinRating int
	Sort      SortKey
	Page      int
}

// DefaultQuery returns the query a listing starts from.
func DefaultQuery() Query {
	return Query{
		Category: CategoryAll,
		Price:    PriceAll,
		Page:     1,
	}
}

// Mode derives the mode from the search, category and sort fields. Price and
// rating filters alone never leave the default mode.
func (q Query) Mode() Mode {
	if q.Search == "" && categoryIsAll(q.Category) && q.Sort == SortDefault {
		return ModeDefault
	}
	return ModeFiltered
}

// IsFiltered reports whether q selects the filtered listing.
func (q Query) IsFiltered() bool {
	return q.Mode() == ModeFiltered
}

// Params serializes the non-default fields as listing parameters. A positive
// pageSize adds pageNumber and pageSize for server-side paging.
func (q Query) Params(pageSize int) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("keyword", q.Search)
	}
	if !categoryIsAll(q.Category) {
		v.Set("category", q.Category)
	}
	if q.Price != "" && q.Price != PriceAll {
		v.Set("priceRange", q.Price.Wire())
	}
	if q.MinRating > 0 {
		v.Set("rating", strconv.Itoa(q.MinRating))
	}
	if q.Sort != SortDefault {
		v.Set("sortBy", string(q.Sort))
	}
	if pageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		v.Set("pageNumber", strconv.Itoa(page))
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
	return v
}

func categoryIsAll(c string) bool {
	return c == "" || c == CategoryAll
}
