// Package imageref normalizes the product image references stored by the
// storefront API into a single directly loadable URL.
//
// The API has stored image references in several shapes over time: a bare
// path, an absolute URL, a JSON array of strings, a string holding such an
// array, and arrays whose first element is itself a JSON-encoded array. At
// most two array levels are unwrapped, and a string holding an array counts
// as both; anything nested deeper is kept as an opaque string.
package imageref

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// DefaultPlaceholder is the image shown when a reference cannot be resolved.
const DefaultPlaceholder = "/placeholder.png"

// maxLevels is the number of array levels unwrapped before a value is taken
// verbatim.
const maxLevels = 2

// Parse errors. Resolve never returns them; they are exposed through Parse so
// callers can log why a placeholder was used.
var (
	ErrAbsent      = errors.New("image reference is absent")
	ErrEmpty       = errors.New("image reference array is empty")
	ErrMalformed   = errors.New("image reference is malformed")
	ErrUnsupported = errors.New("image reference has unsupported type")
)

// Config configures a Resolver.
type Config struct {
	// BaseURL is prepended to relative paths.
	BaseURL string
	// Production enables the http:// to https:// upgrade.
	Production bool
	// Placeholder replaces unresolvable references. Defaults to DefaultPlaceholder.
	Placeholder string
}

// Resolver turns image references into URLs. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	base        string
	production  bool
	placeholder string
}

// New creates a Resolver from cfg.
func New(cfg Config) *Resolver {
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Resolver{
		base:        strings.TrimRight(cfg.BaseURL, "/"),
		production:  cfg.Production,
		placeholder: placeholder,
	}
}

// Placeholder returns the configured placeholder.
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Resolve returns the URL for the raw JSON image reference, or the
// placeholder when the reference is absent or malformed.
func (r *Resolver) Resolve(ref []byte) string {
	candidate, err := Parse(ref)
	if err != nil {
		return r.placeholder
	}
	return r.finish(candidate)
}

// ResolveString resolves a reference that is already a decoded string, such
// as a path or a JSON-encoded array held in a plain text field.
func (r *Resolver) ResolveString(s string) string {
	candidate, err := fromString(s, 0)
	if err != nil {
		return r.placeholder
	}
	return r.finish(candidate)
}

// Parse extracts the candidate location from a raw JSON image reference
// without cleaning it up or making it absolute.
func Parse(ref []byte) (string, error) {
	if len(strings.TrimSpace(string(ref))) == 0 {
		return "", ErrAbsent
	}
	return fromJSON(ref, 0)
}

func fromJSON(raw []byte, level int) (string, error) {
	if !jx.Valid(raw) {
		return "", ErrMalformed
	}
	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Null:
		return "", ErrAbsent
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return "", ErrMalformed
		}
		return fromString(s, level)
	case jx.Array:
		if level >= maxLevels {
			return strings.TrimSpace(string(raw)), nil
		}
		first, err := firstElement(d)
		if err != nil {
			return "", err
		}
		return fromJSON(first, level+1)
	default:
		return "", ErrUnsupported
	}
}

func fromString(s string, level int) (string, error) {
	if level < maxLevels && strings.HasPrefix(strings.TrimSpace(s), "[") {
		// An encoded array is unwrapped once, whether it is the whole
		// reference or the first element of an array.
		return fromJSON([]byte(s), max(level, maxLevels-1))
	}
	return s, nil
}

// firstElement returns a copy of the first element of the array under d.
func firstElement(d *jx.Decoder) ([]byte, error) {
	var first []byte
	err := d.Arr(func(d *jx.Decoder) error {
		if first != nil {
			return d.Skip()
		}
		v, err := d.Raw()
		if err != nil {
			return err
		}
		first = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, ErrMalformed
	}
	if first == nil {
		return nil, ErrEmpty
	}
	return first, nil
}

func (r *Resolver) finish(candidate string) string {
	u := strings.TrimSpace(strings.Trim(candidate, `"`))
	if u == "" {
		return r.placeholder
	}
	if !strings.HasPrefix(u, "http") {
		u = r.base + "/" + strings.TrimLeft(u, "/")
	}
	if r.production && strings.HasPrefix(u, "http://") {
		u = "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
