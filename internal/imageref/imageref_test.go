package imageref

import (
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://api.x.com"

func TestResolve(t *testing.T) {
	r := New(Config{BaseURL: testBase + "/", Production: true})

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "absent", ref: "", want: DefaultPlaceholder},
		{name: "null", ref: "null", want: DefaultPlaceholder},
		{name: "empty string", ref: `""`, want: DefaultPlaceholder},
		{name: "array of path", ref: `["/uploads/a.png"]`, want: "https://api.x.com/uploads/a.png"},
		{name: "bare path", ref: `"uploads/b.png"`, want: "https://api.x.com/uploads/b.png"},
		{name: "string encoded array", ref: `"[\"/uploads/c.png\"]"`, want: "https://api.x.com/uploads/c.png"},
		{name: "double encoded", ref: `["[\"/uploads/d.png\"]"]`, want: "https://api.x.com/uploads/d.png"},
		{name: "insecure absolute upgraded", ref: `"http://cdn.x.com/e.png"`, want: "https://cdn.x.com/e.png"},
		{name: "secure absolute kept", ref: `["https://cdn.x.com/f.png"]`, want: "https://cdn.x.com/f.png"},
		{name: "empty array", ref: `[]`, want: DefaultPlaceholder},
		{name: "array of empty string", ref: `[""]`, want: DefaultPlaceholder},
		{name: "malformed encoded array", ref: `"["`, want: DefaultPlaceholder},
		{name: "malformed json", ref: `[`, want: DefaultPlaceholder},
		{name: "quoted element", ref: `["\"/uploads/g.png\""]`, want: "https://api.x.com/uploads/g.png"},
		{name: "whitespace around", ref: `["  /uploads/h.png  "]`, want: "https://api.x.com/uploads/h.png"},
		{name: "number element", ref: `[42]`, want: DefaultPlaceholder},
		{name: "object", ref: `{"url":"/a.png"}`, want: DefaultPlaceholder},
		{name: "many elements takes first", ref: `["/1.png","/2.png"]`, want: "https://api.x.com/1.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve([]byte(tt.ref)))
		})
	}
}

func TestResolve_Development(t *testing.T) {
	r := New(Config{BaseURL: "http://localhost:5000"})

	assert.Equal(t, "http://localhost:5000/uploads/a.png", r.Resolve([]byte(`["/uploads/a.png"]`)))
	assert.Equal(t, "http://cdn.x.com/e.png", r.ResolveString("http://cdn.x.com/e.png"))
}

func TestResolve_CustomPlaceholder(t *testing.T) {
	r := New(Config{BaseURL: testBase, Placeholder: "/img/none.svg"})

	assert.Equal(t, "/img/none.svg", r.Placeholder())
	assert.Equal(t, "/img/none.svg", r.Resolve(nil))
}

func TestResolve_ThirdLevelIsOpaque(t *testing.T) {
	got, err := Parse([]byte(`[["[\"/deep.png\"]"]]`))
	require.NoError(t, err)
	assert.Equal(t, `["/deep.png"]`, got)

	r := New(Config{BaseURL: testBase})
	assert.True(t, strings.HasPrefix(r.Resolve([]byte(`[["[\"/deep.png\"]"]]`)), testBase+"/"))
}

func TestResolve_EncodedStringUnwrapsOnce(t *testing.T) {
	got, err := Parse([]byte(`"[\"[\\\"/a.png\\\"]\"]"`))
	require.NoError(t, err)
	assert.Equal(t, `["/a.png"]`, got)

	r := New(Config{BaseURL: testBase})
	assert.Equal(t, testBase+`/["/a.png"]`, r.ResolveString(`["[\"/a.png\"]"]`))
	assert.Equal(t, testBase+"/a.png", r.ResolveString(`["/a.png"]`))
}

func TestResolve_Idempotent(t *testing.T) {
	r := New(Config{BaseURL: testBase, Production: true})

	for _, ref := range []string{
		`["/uploads/a.png"]`,
		`"http://cdn.x.com/e.png"`,
		`"[\"uploads/c.png\"]"`,
	} {
		first := r.Resolve([]byte(ref))
		assert.Equal(t, first, r.ResolveString(first), ref)
	}
}

func TestResolve_SingleSlashJoin(t *testing.T) {
	for _, base := range []string{testBase, testBase + "/", testBase + "//"} {
		r := New(Config{BaseURL: base})
		for _, path := range []string{"a.png", "/a.png", "//a.png"} {
			got := r.ResolveString(path)
			assert.Equal(t, testBase+"/a.png", got, "base %q path %q", base, path)
			assert.NotContains(t, strings.TrimPrefix(got, "https://"), "//")
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want error
	}{
		{name: "absent", ref: " ", want: ErrAbsent},
		{name: "null", ref: "null", want: ErrAbsent},
		{name: "empty array", ref: "[]", want: ErrEmpty},
		{name: "malformed", ref: "[", want: ErrMalformed},
		{name: "malformed encoded", ref: `"[oops"`, want: ErrMalformed},
		{name: "bool", ref: "true", want: ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.ref))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
