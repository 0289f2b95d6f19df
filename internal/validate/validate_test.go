package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ably/internal/diag"
	"ably/internal/source"
	"ably/internal/wcag"
)

const page = "<html>\n<head><title>t</title></head>\n<body>\n  <h1></h1>\n   <p>x</p>\n  <img src=\"cat.png\">\n</body>\n</html>\n"

func newFile(t *testing.T, text string) *source.File {
	t.Helper()
	fs := source.NewFileSetWithBase(t.TempDir())
	return fs.Get(fs.AddVirtual(filepath.Join("site", "index.html"), []byte(text)))
}

func TestParseHTMLValidateFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "html-validate.json"))
	require.NoError(t, err)
	msgs, err := ParseHTMLValidate(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, WHATWGMessage{
		RuleID:   "empty-heading",
		Severity: 2,
		Message:  "<h1> cannot be empty, must have text content",
		Line:     4,
		Column:   3,
		Size:     2,
	}, msgs[0])

	_, err = ParseHTMLValidate([]byte("not json"))
	assert.Error(t, err)
}

func TestEmitWHATWG(t *testing.T) {
	file := newFile(t, page)
	msgs := []WHATWGMessage{
		{RuleID: "empty-heading", Line: 4, Column: 4, Size: 2},
		{RuleID: "no-inline-style", Line: 5, Column: 4, Size: 1},
		{RuleID: "empty-heading", Line: 4, Column: 4, Size: 4},
	}
	bag := diag.NewBag()
	n := EmitWHATWG(file, msgs, nil, diag.BagReporter{Bag: bag})
	require.Equal(t, 1, n)

	d := bag.Items()[0]
	mapping, _ := wcag.LookupWHATWG("empty-heading")
	assert.Equal(t, mapping.ErrorMessage, d.Message)
	assert.Equal(t, mapping.Citation, d.Source)
	assert.Equal(t, "empty-heading", d.Rule)
	assert.Equal(t, diag.WhaMapped, d.Code)
	assert.Equal(t, "h1", page[d.Primary.Start:d.Primary.End])
	assert.Equal(t, []string{mapping.Suggestion}, d.Suggestions())
}

func TestEmitWHATWGSkipsExisting(t *testing.T) {
	file := newFile(t, page)
	mapping, _ := wcag.LookupWHATWG("empty-heading")
	start := file.Offset(source.Position{Line: 3, Character: 2})
	existing := []diag.Diagnostic{
		diag.NewWarning(diag.StrInfo, source.Span{File: file.ID, Start: start, End: start + 9}, mapping.ErrorMessage),
	}
	bag := diag.NewBag()
	n := EmitWHATWG(file, []WHATWGMessage{{RuleID: "empty-heading", Line: 4, Column: 3, Size: 2}}, existing, diag.BagReporter{Bag: bag})
	assert.Zero(t, n)
	assert.Zero(t, bag.Len())
}

func TestEmitWHATWGStopsWhenRejected(t *testing.T) {
	file := newFile(t, page)
	msgs := []WHATWGMessage{
		{RuleID: "empty-heading", Line: 4, Column: 3, Size: 2},
		{RuleID: "empty-title", Line: 2, Column: 8, Size: 5},
	}
	calls := 0
	r := diag.ReporterFunc(func(diag.Diagnostic) bool {
		calls++
		return false
	})
	assert.Zero(t, EmitWHATWG(file, msgs, nil, r))
	assert.Equal(t, 1, calls)
}

func TestW3CRange(t *testing.T) {
	start, end := W3CRange(W3CMessage{FirstLine: 2, FirstColumn: 3, LastLine: 4, LastColumn: 9})
	assert.Equal(t, source.Position{Line: 1, Character: 3}, start)
	assert.Equal(t, source.Position{Line: 3, Character: 8}, end)

	// `<img src="a.png">` at column 3: the brackets stay outside the range
	start, end = W3CRange(W3CMessage{FirstColumn: 3, LastLine: 6, LastColumn: 19})
	assert.Equal(t, source.Position{Line: 5, Character: 3}, start)
	assert.Equal(t, source.Position{Line: 5, Character: 18}, end)

	start, end = W3CRange(W3CMessage{FirstColumn: 5, LastLine: 1, LastColumn: 2})
	assert.Equal(t, start, end)
}

type recordingCaptioner struct {
	mu   sync.Mutex
	refs []ImageRef
}

func (c *recordingCaptioner) SuggestAltText(_ context.Context, ref ImageRef) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs = append(c.refs, ref)
	return ": <img src='" + ref.Src + "' alt='A cat'>"
}

func TestResolveW3CEnrichesImages(t *testing.T) {
	file := newFile(t, page)
	msgs := []W3CMessage{
		{Type: "error", Message: "An “img” element must have an “alt” attribute, except under certain conditions.", Extract: "\n  <img src=\"cat.png\">\n", LastLine: 6, FirstColumn: 3, LastColumn: 21},
		{Type: "info", Message: "Trailing slash on void elements has no effect", LastLine: 2, LastColumn: 4},
		{Type: "error", Message: "Stray end tag “div”.", LastLine: 7, FirstColumn: 1, LastColumn: 6},
	}
	capt := &recordingCaptioner{}
	found := ResolveW3C(context.Background(), file, msgs, capt, nil)
	require.Len(t, found, 2)

	img := found[0]
	assert.Equal(t, wcag.ImageAltPrefix+": <img src='cat.png' alt='A cat'>", img.Suggestion)
	require.Len(t, capt.refs, 1)
	assert.Equal(t, "cat.png", capt.refs[0].Src)
	assert.Equal(t, filepath.Join(file.Dir(), "cat.png"), capt.refs[0].Path())

	assert.Equal(t, "Stray end tag", found[1].Mapping.RuleID)

	bag := diag.NewBag()
	require.Equal(t, 2, EmitW3C(file, found, diag.BagReporter{Bag: bag}))
	d := bag.Items()[0]
	assert.Equal(t, img.Mapping.Citation, d.Source)
	assert.Equal(t, diag.W3CMapped, d.Code)
	assert.Equal(t, `<img src="cat.png">`, page[d.Primary.Start:d.Primary.End])

	// the dictionary keeps its generic suggestion
	again, _ := wcag.LookupW3C(msgs[0].Message)
	assert.Equal(t, img.Mapping.Suggestion, again.Suggestion)
	assert.NotEqual(t, img.Suggestion, again.Suggestion)
}

func TestResolveW3CWithoutSource(t *testing.T) {
	file := newFile(t, page)
	msgs := []W3CMessage{{Message: "An “img” element must have an “alt” attribute", Extract: "<img>", LastLine: 6}}
	capt := &recordingCaptioner{}
	found := ResolveW3C(context.Background(), file, msgs, capt, nil)
	require.Len(t, found, 1)
	assert.Equal(t, found[0].Mapping.Suggestion, found[0].Suggestion)
	assert.Empty(t, capt.refs)
}

func TestImageRef(t *testing.T) {
	assert.True(t, ImageRef{Src: "https://example.com/a.png"}.IsURL())
	assert.Equal(t, "https://example.com/a.png", ImageRef{Src: "https://example.com/a.png", Dir: "/site"}.Path())
	assert.Equal(t, filepath.Join("/site", "img", "a.png"), ImageRef{Src: "img/a.png", Dir: "/site"}.Path())
	assert.Equal(t, "/abs/a.png", ImageRef{Src: "/abs/a.png", Dir: "/site"}.Path())
}

func TestNuClientValidate(t *testing.T) {
	logger := zerolog.Nop()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "json", r.URL.Query().Get("out"))
		assert.Equal(t, "text/html; charset=utf-8", r.Header.Get("Content-Type"))
		assert.Equal(t, "ably-test", r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, page, string(body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"type": "error", "message": "Stray end tag “div”.", "lastLine": 7, "firstColumn": 1, "lastColumn": 6, "extract": "</div>"},
			},
		})
	}))
	defer server.Close()

	client := NewNuClient(&logger, server.Client(), "ably-test", server.URL+"/nu/")
	msgs, err := client.Validate(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, W3CMessage{Type: "error", Message: "Stray end tag “div”.", Extract: "</div>", LastLine: 7, FirstColumn: 1, LastColumn: 6}, msgs[0])
}

func TestNuClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewNuClient(nil, server.Client(), "", server.URL)
	_, err := client.Validate(context.Background(), page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNuClientOversizedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[]}`))
		_, _ = w.Write(bytes.Repeat([]byte(" "), maxNuResponse))
	}))
	defer server.Close()

	client := NewNuClient(nil, server.Client(), "", server.URL)
	_, err := client.Validate(context.Background(), page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nu response over")
}

func TestHTMLValidateMissingBinary(t *testing.T) {
	v := NewHTMLValidate(nil, []string{"nonexistent-html-validate-12345"}, "")
	_, err := v.Validate(context.Background(), page)
	assert.ErrorIs(t, err, ErrValidatorUnavailable)
}
