package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"ably/internal/cache"
	"ably/internal/trace"
	"ably/internal/validate"
)

// DefaultCaptionURL is the BLIP large captioning model on the Hugging Face
// inference API.
const DefaultCaptionURL = "https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-large"

// DefaultCaptionTokenEnv holds the inference API token.
const DefaultCaptionTokenEnv = "BLIP_TOKEN"

const (
	captionNotFound = ". Unfortunately, we cannot find the image."
	captionFailed   = ". Unfortunately, we cannot recommend an alt-text for this image."
)

// captionFixes strips phrasing and tokenizer artifacts the model is known
// to produce. Applied in order, first occurrence only.
var captionFixes = []struct{ old, new string }{
	{"there are ", ""},
	{"there is ", ""},
	{"arafed ", ""},
	{"araffe ", ""},
	{"araf ", "person "},
	{"arafe ", ""},
	{"araffes ", "people "},
	{"araffy ", ""},
	{"araffed ", ""},
}

type CaptionOptions struct {
	URL        string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	Cache      cache.Backend
	TTL        time.Duration
	Logger     *zerolog.Logger
}

// Captioner proposes alt text with an image captioning model.
type Captioner struct {
	url        string
	token      string
	userAgent  string
	httpClient *http.Client
	cache      cache.Backend
	ttl        time.Duration
	logger     *zerolog.Logger
	policy     *bluemonday.Policy
}

var _ validate.Captioner = (*Captioner)(nil)

func NewCaptioner(opts CaptionOptions) *Captioner {
	c := &Captioner{
		url:        opts.URL,
		token:      opts.Token,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		cache:      opts.Cache,
		ttl:        opts.TTL,
		logger:     nopIfNil(opts.Logger),
		policy:     bluemonday.StrictPolicy(),
	}
	if c.url == "" {
		c.url = DefaultCaptionURL
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(c.logger, DefaultTimeout, false)
	}
	if c.cache == nil {
		c.cache = cache.Nop{}
	}
	return c
}

type captionRequest struct {
	URL string `json:"url"`
}

type captionResult struct {
	GeneratedText string `json:"generated_text"`
}

// SuggestAltText returns ": <img src='SRC' alt='Caption'>" or one of the
// neutral fallback sentences.
func (c *Captioner) SuggestAltText(ctx context.Context, ref validate.ImageRef) string {
	key := "caption:" + ref.Path()
	if v, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		trace.Point(ctx, trace.ScopeRule, "caption-cache-hit", ref.Src)
		return string(v)
	} else if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("caption cache read failed")
	}

	var (
		body        []byte
		contentType string
	)
	if ref.IsURL() {
		body, _ = json.Marshal(captionRequest{URL: ref.Src})
		contentType = "application/json"
	} else {
		data, err := os.ReadFile(ref.Path())
		if err != nil {
			c.logger.Debug().Err(err).Str("src", ref.Src).Msg("image not readable")
			return captionNotFound
		}
		body = data
		contentType = http.DetectContentType(data)
	}

	caption, err := c.caption(ctx, body, contentType)
	if err != nil {
		c.logger.Debug().Err(err).Str("src", ref.Src).Msg("captioning failed")
		return captionFailed
	}
	out := ": <img src='" + ref.Src + "' alt='" + caption + "'>"
	if err := c.cache.Set(ctx, key, []byte(out), c.ttl); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("caption cache write failed")
	}
	return out
}

func (c *Captioner) caption(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build caption request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		auth := c.token
		if !strings.HasPrefix(auth, "Bearer ") {
			auth = "Bearer " + auth
		}
		req.Header.Set("Authorization", auth)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body, MaxResponseBytes)
	if err != nil {
		return "", fmt.Errorf("read caption response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption service: unexpected status %d", resp.StatusCode)
	}
	var results []captionResult
	if err := json.Unmarshal(data, &results); err != nil {
		return "", fmt.Errorf("decode caption response: %w", err)
	}
	if len(results) == 0 || strings.TrimSpace(results[0].GeneratedText) == "" {
		return "", fmt.Errorf("caption service returned no text")
	}
	return c.policy.Sanitize(cleanCaption(results[0].GeneratedText)), nil
}

// cleanCaption applies captionFixes and capitalizes the first letter.
func cleanCaption(s string) string {
	s = strings.TrimSpace(s)
	for _, f := range captionFixes {
		s = strings.Replace(s, f.old, f.new, 1)
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
