package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ably/internal/cache"
	"ably/internal/contrast"
	"ably/internal/trace"
)

// DefaultSchemeURL is The Color API scheme endpoint.
const DefaultSchemeURL = "https://www.thecolorapi.com/scheme"

type SchemeOptions struct {
	URL        string
	Mode       string // default "complement"
	Count      int    // default 5
	UserAgent  string
	HTTPClient *http.Client
	Cache      cache.Backend
	TTL        time.Duration
	Logger     *zerolog.Logger
}

// SchemeClient fetches color schemes built around a seed color.
type SchemeClient struct {
	opts   SchemeOptions
	logger *zerolog.Logger
}

var _ contrast.SchemeSource = (*SchemeClient)(nil)

func NewSchemeClient(opts SchemeOptions) *SchemeClient {
	if opts.URL == "" {
		opts.URL = DefaultSchemeURL
	}
	if opts.Mode == "" {
		opts.Mode = "complement"
	}
	if opts.Count <= 0 {
		opts.Count = 5
	}
	logger := nopIfNil(opts.Logger)
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(logger, DefaultTimeout, false)
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	return &SchemeClient{opts: opts, logger: logger}
}

type schemeResponse struct {
	Colors []struct {
		Hex struct {
			Value string `json:"value"`
		} `json:"hex"`
		Name struct {
			Value string `json:"value"`
		} `json:"name"`
	} `json:"colors"`
}

func (c *SchemeClient) Suggest(ctx context.Context, hex string) ([]contrast.SchemeColor, error) {
	seed := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	key := "scheme:" + c.opts.Mode + ":" + seed
	if data, ok, err := c.opts.Cache.Get(ctx, key); err == nil && ok {
		var cached []contrast.SchemeColor
		if err := json.Unmarshal(data, &cached); err == nil {
			trace.Point(ctx, trace.ScopeRule, "scheme-cache-hit", seed)
			return cached, nil
		}
	}

	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return nil, fmt.Errorf("scheme url %q: %w", c.opts.URL, err)
	}
	q := u.Query()
	q.Set("hex", seed)
	q.Set("mode", c.opts.Mode)
	q.Set("count", fmt.Sprint(c.opts.Count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build scheme request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scheme request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body, MaxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read scheme response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheme service: unexpected status %d", resp.StatusCode)
	}
	var parsed schemeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode scheme response: %w", err)
	}
	out := make([]contrast.SchemeColor, 0, len(parsed.Colors))
	for _, col := range parsed.Colors {
		if col.Hex.Value == "" {
			continue
		}
		out = append(out, contrast.SchemeColor{Name: col.Name.Value, Hex: col.Hex.Value})
	}

	if data, err := json.Marshal(out); err == nil {
		if err := c.opts.Cache.Set(ctx, key, data, c.opts.TTL); err != nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("scheme cache write failed")
		}
	}
	return out, nil
}
