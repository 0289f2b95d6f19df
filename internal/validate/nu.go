package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultNuURL is the public W3C Nu checker.
const DefaultNuURL = "https://validator.w3.org/nu/"

// maxNuResponse caps the JSON report of one document.
const maxNuResponse = 16 << 20

// NuClient posts documents to a Nu checker instance.
type NuClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zerolog.Logger
}

var _ W3CValidator = (*NuClient)(nil)

func NewNuClient(logger *zerolog.Logger, httpClient *http.Client, userAgent, baseURL string) *NuClient {
	if baseURL == "" {
		baseURL = DefaultNuURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NuClient{baseURL: baseURL, userAgent: userAgent, httpClient: httpClient, logger: logger}
}

type nuResponse struct {
	Messages []W3CMessage `json:"messages"`
}

func (c *NuClient) Validate(ctx context.Context, text string) ([]W3CMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("nu url %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("out", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("build nu request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nu request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxNuResponse+1))
	if err != nil {
		c.logger.Debug().Err(err).Msg("error while reading nu response body")
		return nil, fmt.Errorf("read nu response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nu checker: unexpected status %d", resp.StatusCode)
	}
	if len(body) > maxNuResponse {
		return nil, fmt.Errorf("nu response over %d bytes", maxNuResponse)
	}

	var out nuResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Debug().Err(err).Msg("error while unmarshaling nu response")
		return nil, fmt.Errorf("decode nu response: %w", err)
	}
	return out.Messages, nil
}
