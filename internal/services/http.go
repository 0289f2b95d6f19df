// Package services talks to the remote helpers: image captioning for alt
// text and color schemes for contrast suggestions.
package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/motemen/go-loghttp"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one service request.
const DefaultTimeout = 30 * time.Second

// MaxResponseBytes caps a service response body; captions and schemes are a
// few hundred bytes.
const MaxResponseBytes = 1 << 20

var ErrResponseTooLarge = errors.New("response body too large")

// readBody reads at most limit bytes of body and fails when more follow.
func readBody(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, limit)
	}
	return data, nil
}

// NewHTTPClient returns the client the services share. With logRequests every
// request and response line is logged at debug level.
func NewHTTPClient(logger *zerolog.Logger, timeout time.Duration, logRequests bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport
	if logRequests && logger != nil {
		transport = &loghttp.Transport{
			Transport: transport,
			LogRequest: func(req *http.Request) {
				logger.Debug().
					Str("type", "REQ").
					Str("method", req.Method).
					Msg(req.URL.Redacted())
			},
			LogResponse: func(resp *http.Response) {
				logger.Debug().
					Str("type", "RESP").
					Str("method", resp.Request.Method).
					Str("status", strconv.Itoa(resp.StatusCode)).
					Msg(resp.Request.URL.Redacted())
			},
		}
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func nopIfNil(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}
