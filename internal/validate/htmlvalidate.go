package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ably/internal/exec"
)

// DefaultHTMLValidateCommand runs html-validate through npx, reading the
// document from stdin.
var DefaultHTMLValidateCommand = []string{"npx", "--yes", "html-validate", "--stdin", "--formatter", "json"}

// ErrValidatorUnavailable is returned when the validator binary is missing.
var ErrValidatorUnavailable = errors.New("validator not available")

// HTMLValidate runs the html-validate CLI.
type HTMLValidate struct {
	command []string
	dir     string
	logger  *zerolog.Logger
}

var _ WHATWGValidator = (*HTMLValidate)(nil)

// NewHTMLValidate creates a client; an empty command selects
// DefaultHTMLValidateCommand.
func NewHTMLValidate(logger *zerolog.Logger, command []string, dir string) *HTMLValidate {
	if len(command) == 0 {
		command = DefaultHTMLValidateCommand
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &HTMLValidate{command: command, dir: dir, logger: logger}
}

type htmlValidateResult struct {
	FilePath string          `json:"filePath"`
	Messages []WHATWGMessage `json:"messages"`
}

func (v *HTMLValidate) Validate(ctx context.Context, text string) ([]WHATWGMessage, error) {
	res, err := exec.Run(ctx, exec.Command{
		Name:  v.command[0],
		Args:  v.command[1:],
		Dir:   v.dir,
		Stdin: []byte(text),
	})
	v.logger.Debug().Int("exit", res.ExitCode).Dur("took", res.Duration).Msg("html-validate finished")
	switch {
	case res.ExitCode == exec.ExitNotFound:
		return nil, fmt.Errorf("%s: %w", v.command[0], ErrValidatorUnavailable)
	case res.ExitCode == exec.ExitTimeout:
		return nil, fmt.Errorf("html-validate: %w", context.DeadlineExceeded)
	case err != nil && res.ExitCode != 1:
		// exit status 1 only means the document has findings
		return nil, fmt.Errorf("html-validate: %w: %s", err, strings.TrimSpace(res.Stderr))
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		if err != nil {
			return nil, fmt.Errorf("html-validate: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return nil, nil
	}
	return ParseHTMLValidate([]byte(out))
}

// ParseHTMLValidate decodes the json formatter output into a flat message list.
func ParseHTMLValidate(data []byte) ([]WHATWGMessage, error) {
	var results []htmlValidateResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode html-validate output: %w", err)
	}
	var msgs []WHATWGMessage
	for _, r := range results {
		msgs = append(msgs, r.Messages...)
	}
	return msgs, nil
}
