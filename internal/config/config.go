// Package config loads .ably.toml, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"ably/internal/pass"
	"ably/internal/services"
	"ably/internal/validate"
)

// FileName is the settings file looked up from the checked path upwards.
const FileName = ".ably.toml"

// ErrNotFound is returned by Discover when no settings file exists.
var ErrNotFound = errors.New("no " + FileName + " found")

// Duration decodes TOML strings like "30s" or "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	// Path of the file the values came from, empty for defaults.
	Path string `toml:"-"`
	// Unknown lists keys present in the file that no field consumed.
	Unknown []string `toml:"-"`

	Check      CheckConfig      `toml:"check"`
	Validators ValidatorsConfig `toml:"validators"`
	Services   ServicesConfig   `toml:"services"`
	Cache      CacheConfig      `toml:"cache"`
	Log        LogConfig        `toml:"log"`
}

type CheckConfig struct {
	MaxProblems int `toml:"max_problems" validate:"gte=0"`
	Jobs        int `toml:"jobs" validate:"gte=0"`
}

type ValidatorsConfig struct {
	WHATWG        bool     `toml:"whatwg"`
	WHATWGCommand []string `toml:"whatwg_command" validate:"omitempty,dive,required"`
	W3C           bool     `toml:"w3c"`
	W3CURL        string   `toml:"w3c_url" validate:"omitempty,url"`
	Timeout       Duration `toml:"timeout"`
}

type ServicesConfig struct {
	Enabled         bool     `toml:"enabled"`
	CaptionURL      string   `toml:"caption_url" validate:"omitempty,url"`
	CaptionTokenEnv string   `toml:"caption_token_env"`
	SchemeURL       string   `toml:"scheme_url" validate:"omitempty,url"`
	Timeout         Duration `toml:"timeout"`
	LogRequests     bool     `toml:"log_requests"`
}

type CacheConfig struct {
	Backend  string   `toml:"backend" validate:"oneof=memory redis disk none"`
	RedisURL string   `toml:"redis_url" validate:"required_if=Backend redis"`
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	MaxSize  int      `toml:"max_size" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `toml:"format" validate:"oneof=text json"`
	// File receives a copy of the log in addition to stderr.
	File string `toml:"file"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Check: CheckConfig{
			MaxProblems: pass.DefaultMaxProblems,
		},
		Validators: ValidatorsConfig{
			WHATWG:        true,
			WHATWGCommand: append([]string(nil), validate.DefaultHTMLValidateCommand...),
			W3C:           true,
			W3CURL:        validate.DefaultNuURL,
			Timeout:       Duration{30 * time.Second},
		},
		Services: ServicesConfig{
			Enabled:         true,
			CaptionURL:      services.DefaultCaptionURL,
			CaptionTokenEnv: services.DefaultCaptionTokenEnv,
			SchemeURL:       services.DefaultSchemeURL,
			Timeout:         Duration{services.DefaultTimeout},
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     Duration{24 * time.Hour},
			MaxSize: 4096,
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Load decodes path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	for _, key := range meta.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}
	sort.Strings(cfg.Unknown)

	// явно заданный пустой список отключает валидатор
	if meta.IsDefined("validators", "whatwg_command") && len(cfg.Validators.WHATWGCommand) == 0 {
		cfg.Validators.WHATWG = false
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover walks up from startDir and loads the first settings file found.
// Without one it returns Default and ErrNotFound.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), ErrNotFound
	}
	return Load(path)
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s is not a valid URL: %q", field, fe.Value())
	case "required", "required_if":
		return field + " is required"
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
