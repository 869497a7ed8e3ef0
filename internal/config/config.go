package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scorigami/scorigami/internal/ledger"
	"github.com/scorigami/scorigami/internal/matrix"
)

// Default values for the service configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultLogLevel          = "info"
	DefaultLedgerURL         = "https://www.pro-football-reference.com/boxscores/game-scores.htm"
	DefaultDetailURLTemplate = "https://www.pro-football-reference.com/boxscores/game_scores_find.cgi?pts_win=" +
		ledger.WinningToken + "&pts_lose=" + ledger.LosingToken
	DefaultFetchTimeout        = 30 * time.Second
	DefaultConnectivityTimeout = 5 * time.Second
	DefaultKeepalive           = 30 * time.Second
	DefaultAuthHeader          = "x-api-key"
)

// Config holds the configuration parsed from the `scorigami:` section of
// config.yaml.
type Config struct {
	Scorigami ServiceConfig `yaml:"scorigami"`
}

// ServiceConfig holds all service settings.
type ServiceConfig struct {
	// HTTPPort is the port the REST API, WebSocket stream and metrics listen on.
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Reloadable.
	LogLevel string `yaml:"log_level"`

	Ledger       LedgerConfig       `yaml:"ledger"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`

	// Saturation tunes the color mappings. Reloadable; a change rebuilds the board.
	Saturation SaturationConfig `yaml:"saturation"`

	Auth   AuthConfig   `yaml:"auth"`
	Stream StreamConfig `yaml:"stream"`
}

// LedgerConfig describes where the historical score table is fetched from.
type LedgerConfig struct {
	URL string `yaml:"url"`

	// DetailURLTemplate must contain both the WWWW and LLLL tokens.
	DetailURLTemplate string `yaml:"detail_url_template"`

	FetchTimeout       time.Duration `yaml:"fetch_timeout"`
	EarliestSeasonYear int           `yaml:"earliest_season_year"`
}

// ConnectivityConfig controls the reachability probe run before ingestion.
type ConnectivityConfig struct {
	// ProbeAddr is a host:port to dial. Empty means the ledger URL's host.
	ProbeAddr string        `yaml:"probe_addr"`
	Timeout   time.Duration `yaml:"timeout"`
}

// EffectiveProbeAddr returns ProbeAddr, or host:port derived from ledgerURL.
func (c ConnectivityConfig) EffectiveProbeAddr(ledgerURL string) string {
	if c.ProbeAddr != "" {
		return c.ProbeAddr
	}
	u, err := url.Parse(ledgerURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// SkewConfig is one skew pair of the saturation mapping.
type SkewConfig struct {
	Lower float64 `yaml:"skew_lower"`
	Upper float64 `yaml:"skew_upper"`
}

// SaturationConfig holds the frequency and recency skews.
type SaturationConfig struct {
	Frequency SkewConfig `yaml:"frequency"`
	Recency   SkewConfig `yaml:"recency"`
}

// Params converts the skews into builder parameters. Now is left nil so the
// builder keeps its clock.
func (s SaturationConfig) Params() matrix.Params {
	return matrix.Params{
		Frequency: matrix.Skew{Lower: s.Frequency.Lower, Upper: s.Frequency.Upper},
		Recency:   matrix.Skew{Lower: s.Recency.Lower, Upper: s.Recency.Upper},
	}
}

// AuthConfig controls client authentication on mutating REST routes.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// StreamConfig controls the WebSocket change feed.
type StreamConfig struct {
	// Keepalive is the interval at which the current summary is re-sent.
	Keepalive time.Duration `yaml:"keepalive"`
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to info.
func (s ServiceConfig) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config { return defaults() }

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Scorigami: ServiceConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
			Ledger: LedgerConfig{
				URL:                DefaultLedgerURL,
				DetailURLTemplate:  DefaultDetailURLTemplate,
				FetchTimeout:       DefaultFetchTimeout,
				EarliestSeasonYear: ledger.DefaultEarliestSeasonYear,
			},
			Connectivity: ConnectivityConfig{
				Timeout: DefaultConnectivityTimeout,
			},
			Saturation: SaturationConfig{
				Frequency: SkewConfig{
					Lower: matrix.DefaultFrequencySkew.Lower,
					Upper: matrix.DefaultFrequencySkew.Upper,
				},
				Recency: SkewConfig{
					Lower: matrix.DefaultRecencySkew.Lower,
					Upper: matrix.DefaultRecencySkew.Upper,
				},
			},
			Auth: AuthConfig{
				Mode:   "none",
				KeyEnv: "SCORIGAMI_API_KEY",
				Header: DefaultAuthHeader,
			},
			Stream: StreamConfig{
				Keepalive: DefaultKeepalive,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Scorigami
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("scorigami.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("scorigami.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}

	u, err := url.Parse(s.Ledger.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scorigami.ledger.url %q must be an absolute http(s) URL", s.Ledger.URL)
	}
	if !strings.Contains(s.Ledger.DetailURLTemplate, ledger.WinningToken) ||
		!strings.Contains(s.Ledger.DetailURLTemplate, ledger.LosingToken) {
		return fmt.Errorf("scorigami.ledger.detail_url_template must contain %s and %s",
			ledger.WinningToken, ledger.LosingToken)
	}
	if s.Ledger.FetchTimeout <= 0 {
		return fmt.Errorf("scorigami.ledger.fetch_timeout must be positive")
	}
	if s.Ledger.EarliestSeasonYear <= 0 {
		return fmt.Errorf("scorigami.ledger.earliest_season_year must be positive")
	}
	if s.Connectivity.Timeout <= 0 {
		return fmt.Errorf("scorigami.connectivity.timeout must be positive")
	}

	if err := validateSkew("frequency", s.Saturation.Frequency); err != nil {
		return err
	}
	if err := validateSkew("recency", s.Saturation.Recency); err != nil {
		return err
	}

	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("scorigami.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Auth.Mode == "apikey" && s.Auth.KeyEnv == "" {
		return fmt.Errorf("scorigami.auth.key_env is required when mode is apikey")
	}
	if s.Stream.Keepalive < 0 {
		return fmt.Errorf("scorigami.stream.keepalive must not be negative")
	}
	return nil
}

func validateSkew(name string, s SkewConfig) error {
	if s.Lower < 0 || s.Lower >= 1 {
		return fmt.Errorf("scorigami.saturation.%s.skew_lower %v is out of range [0, 1)", name, s.Lower)
	}
	if s.Upper <= 0 || s.Upper > 1 {
		return fmt.Errorf("scorigami.saturation.%s.skew_upper %v is out of range (0, 1]", name, s.Upper)
	}
	return nil
}
