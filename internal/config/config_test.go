package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "scorigami: {}\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Scorigami
	if s.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", s.HTTPPort, DefaultHTTPPort)
	}
	if s.Ledger.URL != DefaultLedgerURL {
		t.Errorf("ledger.url: got %q", s.Ledger.URL)
	}
	if s.Ledger.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("ledger.fetch_timeout: got %v, want %v", s.Ledger.FetchTimeout, DefaultFetchTimeout)
	}
	if s.Ledger.EarliestSeasonYear != 1920 {
		t.Errorf("earliest_season_year: got %d, want 1920", s.Ledger.EarliestSeasonYear)
	}
	if s.Saturation.Frequency != (SkewConfig{Lower: 0.01, Upper: 0.55}) {
		t.Errorf("saturation.frequency: got %+v", s.Saturation.Frequency)
	}
	if s.Saturation.Recency != (SkewConfig{Lower: 0, Upper: 1}) {
		t.Errorf("saturation.recency: got %+v", s.Saturation.Recency)
	}
	if s.Auth.Mode != "none" {
		t.Errorf("auth.mode: got %q, want none", s.Auth.Mode)
	}
	if s.Stream.Keepalive != DefaultKeepalive {
		t.Errorf("stream.keepalive: got %v", s.Stream.Keepalive)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `scorigami:
  http_port: 9091
  log_level: debug
  ledger:
    url: http://scores.internal:8000/table.htm
    detail_url_template: http://scores.internal:8000/find?w=WWWW&l=LLLL
    fetch_timeout: 10s
    earliest_season_year: 1932
  connectivity:
    probe_addr: scores.internal:8000
    timeout: 2s
  saturation:
    frequency: { skew_lower: 0.05, skew_upper: 0.8 }
    recency: { skew_lower: 0.1, skew_upper: 0.9 }
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-score-key
  stream:
    keepalive: 1m
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Scorigami
	if s.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", s.HTTPPort)
	}
	if s.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel: got %v, want debug", s.SlogLevel())
	}
	if s.Ledger.FetchTimeout != 10*time.Second {
		t.Errorf("fetch_timeout: got %v, want 10s", s.Ledger.FetchTimeout)
	}
	if s.Ledger.EarliestSeasonYear != 1932 {
		t.Errorf("earliest_season_year: got %d, want 1932", s.Ledger.EarliestSeasonYear)
	}
	if s.Connectivity.Timeout != 2*time.Second {
		t.Errorf("connectivity.timeout: got %v, want 2s", s.Connectivity.Timeout)
	}
	p2 := s.Saturation.Params()
	if p2.Frequency.Lower != 0.05 || p2.Frequency.Upper != 0.8 {
		t.Errorf("frequency params: got %+v", p2.Frequency)
	}
	if p2.Recency.Lower != 0.1 || p2.Recency.Upper != 0.9 {
		t.Errorf("recency params: got %+v", p2.Recency)
	}
	if p2.Now != nil {
		t.Error("Params: Now should be left to the builder")
	}
	if s.Auth.EffectiveHeader() != "x-score-key" {
		t.Errorf("header: got %q, want x-score-key", s.Auth.EffectiveHeader())
	}
	if s.Stream.Keepalive != time.Minute {
		t.Errorf("keepalive: got %v, want 1m", s.Stream.Keepalive)
	}
}

func TestAuth_Key(t *testing.T) {
	t.Setenv("SCORIGAMI_TEST_KEY", "s3cret")
	a := AuthConfig{KeyEnv: "SCORIGAMI_TEST_KEY"}
	if a.Key() != "s3cret" {
		t.Errorf("Key: got %q, want s3cret", a.Key())
	}
	if (AuthConfig{}).Key() != "" {
		t.Error("Key with no env: want empty")
	}
	if (AuthConfig{}).EffectiveHeader() != "x-api-key" {
		t.Errorf("EffectiveHeader default: got %q", (AuthConfig{}).EffectiveHeader())
	}
}

func TestEffectiveProbeAddr(t *testing.T) {
	tests := []struct {
		probe, url, want string
	}{
		{"", "https://www.pro-football-reference.com/boxscores/game-scores.htm", "www.pro-football-reference.com:443"},
		{"", "http://scores.internal/t.htm", "scores.internal:80"},
		{"", "http://127.0.0.1:8123/t.htm", "127.0.0.1:8123"},
		{"dns.example:53", "https://x.test/", "dns.example:53"},
		{"", "::not a url", ""},
	}
	for _, tc := range tests {
		got := ConnectivityConfig{ProbeAddr: tc.probe}.EffectiveProbeAddr(tc.url)
		if got != tc.want {
			t.Errorf("EffectiveProbeAddr(%q, %q): got %q, want %q", tc.probe, tc.url, got, tc.want)
		}
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"port", "scorigami:\n  http_port: 70000\n", "http_port"},
		{"log level", "scorigami:\n  log_level: loud\n", "log_level"},
		{"relative url", "scorigami:\n  ledger:\n    url: /table.htm\n", "ledger.url"},
		{"template tokens", "scorigami:\n  ledger:\n    detail_url_template: http://x/?w=WWWW\n", "detail_url_template"},
		{"fetch timeout", "scorigami:\n  ledger:\n    fetch_timeout: 0s\n", "fetch_timeout"},
		{"skew lower", "scorigami:\n  saturation:\n    frequency: { skew_lower: 1.2, skew_upper: 0.5 }\n", "skew_lower"},
		{"skew upper", "scorigami:\n  saturation:\n    recency: { skew_lower: 0, skew_upper: 0 }\n", "skew_upper"},
		{"auth mode", "scorigami:\n  auth:\n    mode: mtls\n", "auth.mode"},
		{"auth key env", "scorigami:\n  auth:\n    mode: apikey\n    key_env: \"\"\n", "key_env"},
		{"yaml", "scorigami: [\n", "parse yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("Load: expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestWatch_AppliesLiveSettings(t *testing.T) {
	p := writeConfig(t, "scorigami:\n  log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Live, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, p, func(l Live) { got <- l }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	writes := []string{
		// invalid: skipped
		"scorigami:\n  log_level: loud\n",
		// restart-only change: not applied
		"scorigami:\n  log_level: info\n  http_port: 9090\n",
		// live change
		"scorigami:\n  log_level: debug\n  http_port: 9090\n" +
			"  saturation:\n    frequency: { skew_lower: 0.2, skew_upper: 0.6 }\n",
	}
	for _, w := range writes {
		if err := os.WriteFile(p, []byte(w), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	select {
	case l := <-got:
		if l.LogLevel != slog.LevelDebug {
			t.Errorf("LogLevel: got %v, want debug", l.LogLevel)
		}
		if l.Saturation.Frequency != (SkewConfig{Lower: 0.2, Upper: 0.6}) {
			t.Errorf("frequency skew: got %+v", l.Saturation.Frequency)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
	// Only the live change is delivered; duplicate events for the same
	// write compare equal to the new baseline.
	select {
	case l := <-got:
		t.Errorf("unexpected extra apply: %+v", l)
	default:
	}
}

func TestWatch_InvalidBaseline(t *testing.T) {
	p := writeConfig(t, "scorigami:\n  log_level: loud\n")
	err := Watch(context.Background(), p, func(Live) { t.Error("apply called") })
	if err == nil || !strings.Contains(err.Error(), "baseline") {
		t.Fatalf("Watch: got %v, want baseline error", err)
	}
}

func TestRestartOnly(t *testing.T) {
	a := Default().Scorigami
	b := a
	if got := restartOnly(a, b); len(got) != 0 {
		t.Errorf("identical configs: got %v", got)
	}

	b.HTTPPort = 9090
	b.Auth.Mode = "apikey"
	b.Saturation.Recency.Upper = 0.5
	b.LogLevel = "debug"
	got := restartOnly(a, b)
	if strings.Join(got, ",") != "http_port,auth" {
		t.Errorf("restartOnly: got %v, want [http_port auth]", got)
	}
}
