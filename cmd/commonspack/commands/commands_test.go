package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/logging"
	"github.com/systmms/commonspack/tests/fakes"
)

const testConfig = `
Info:
  Scheme: main-dev
  Version: "3.1.0"
  BundleVersion: "7"
Api:
  scheme: "https://"
  host:
    main-dev: dev.example.com
    main-qa: qa.example.com
  basePath: /bff
  timeout: 30
App:
  stubs: true
FeatureToggle:
  main-dev:
    mainApp:
      newTransfers: true
      banner: summer
    cuotasModule:
      installments: false
`

func setupConfig(t *testing.T, doc string) (*config.Config, *fakes.FakeKeyring) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Configurations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	kr := fakes.NewFakeKeyring()
	return &config.Config{
		Path:    path,
		Service: "commonspack-test",
		Logger:  logging.Discard(),
		Keyring: kr,
	}, kr
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scheme string
		args   []string
		want   string
	}{
		{"plain value", "", []string{"get", "Api", "basePath"}, "/bff\n"},
		{"scheme overlay", "", []string{"get", "Api", "host"}, "dev.example.com\n"},
		{"scheme override", "main-qa", []string{"get", "Api", "host"}, "qa.example.com\n"},
		{"number", "", []string{"get", "Api", "timeout", "--type", "number"}, "30\n"},
		{"bool", "", []string{"get", "App", "stubs", "--type", "bool"}, "true\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, _ := setupConfig(t, testConfig)
			cfg.Scheme = tt.scheme

			out, err := execute(t, NewConfigCommand(cfg), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConfigGetErrors(t *testing.T) {
	t.Parallel()

	cfg, _ := setupConfig(t, testConfig)
	_, err := execute(t, NewConfigCommand(cfg), "get", "Api", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Api/missing")

	cfg, _ = setupConfig(t, testConfig)
	cfg.Scheme = "main-prod"
	_, err = execute(t, NewConfigCommand(cfg), "get", "Api", "host")
	require.Error(t, err)

	cfg, _ = setupConfig(t, testConfig)
	_, err = execute(t, NewConfigCommand(cfg), "get", "Api", "host", "--type", "date")
	require.Error(t, err)

	cfg, _ = setupConfig(t, testConfig)
	cfg.Path = filepath.Join(t.TempDir(), "missing.plist")
	_, err = execute(t, NewConfigCommand(cfg), "get", "Api", "host")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTokenLifecycle(t *testing.T) {
	t.Parallel()

	cfg, kr := setupConfig(t, testConfig)

	_, err := execute(t, NewTokenCommand(cfg), "set", "tok-xyz")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", kr.Secrets["commonspack-test"][config.TokenKey])

	out, err := execute(t, NewTokenCommand(cfg), "show")
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED] (7 chars)\n", out)
	assert.NotContains(t, out, "tok-xyz")

	out, err = execute(t, NewTokenCommand(cfg), "show", "--reveal")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz\n", out)

	_, err = execute(t, NewTokenCommand(cfg), "remove")
	require.NoError(t, err)

	_, err = execute(t, NewTokenCommand(cfg), "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No token stored")

	_, err = execute(t, NewTokenCommand(cfg), "remove")
	assert.NoError(t, err)
}

func TestLogoutKeepsOtherEntries(t *testing.T) {
	t.Parallel()

	cfg, kr := setupConfig(t, testConfig)
	kr.SetSecret("commonspack-test", config.TokenKey, "tok")
	kr.SetSecret("commonspack-test", config.DeviceIDKey, "device-1")

	_, err := execute(t, NewLogoutCommand(cfg))
	require.NoError(t, err)

	assert.NotContains(t, kr.Secrets["commonspack-test"], config.TokenKey)
	assert.Equal(t, "device-1", kr.Secrets["commonspack-test"][config.DeviceIDKey])
}

func TestFlagsGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "bool flag", args: []string{"get", "newTransfers"}, want: "true\n"},
		{name: "string flag", args: []string{"get", "banner", "--type", "string"}, want: "summer\n"},
		{name: "other module", args: []string{"get", "installments", "--module", "cuotasModule", "--type", "bool"}, want: "false\n"},
		{name: "type mismatch falls back", args: []string{"get", "banner", "--type", "bool"}, want: "false\n"},
		{name: "missing", args: []string{"get", "nope"}, wantErr: true},
		{name: "wrong module", args: []string{"get", "newTransfers", "--module", "bankUnited"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, _ := setupConfig(t, testConfig)
			out, err := execute(t, NewFlagsCommand(cfg), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRequestCommand(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, path, auth, channel, tracker, contentType string
		body                                              map[string]interface{}
	}
	got := make(chan seen, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{
			method:      r.Method,
			path:        r.URL.Path,
			auth:        r.Header.Get("Authorization"),
			channel:     r.Header.Get("Channel"),
			tracker:     r.Header.Get("X-Domain-Tracker"),
			contentType: r.Header.Get("Content-Type"),
		}
		_ = json.NewDecoder(r.Body).Decode(&s.body)
		got <- s

		if r.URL.Path == "/v1/fail" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"title":"Error","body":"Monto invalido","code":17}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	doc := "Api:\n  scheme: \"http://\"\n  host: \"" + u.Host + "\"\n  basePath: /v1\nApp:\n  CHANNEL_ID: \"915\"\n"

	t.Run("json post with adapters", func(t *testing.T) {
		cfg, kr := setupConfig(t, doc)
		kr.SetSecret("commonspack-test", config.TokenKey, "tok-1")

		out, err := execute(t, NewRequestCommand(cfg),
			"post", "/transfers", "--data", "amount=10", "--json", "--adapter", "domain=cards")
		require.NoError(t, err)
		assert.Equal(t, "HTTP 200\n{\"ok\":true}\n", out)

		s := <-got
		assert.Equal(t, http.MethodPost, s.method)
		assert.Equal(t, "/v1/transfers", s.path)
		assert.Equal(t, "Bearer tok-1", s.auth)
		assert.Equal(t, "915", s.channel)
		assert.Equal(t, "cards", s.tracker)
		assert.Equal(t, "application/json", s.contentType)
		assert.Equal(t, "10", s.body["amount"])
	})

	t.Run("no auth", func(t *testing.T) {
		cfg, kr := setupConfig(t, doc)
		kr.SetSecret("commonspack-test", config.TokenKey, "tok-1")

		_, err := execute(t, NewRequestCommand(cfg), "GET", "/rates", "--no-auth")
		require.NoError(t, err)
		s := <-got
		assert.Empty(t, s.auth)
		assert.Equal(t, "910", s.channel)
	})

	t.Run("backend error prints body", func(t *testing.T) {
		cfg, _ := setupConfig(t, doc)

		out, err := execute(t, NewRequestCommand(cfg), "POST", "/fail")
		<-got
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP 422\n"))
		assert.Contains(t, out, "Monto invalido")
		assert.Contains(t, err.Error(), "Monto invalido")
	})

	t.Run("metrics printed after the body", func(t *testing.T) {
		cfg, _ := setupConfig(t, doc)

		out, err := execute(t, NewRequestCommand(cfg), "GET", "/rates", "--metrics")
		<-got
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP 200\n{\"ok\":true}\n"))
		assert.Contains(t, out, `commonspack_requests_total{method="GET",outcome="success"}`)
	})

	t.Run("bad input", func(t *testing.T) {
		cfg, _ := setupConfig(t, doc)
		_, err := execute(t, NewRequestCommand(cfg), "GET", "/x", "--data", "novalue")
		require.Error(t, err)

		cfg, _ = setupConfig(t, doc)
		_, err = execute(t, NewRequestCommand(cfg), "GET", "/x", "--adapter", "teleport")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid adapter")
	})
}

func TestDoctor(t *testing.T) {
	t.Parallel()

	t.Run("healthy without token", func(t *testing.T) {
		t.Parallel()
		cfg, _ := setupConfig(t, testConfig)
		out, err := execute(t, NewDoctorCommand(cfg))
		require.NoError(t, err)
		assert.Contains(t, out, "CHECK")
		assert.Contains(t, out, "https://dev.example.com/bff")
		assert.Contains(t, out, "3 feature flags loaded")
		assert.Contains(t, out, "no session token")
		assert.Contains(t, out, "Summary: 5/5 checks passed")
	})

	t.Run("keyring unavailable", func(t *testing.T) {
		t.Parallel()
		cfg, kr := setupConfig(t, testConfig)
		kr.Available = false
		out, err := execute(t, NewDoctorCommand(cfg))
		require.Error(t, err)
		assert.Contains(t, out, "keyring")
		assert.Contains(t, out, "✗ error")
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()
		cfg, kr := setupConfig(t, testConfig)
		kr.SetSecret("commonspack-test", config.TokenKey, "tok")
		cfg.Path = filepath.Join(t.TempDir(), "nope.yaml")
		out, err := execute(t, NewDoctorCommand(cfg))
		require.Error(t, err)
		assert.Contains(t, out, "session token stored")
	})
}
