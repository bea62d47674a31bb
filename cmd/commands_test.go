package cmd

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ccs/config"

	"github.com/tidwall/gjson"
)

func modelsOf(t *testing.T, raw, provider string) []string {
	t.Helper()
	var list []string
	gjson.Get(raw, `Providers.#(name=="`+provider+`").models`).ForEach(func(_, v gjson.Result) bool {
		list = append(list, v.String())
		return true
	})
	return list
}

func assertPreserved(t *testing.T, raw string) {
	t.Helper()
	if !gjson.Get(raw, "LOG").Bool() || gjson.Get(raw, "APIKEY").String() != "secret-gateway-key" {
		t.Errorf("unmanaged fields changed:\n%s", raw)
	}
	if gjson.Get(raw, `Providers.#(name=="openrouter").transformer.use.0`).String() != "openrouter" {
		t.Errorf("provider transformer was dropped:\n%s", raw)
	}
}

func TestLs(t *testing.T) {
	t.Run("lists providers with masked keys", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "ls")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		for _, want := range []string{"openrouter", "deepseek-reasoner", "google/gemini-2.5-pro", "sk-o****cdef", "****"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "sk-or-v1-1234567890abcdef") {
			t.Error("API key printed in full")
		}
	})

	t.Run("empty config", func(t *testing.T) {
		env := newTestEnv(t, `{"Router": {}}`)
		out, err := env.run("", "ls")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		if !strings.Contains(out, "No providers or models found in config") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("missing config", func(t *testing.T) {
		env := newTestEnv(t, "")
		_, err := env.run("", "ls")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		env := newTestEnv(t, `{"Providers": `)
		_, err := env.run("", "ls")
		if !errors.Is(err, config.ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})
}

func TestShow(t *testing.T) {
	env := newTestEnv(t, testConfig)
	out, err := env.run("", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"Current Router Configuration", "deepseek,deepseek-chat", "webSearch", "Not set"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	env = newTestEnv(t, `{"Providers": []}`)
	out, err = env.run("", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "No router configuration found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestChange(t *testing.T) {
	t.Run("bare model resolves to its only provider", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "change", "background", "google/gemini-2.5-pro", "--no-restart")
		if err != nil {
			t.Fatalf("change error = %v", err)
		}
		if !strings.Contains(out, "Updated background to: openrouter,google/gemini-2.5-pro") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "without restarting") {
			t.Errorf("--no-restart notice missing:\n%s", out)
		}

		raw := env.read()
		if got := gjson.Get(raw, "Router.background").String(); got != "openrouter,google/gemini-2.5-pro" {
			t.Errorf("Router.background = %q", got)
		}
		assertPreserved(t, raw)
	})

	t.Run("explicit pair", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "change", "longContext", "mirror,deepseek-chat", "--no-restart")
		if err != nil {
			t.Fatalf("change error = %v", err)
		}
		if !strings.Contains(out, "ccs set longContextThreshold") {
			t.Errorf("longContext tip missing:\n%s", out)
		}
		if got := gjson.Get(env.read(), "Router.longContext").String(); got != "mirror,deepseek-chat" {
			t.Errorf("Router.longContext = %q", got)
		}
	})

	t.Run("ambiguous model", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		before := env.read()
		out, err := env.run("", "change", "default", "deepseek-chat", "--no-restart")

		var ambiguous *config.AmbiguousModelError
		if !errors.As(err, &ambiguous) {
			t.Fatalf("error = %v, want AmbiguousModelError", err)
		}
		if !reflect.DeepEqual(ambiguous.Providers, []string{"deepseek", "mirror"}) {
			t.Errorf("Providers = %v", ambiguous.Providers)
		}
		if !strings.Contains(out, "Available models:") {
			t.Errorf("available models not listed:\n%s", out)
		}
		if env.read() != before {
			t.Error("config changed after a failed change")
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "change", "think", "gpt-9", "--no-restart")
		if !errors.Is(err, config.ErrUnknownModel) {
			t.Fatalf("error = %v, want ErrUnknownModel", err)
		}
		if !strings.Contains(out, "Available models:") {
			t.Errorf("available models not listed:\n%s", out)
		}
	})

	t.Run("invalid router type", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "change", "fast", "deepseek,deepseek-chat")
		if !errors.Is(err, config.ErrInvalidRouterType) {
			t.Errorf("error = %v, want ErrInvalidRouterType", err)
		}
	})

	t.Run("no value without a terminal", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "change", "think")
		if !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSetLongContextThreshold(t *testing.T) {
	t.Run("requires longContext", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "set", "longContextThreshold", "60000", "--no-restart")
		if !errors.Is(err, config.ErrMissingPrerequisite) {
			t.Errorf("error = %v, want ErrMissingPrerequisite", err)
		}
	})

	t.Run("not an integer", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "set", "longContextThreshold", "lots", "--no-restart")
		if !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("stored as a number", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		if _, err := env.run("", "change", "longContext", "openrouter,google/gemini-2.5-pro", "--no-restart"); err != nil {
			t.Fatalf("change error = %v", err)
		}
		out, err := env.run("", "set", "longContextThreshold", "60000", "--no-restart")
		if err != nil {
			t.Fatalf("set error = %v", err)
		}
		if !strings.Contains(out, "Updated longContextThreshold to: 60000") {
			t.Errorf("unexpected output:\n%s", out)
		}
		v := gjson.Get(env.read(), "Router.longContextThreshold")
		if v.Type != gjson.Number || v.Int() != 60000 {
			t.Errorf("longContextThreshold = %s", v.Raw)
		}
	})
}

func TestAddProvider(t *testing.T) {
	t.Run("probe selects v1", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/models" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		}))
		defer srv.Close()

		env := newTestEnv(t, testConfig)
		out, err := env.run("", "add", "provider", "--name", "local", "--base-url", srv.URL, "-m", "qwen3,llama3", "--no-restart")
		if err != nil {
			t.Fatalf("add provider error = %v", err)
		}
		if !strings.Contains(out, "base URL adjusted to: "+srv.URL+"/v1") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "ccs update") {
			t.Errorf("update tip missing:\n%s", out)
		}

		raw := env.read()
		if got := gjson.Get(raw, `Providers.#(name=="local").api_base_url`).String(); got != srv.URL+"/v1" {
			t.Errorf("api_base_url = %q", got)
		}
		if got := modelsOf(t, raw, "local"); !reflect.DeepEqual(got, []string{"qwen3", "llama3"}) {
			t.Errorf("models = %v", got)
		}
		assertPreserved(t, raw)
	})

	t.Run("no probe keeps the URL", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "add", "provider", "--name", "local", "--base-url", "http://127.0.0.1:1", "--no-probe", "--no-restart")
		if err != nil {
			t.Fatalf("add provider error = %v", err)
		}
		if got := gjson.Get(env.read(), `Providers.#(name=="local").api_base_url`).String(); got != "http://127.0.0.1:1" {
			t.Errorf("api_base_url = %q", got)
		}
	})

	t.Run("preset", func(t *testing.T) {
		env := newTestEnv(t, `{"Providers": []}`)
		_, err := env.run("", "add", "provider", "--name", "groq", "--api-key", "gsk-123456789", "--no-restart")
		if err != nil {
			t.Fatalf("add provider error = %v", err)
		}
		raw := env.read()
		if got := gjson.Get(raw, `Providers.0.api_base_url`).String(); got != "https://api.groq.com/openai/v1/chat/completions" {
			t.Errorf("api_base_url = %q", got)
		}
		if got := gjson.Get(raw, `Providers.0.models`); !got.IsArray() {
			t.Errorf("models should be an empty array, got %s", got.Raw)
		}
	})

	t.Run("preset without key", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "add", "provider", "--name", "openai", "--no-restart")
		if !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("unknown name without base URL", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "add", "provider", "--name", "acme", "--no-restart")
		if !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "add", "provider", "--name", "deepseek", "--base-url", "https://other.example.com", "--no-probe")
		if !errors.Is(err, config.ErrDuplicateProvider) {
			t.Errorf("error = %v, want ErrDuplicateProvider", err)
		}
	})

	t.Run("duplicate base URL", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "add", "provider", "--name", "ds2", "--base-url", "https://api.deepseek.com/chat/completions/", "--no-probe")
		if !errors.Is(err, config.ErrDuplicateProvider) {
			t.Errorf("error = %v, want ErrDuplicateProvider", err)
		}
	})
}

func TestAddModel(t *testing.T) {
	env := newTestEnv(t, testConfig)
	out, err := env.run("", "add", "model", "deepseek", "deepseek-coder", "--no-restart")
	if err != nil {
		t.Fatalf("add model error = %v", err)
	}
	if !strings.Contains(out, "Added model 'deepseek-coder' to provider 'deepseek'") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := modelsOf(t, env.read(), "deepseek"); !reflect.DeepEqual(got, []string{"deepseek-chat", "deepseek-reasoner", "deepseek-coder"}) {
		t.Errorf("models = %v", got)
	}

	if _, err := env.run("", "add", "model", "deepseek", "deepseek-coder"); !errors.Is(err, config.ErrDuplicateModel) {
		t.Errorf("duplicate error = %v, want ErrDuplicateModel", err)
	}
	if _, err := env.run("", "add", "model", "nope", "x"); !errors.Is(err, config.ErrUnknownProvider) {
		t.Errorf("unknown provider error = %v, want ErrUnknownProvider", err)
	}
}

func TestDeleteProvider(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		before := env.read()
		out, err := env.run("n\n", "delete", "provider", "openrouter")
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		if !strings.Contains(out, "ARE YOU SURE?! [y/N]") || !strings.Contains(out, "Deletion cancelled") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if env.read() != before {
			t.Error("config changed after cancelling")
		}
	})

	t.Run("confirmed with warning for routers", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("y\n", "delete", "provider", "deepseek", "--no-restart")
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		if !strings.Contains(out, "Deleted provider: deepseek") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "default, think") {
			t.Errorf("referencing routers not reported:\n%s", out)
		}
		raw := env.read()
		if gjson.Get(raw, `Providers.#(name=="deepseek")`).Exists() {
			t.Error("provider still present")
		}
		assertPreserved(t, raw)
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "delete", "provider", "nope", "-y")
		if !errors.Is(err, config.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteModel(t *testing.T) {
	env := newTestEnv(t, testConfig)
	if _, err := env.run("", "change", "longContext", "mirror,deepseek-chat", "--no-restart"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run("", "set", "longContextThreshold", "32000", "--no-restart"); err != nil {
		t.Fatal(err)
	}

	out, err := env.run("", "delete", "model", "deepseek-chat", "--yes", "--no-restart")
	if err != nil {
		t.Fatalf("delete model error = %v", err)
	}
	if !strings.Contains(out, "Deleted model 'deepseek-chat' from: deepseek, mirror") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Also removed longContextThreshold") {
		t.Errorf("threshold removal not reported:\n%s", out)
	}

	raw := env.read()
	if got := modelsOf(t, raw, "mirror"); len(got) != 0 {
		t.Errorf("mirror models = %v", got)
	}
	if gjson.Get(raw, "Router.longContextThreshold").Exists() {
		t.Error("longContextThreshold should be removed")
	}

	if _, err := env.run("", "delete", "model", "deepseek-chat", "-y"); !errors.Is(err, config.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRouter(t *testing.T) {
	t.Run("default is protected", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		_, err := env.run("", "delete", "router", "default", "-y")
		if !errors.Is(err, config.ErrCannotDeleteDefault) {
			t.Errorf("error = %v, want ErrCannotDeleteDefault", err)
		}
	})

	t.Run("unset router is a notice", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		before := env.read()
		out, err := env.run("", "delete", "router", "webSearch", "-y")
		if err != nil {
			t.Fatalf("delete router error = %v", err)
		}
		if !strings.Contains(out, "Router 'webSearch' is not set") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if env.read() != before {
			t.Error("config changed for an unset router")
		}
	})

	t.Run("longContext takes the threshold along", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		if _, err := env.run("", "change", "longContext", "openrouter,google/gemini-2.5-pro", "--no-restart"); err != nil {
			t.Fatal(err)
		}
		if _, err := env.run("", "set", "longContextThreshold", "100000", "--no-restart"); err != nil {
			t.Fatal(err)
		}

		out, err := env.run("y\n", "delete", "router", "longContext", "--no-restart")
		if err != nil {
			t.Fatalf("delete router error = %v", err)
		}
		if !strings.Contains(out, "Also removed longContextThreshold") {
			t.Errorf("unexpected output:\n%s", out)
		}
		raw := env.read()
		if gjson.Get(raw, "Router.longContext").Exists() || gjson.Get(raw, "Router.longContextThreshold").Exists() {
			t.Errorf("longContext entries left behind:\n%s", raw)
		}
		assertPreserved(t, raw)
	})
}

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-local" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"alpha"},{"id":"gamma"}]}`))
	}))
	defer srv.Close()

	content := `{
  "LOG": true,
  "Providers": [
    {"name": "local", "api_base_url": "` + srv.URL + `/v1/chat/completions", "api_key": "sk-local", "models": ["alpha", "beta", "old"]}
  ],
  "Router": {"default": "local,alpha", "think": "local,beta"}
}`

	t.Run("merges fetched models", func(t *testing.T) {
		env := newTestEnv(t, content)
		out, err := env.run("", "update", "--no-restart")
		if err != nil {
			t.Fatalf("update error = %v", err)
		}
		if got := modelsOf(t, env.read(), "local"); !reflect.DeepEqual(got, []string{"alpha", "beta", "gamma"}) {
			t.Errorf("models = %v, want [alpha beta gamma]", got)
		}
		for _, want := range []string{"Fetching models from local", "1 added, 1 removed", "+ gamma", "- old"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}

		out, err = env.run("", "update", "--no-restart")
		if err != nil {
			t.Fatalf("second update error = %v", err)
		}
		if !strings.Contains(out, "All model lists are up to date") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("unreachable provider keeps its models", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		env := newTestEnv(t, `{"Providers":[{"name":"gone","api_base_url":"`+deadURL+`","models":["m1"]}]}`)
		before := env.read()
		out, err := env.run("", "update", "--no-restart")
		if err != nil {
			t.Fatalf("update error = %v", err)
		}
		if !strings.Contains(out, "No models fetched from gone. Keeping existing models.") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if env.read() != before {
			t.Error("config rewritten although nothing changed")
		}
	})

	t.Run("unknown provider filter", func(t *testing.T) {
		env := newTestEnv(t, content)
		_, err := env.run("", "update", "--provider", "nope")
		if !errors.Is(err, config.ErrUnknownProvider) {
			t.Errorf("error = %v, want ErrUnknownProvider", err)
		}
	})
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t, testConfig)

	if _, err := env.run("", "restore", "--no-restart"); !errors.Is(err, config.ErrNotFound) {
		t.Errorf("restore without backups error = %v, want ErrNotFound", err)
	}

	if _, err := env.run("", "change", "think", "openrouter,anthropic/claude-sonnet-4", "--no-restart"); err != nil {
		t.Fatal(err)
	}
	out, err := env.run("", "restore", "--no-restart")
	if err != nil {
		t.Fatalf("restore error = %v", err)
	}
	if !strings.Contains(out, "Restored") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := gjson.Get(env.read(), "Router.think").String(); got != "deepseek,deepseek-reasoner" {
		t.Errorf("Router.think = %q after restore", got)
	}
}

func TestRestartNotification(t *testing.T) {
	t.Run("missing ccr is a warning", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "change", "think", "deepseek,deepseek-chat")
		if err != nil {
			t.Fatalf("change error = %v", err)
		}
		if !strings.Contains(out, "'ccs-test-no-such-ccr' command not found") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if got := gjson.Get(env.read(), "Router.think").String(); got != "deepseek,deepseek-chat" {
			t.Errorf("write should stand, Router.think = %q", got)
		}
	})

	t.Run("runs the configured command", func(t *testing.T) {
		bin, err := exec.LookPath("true")
		if err != nil {
			t.Skip("true not available")
		}
		env := newTestEnv(t, testConfig)
		t.Setenv("CCS_CCR_BIN", bin)

		out, err := env.run("", "change", "think", "deepseek,deepseek-chat")
		if err != nil {
			t.Fatalf("change error = %v", err)
		}
		if !strings.Contains(out, "CCR service notified ("+bin+" stop)") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("dead PID skips the command", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		pidFile := filepath.Join(env.dir, "ccr.pid")
		if err := os.WriteFile(pidFile, []byte("999999999"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CCS_PID_FILE", pidFile)

		out, err := env.run("", "change", "think", "deepseek,deepseek-chat")
		if err != nil {
			t.Fatalf("change error = %v", err)
		}
		if !strings.Contains(out, "CCR service is not running") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}

func TestUnknownSubcommand(t *testing.T) {
	tests := [][]string{
		{"set", "longcontextthreshold", "1000"},
		{"set", "bogus", "1"},
		{"add", "bogus"},
		{"delete", "bogus", "x"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			env := newTestEnv(t, testConfig)
			before := env.read()
			_, err := env.run("", args...)
			if !errors.Is(err, config.ErrInvalidValue) {
				t.Errorf("error = %v, want ErrInvalidValue", err)
			}
			if err != nil && !strings.Contains(err.Error(), args[1]) {
				t.Errorf("error should name the subcommand: %v", err)
			}
			if env.read() != before {
				t.Error("config changed")
			}
		})
	}

	t.Run("bare group shows help", func(t *testing.T) {
		env := newTestEnv(t, testConfig)
		out, err := env.run("", "add")
		if err != nil {
			t.Fatalf("add error = %v", err)
		}
		if !strings.Contains(out, "provider") || !strings.Contains(out, "model") {
			t.Errorf("help should list subcommands:\n%s", out)
		}
	})
}
