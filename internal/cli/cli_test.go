package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/kbukum/fetchkit/testutil/httpfixture"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeConfig writes a config file that silences logging.
func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fetchkit.yaml")
	data := "name: fetchkit-test\nlogging:\n  level: disabled\nhttp:\n  timeout: 5s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// runCLI executes the command tree and returns stdout and the exit code.
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", writeConfig(t), "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	if err != nil {
		t.Logf("command error: %v (stderr: %s)", err, errOut.String())
	}
	return out.String(), ExitCode(err)
}

func TestRequestCommand_Echo(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "request", fx.URL()+"/echo",
		"-q", "name=ada lovelace", "-H", "X-Trace: 1", "-H", "Accept-Encoding:", "-u", "user:secret")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}

	var echo httpfixture.Echo
	if err := json.Unmarshal([]byte(out), &echo); err != nil {
		t.Fatalf("decode echo: %v (%s)", err, out)
	}
	if echo.Query != "name=ada%20lovelace" {
		t.Errorf("expected encoded query, got %s", echo.Query)
	}
	if echo.Headers["X-Trace"] != "1" {
		t.Errorf("expected X-Trace header, got %v", echo.Headers)
	}
	if _, ok := echo.Headers["Accept-Encoding"]; ok {
		t.Errorf("expected Accept-Encoding to be suppressed, got %v", echo.Headers)
	}
	if echo.Headers["Authorization"] != "Basic dXNlcjpzZWNyZXQ=" {
		t.Errorf("expected basic auth, got %q", echo.Headers["Authorization"])
	}
}

func TestRequestCommand_PostJSON(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "request", "-X", "post", "--json", `{"a":1}`, fx.URL()+"/echo")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	var echo httpfixture.Echo
	if err := json.Unmarshal([]byte(out), &echo); err != nil {
		t.Fatalf("decode echo: %v", err)
	}
	if echo.Method != "POST" {
		t.Errorf("expected POST, got %s", echo.Method)
	}
	if echo.Body != `{"a":1}` {
		t.Errorf("expected JSON body, got %q", echo.Body)
	}
	if !strings.HasPrefix(echo.Headers["Content-Type"], "application/json") {
		t.Errorf("expected JSON content type, got %q", echo.Headers["Content-Type"])
	}
}

func TestRequestCommand_IncludeShowsRedirects(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "request", "-i", fx.URL()+"/redirect/2")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	if n := strings.Count(out, "HTTP 302 Found"); n != 2 {
		t.Errorf("expected 2 redirect hops, got %d in:\n%s", n, out)
	}
	if !strings.Contains(out, "HTTP 200 OK") {
		t.Errorf("expected final status, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "final") {
		t.Errorf("expected body last, got:\n%s", out)
	}
}

func TestRequestCommand_NoFollow(t *testing.T) {
	fx := httpfixture.Start(t)
	out, _ := runCLI(t, "request", "-i", "--no-follow", fx.URL()+"/redirect/2")
	if !strings.HasPrefix(out, "HTTP 302 Found") {
		t.Errorf("expected the redirect itself, got:\n%s", out)
	}
}

func TestRequestCommand_Stream(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "request", "--stream", fx.URL()+"/stream/3")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	if out != "line 0\nline 1\nline 2\n" {
		t.Errorf("unexpected stream output %q", out)
	}
}

func TestRequestCommand_Encoding(t *testing.T) {
	fx := httpfixture.Start(t)
	out, _ := runCLI(t, "request", "--text", fx.URL()+"/charset")
	if out != "café" {
		t.Errorf("expected decoded text, got %q", out)
	}
}

func TestRequestCommand_ExitCodes(t *testing.T) {
	fx := httpfixture.Start(t)

	if _, code := runCLI(t, "request", fx.URL()+"/status/500"); code != ExitSuccess {
		t.Errorf("expected success without --fail, got %d", code)
	}
	if _, code := runCLI(t, "request", "--fail", fx.URL()+"/status/500"); code != ExitHTTPError {
		t.Errorf("expected %d, got %d", ExitHTTPError, code)
	}
	if _, code := runCLI(t, "request", fx.URL()+"/loop"); code != ExitNetworkError {
		t.Errorf("expected %d for a redirect loop, got %d", ExitNetworkError, code)
	}
	if _, code := runCLI(t, "request", "ftp://example.com"); code != ExitRequestError {
		t.Errorf("expected %d for a bad scheme, got %d", ExitRequestError, code)
	}
	if _, code := runCLI(t, "request"); code != ExitUsageError {
		t.Errorf("expected %d without a url, got %d", ExitUsageError, code)
	}
	if _, code := runCLI(t, "request", "-H", "bogus", fx.URL()); code != ExitUsageError {
		t.Errorf("expected %d for a bad header, got %d", ExitUsageError, code)
	}
	if _, code := runCLI(t, "request", "--json", "{", fx.URL()); code != ExitUsageError {
		t.Errorf("expected %d for bad JSON, got %d", ExitUsageError, code)
	}
}

func TestRequestCommand_File(t *testing.T) {
	fx := httpfixture.Start(t)
	path := filepath.Join(t.TempDir(), "req.yaml")
	body := "method: put\nurl: " + fx.URL() + "/echo\nparams:\n  - {name: q, value: one}\ndata: hello\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, code := runCLI(t, "request", "-f", path, "-q", "extra=two")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	var echo httpfixture.Echo
	if err := json.Unmarshal([]byte(out), &echo); err != nil {
		t.Fatalf("decode echo: %v", err)
	}
	if echo.Method != "PUT" {
		t.Errorf("expected PUT from file, got %s", echo.Method)
	}
	if echo.Query != "q=one&extra=two" {
		t.Errorf("expected file params then flag params, got %s", echo.Query)
	}
	if echo.Body != "hello" {
		t.Errorf("expected file data, got %q", echo.Body)
	}
}

func TestEventsCommand(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "events", "--jsonl", fx.URL()+"/events")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", len(lines), out)
	}
	var first eventRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Event != "greeting" || first.Data != "hello" || first.ID != "1" {
		t.Errorf("unexpected first event %+v", first)
	}
}

func TestEventsCommand_Max(t *testing.T) {
	fx := httpfixture.Start(t)
	out, _ := runCLI(t, "events", "--max", "1", fx.URL()+"/events")
	if !strings.HasPrefix(out, "greeting #1\nhello\n") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "bye") {
		t.Errorf("expected to stop after one event, got %q", out)
	}
}

func TestBenchCommand(t *testing.T) {
	fx := httpfixture.Start(t)
	out, code := runCLI(t, "bench", "-n", "10", "-c", "3", fx.URL()+"/final")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	for _, want := range []string{"requests   10 in", "p50", "200  10", "received   50 bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if n := len(fx.Requests()); n != 10 {
		t.Errorf("expected 10 requests at the server, got %d", n)
	}
}

func TestBenchCommand_RequiresCount(t *testing.T) {
	if _, code := runCLI(t, "bench", "-n", "0", "http://example.test"); code != ExitUsageError {
		t.Errorf("expected %d, got %d", ExitUsageError, code)
	}
}

func TestVersionCommand(t *testing.T) {
	out, code := runCLI(t, "version")
	if code != ExitSuccess {
		t.Fatalf("expected success, got exit %d", code)
	}
	if !strings.HasPrefix(out, "fetchkit ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetchkit.yaml")
	if err := os.WriteFile(path, []byte("http:\n  timeout: -1s\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "request", "http://example.test"})
	if code := ExitCode(root.Execute()); code != ExitConfigError {
		t.Errorf("expected %d, got %d", ExitConfigError, code)
	}
}
