// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Najam-Usman/uiuc-course-planner/internal/httputil"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const parsedJSON = `{"meta": {"program": "Statistics"}, "sections": []}`

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	mu            sync.Mutex
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether a silent run succeeds
	runFunc       func(c command, stdout, stderr io.Writer) error
	calls         []command
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, c command, stdout, stderr io.Writer) error {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()

	if stdout == io.Discard {
		key := c.name + " " + strings.Join(c.args, " ")
		if m.runnableCmds[key] {
			return nil
		}
		return errors.New("command failed: " + key)
	}
	if m.runFunc != nil {
		return m.runFunc(c, stdout, stderr)
	}
	return nil
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	return path
}

func TestPythonParser_Interpreter(t *testing.T) {
	tests := []struct {
		name     string
		python   string
		runnable map[string]bool
		want     string
		wantErr  bool
	}{
		{
			name:     "configured interpreter wins",
			python:   "/custom/python",
			runnable: map[string]bool{"/custom/python -V": true, "python3 -V": true},
			want:     "/custom/python",
		},
		{
			name:     "falls through to venv",
			python:   "/custom/python",
			runnable: map[string]bool{"/opt/venv/bin/python -V": true, "python3 -V": true},
			want:     "/opt/venv/bin/python",
		},
		{
			name:     "bare python last",
			runnable: map[string]bool{"python -V": true},
			want:     "python",
		},
		{
			name:    "none work",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PYTHON", "")
			ex := &mockExecutor{runnableCmds: tt.runnable}
			p := newPythonParser(types.ParserConfig{Python: tt.python}, ex, nil)

			got, err := p.Interpreter(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no working Python interpreter")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPythonParser_EnvInterpreter(t *testing.T) {
	t.Setenv("PYTHON", "/env/python")
	ex := &mockExecutor{runnableCmds: map[string]bool{"/env/python -V": true, "python3 -V": true}}
	p := newPythonParser(types.ParserConfig{}, ex, nil)

	got, err := p.Interpreter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/env/python", got)
}

func TestPythonParser_Parse(t *testing.T) {
	t.Setenv("PYTHON", "")
	pdf := writePDF(t)
	parserDir := t.TempDir()

	ex := &mockExecutor{
		runnableCmds: map[string]bool{"python3 -V": true},
		runFunc: func(c command, stdout, _ io.Writer) error {
			_, err := io.WriteString(stdout, "\n"+parsedJSON+"\n")
			return err
		},
	}
	p := newPythonParser(types.ParserConfig{ParserDir: parserDir}, ex, nil)

	out, err := p.Parse(context.Background(), pdf)
	require.NoError(t, err)
	assert.JSONEq(t, parsedJSON, string(out))

	last := ex.calls[len(ex.calls)-1]
	assert.Equal(t, "python3", last.name)
	require.Len(t, last.args, 3)
	assert.Equal(t, "-c", last.args[0])
	assert.Contains(t, last.args[1], "from audit_parser.parser import parse")
	assert.Equal(t, pdf, last.args[2])
	assert.Equal(t, parserDir, last.dir)
	assert.Contains(t, last.env, "PYTHONPATH="+parserDir)
}

func TestPythonParser_ParseErrors(t *testing.T) {
	t.Setenv("PYTHON", "")
	pdf := writePDF(t)

	tests := []struct {
		name    string
		pdf     string
		run     func(c command, stdout, stderr io.Writer) error
		wantErr string
	}{
		{
			name:    "missing pdf",
			pdf:     filepath.Join(t.TempDir(), "missing.pdf"),
			wantErr: "audit PDF",
		},
		{
			name: "stderr surfaced",
			pdf:  pdf,
			run: func(_ command, _, stderr io.Writer) error {
				io.WriteString(stderr, "Traceback: ModuleNotFoundError\n")
				return errors.New("exit status 1")
			},
			wantErr: "ModuleNotFoundError",
		},
		{
			name:    "empty output",
			pdf:     pdf,
			run:     func(command, io.Writer, io.Writer) error { return nil },
			wantErr: "empty output",
		},
		{
			name: "invalid json",
			pdf:  pdf,
			run: func(_ command, stdout, _ io.Writer) error {
				_, err := io.WriteString(stdout, "not json")
				return err
			},
			wantErr: "invalid JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &mockExecutor{
				runnableCmds: map[string]bool{"python3 -V": true},
				runFunc:      tt.run,
			}
			p := newPythonParser(types.ParserConfig{ParserDir: t.TempDir()}, ex, nil)
			_, err := p.Parse(context.Background(), tt.pdf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewContainerParser(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  string
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true, "docker image inspect img": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true, "podman image exists img": true},
			},
			wantName: "podman",
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true, "podman image exists img": true},
			},
			wantName: "podman",
		},
		{
			name: "image missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantErr: "image img not found in docker",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: "no container runtime available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newContainerParser(context.Background(), "img", tt.exec, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Runtime())
		})
	}
}

func TestContainerParser_Parse(t *testing.T) {
	pdf := writePDF(t)
	var gotStdin string
	ex := &mockExecutor{
		availableBins: map[string]bool{"docker": true},
		runnableCmds:  map[string]bool{"docker info": true, "docker image inspect img": true},
		runFunc: func(c command, stdout, _ io.Writer) error {
			b, err := io.ReadAll(c.stdin)
			if err != nil {
				return err
			}
			gotStdin = string(b)
			_, err = io.WriteString(stdout, parsedJSON)
			return err
		},
	}
	p, err := newContainerParser(context.Background(), "img", ex, nil)
	require.NoError(t, err)

	out, err := p.Parse(context.Background(), pdf)
	require.NoError(t, err)
	assert.JSONEq(t, parsedJSON, string(out))
	assert.Equal(t, "%PDF-1.4 fake", gotStdin)

	last := ex.calls[len(ex.calls)-1]
	assert.Equal(t, []string{"run", "--rm", "-i", "img"}, last.args)
}

func TestContainerParser_ParseFailure(t *testing.T) {
	pdf := writePDF(t)
	ex := &mockExecutor{
		availableBins: map[string]bool{"docker": true},
		runnableCmds:  map[string]bool{"docker info": true, "docker image inspect img": true},
		runFunc: func(_ command, _, stderr io.Writer) error {
			io.WriteString(stderr, "pdf is encrypted")
			return errors.New("exit status 2")
		},
	}
	p, err := newContainerParser(context.Background(), "img", ex, nil)
	require.NoError(t, err)

	_, err = p.Parse(context.Background(), pdf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf is encrypted")
}

func TestRemoteParser_Parse(t *testing.T) {
	pdf := writePDF(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/audits/parse" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error": %q}`, err.Error())
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "audit.pdf" || string(b) != "%PDF-1.4 fake" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "planner-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, parsedJSON)
	}))
	defer ts.Close()

	cfg := types.ParserConfig{BaseURL: ts.URL + "/", HTTPConfig: types.HTTPConfig{UserAgent: "planner-test"}}
	p, err := NewRemoteParser(ts.Client(), cfg, "tok", nil)
	require.NoError(t, err)

	out, err := p.Parse(context.Background(), pdf)
	require.NoError(t, err)
	assert.JSONEq(t, parsedJSON, string(out))
}

func TestRemoteParser_RetriesRateLimit(t *testing.T) {
	pdf := writePDF(t)
	var mu sync.Mutex
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, parsedJSON)
	}))
	defer ts.Close()

	p, err := NewRemoteParser(ts.Client(), types.ParserConfig{BaseURL: ts.URL, MaxRetries: 2}, "", nil)
	require.NoError(t, err)

	out, err := p.Parse(context.Background(), pdf)
	require.NoError(t, err)
	assert.JSONEq(t, parsedJSON, string(out))
}

func TestRemoteParser_ErrorStatus(t *testing.T) {
	pdf := writePDF(t)
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"json error field", http.StatusUnprocessableEntity, `{"error": "not a degree audit"}`, "returned 422: not a degree audit"},
		{"plain body", http.StatusBadGateway, "upstream down", "returned 502: upstream down"},
		{"empty body", http.StatusInternalServerError, "", "returned 500: no response body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			p, err := NewRemoteParser(ts.Client(), types.ParserConfig{BaseURL: ts.URL}, "", nil)
			require.NoError(t, err)

			_, err = p.Parse(context.Background(), pdf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), types.ParserConfig{Backend: "carrier-pigeon"}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported parser backend")

	_, err = New(context.Background(), types.ParserConfig{Backend: types.ParserHTTP}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")

	p, err := New(context.Background(), types.ParserConfig{Backend: types.ParserHTTP, BaseURL: "http://localhost:1"}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &RemoteParser{}, p)

	p, err = New(context.Background(), types.ParserConfig{}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &PythonParser{}, p)
}
