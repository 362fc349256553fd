package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stickycols/pkg/cache"
	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/trace"
)

const plainScene = `
name = "plain"

[viewport]
width = 1000
height = 500

[[columns]]
name = "long"
width = 500
height = 1500

[[columns]]
name = "short"
width = 500
height = 300

[[script]]
by = 100
repeat = 3
`

// isolate points the cache and config directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readTrace(t *testing.T, path string) *trace.Trace {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	defer f.Close()
	tr, err := trace.ReadJSON(f)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	return tr
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitSimulateGraph(t *testing.T) {
	dir := isolate(t)
	scenePath := filepath.Join(dir, "blog.toml")

	if _, err := execute(t, "init", scenePath); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := execute(t, "init", scenePath); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second init error = %v, want already exists", err)
	}
	if _, err := execute(t, "init", "--force", scenePath); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	if _, err := execute(t, "simulate", scenePath); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	tracePath := filepath.Join(dir, "blog.trace.json")
	tr := readTrace(t, tracePath)
	if tr.Scene != "blog" {
		t.Errorf("trace scene = %q, want blog", tr.Scene)
	}
	if want := []string{"article", "sidebar"}; strings.Join(tr.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("trace columns = %v, want %v", tr.Columns, want)
	}
	if len(tr.Frames) < 2 {
		t.Errorf("trace has %d frames, want more than the setup frame", len(tr.Frames))
	}
	if tr.Version != "dev" {
		t.Errorf("trace version = %q, want dev", tr.Version)
	}

	graphOut := filepath.Join(dir, "modes.dot")
	if _, err := execute(t, "graph", tracePath, "-f", "dot", "-o", graphOut); err != nil {
		t.Fatalf("graph: %v", err)
	}
	data, err := os.ReadFile(graphOut)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("graph output should be DOT, got %q", string(data)[:min(len(data), 40)])
	}

	if _, err := execute(t, "graph", tracePath, "-f", "gif"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("graph -f gif error = %v, want UNSUPPORTED", err)
	}
}

func TestSimulateUsesCache(t *testing.T) {
	dir := isolate(t)
	scenePath := filepath.Join(dir, "plain.toml")
	writeFile(t, scenePath, plainScene)

	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	if _, err := execute(t, "simulate", scenePath, "-o", first); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if _, err := execute(t, "simulate", scenePath, "-o", second); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if a, b := readTrace(t, first), readTrace(t, second); a.ID != b.ID {
		t.Errorf("second run should reuse the cached trace, ids %s and %s", a.ID, b.ID)
	}

	fresh := filepath.Join(dir, "fresh.json")
	if _, err := execute(t, "simulate", scenePath, "--no-cache", "-o", fresh); err != nil {
		t.Fatalf("simulate --no-cache: %v", err)
	}
	if a, b := readTrace(t, first), readTrace(t, fresh); a.ID == b.ID {
		t.Error("--no-cache should play the scene again")
	}

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	cdir := strings.TrimSpace(out)
	if cdir != filepath.Join(dir, "cache", appName) {
		t.Errorf("cache path = %q", cdir)
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	fc, err := cache.NewFileCache(cdir)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := fc.Clear(); n != 0 {
		t.Errorf("cache clear left %d entries", n)
	}
}

func TestSimulateFlagsOverrideScene(t *testing.T) {
	dir := isolate(t)
	scenePath := filepath.Join(dir, "plain.toml")
	writeFile(t, scenePath, plainScene)
	out := filepath.Join(dir, "out.json")

	if _, err := execute(t, "simulate", scenePath, "--from-top", "64", "-o", out); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if tr := readTrace(t, out); tr.FromTop != 64 {
		t.Errorf("trace from_top = %g, want 64", tr.FromTop)
	}

	_, err := execute(t, "simulate", scenePath, "--selector", "[", "-o", out)
	if !errors.Is(err, errors.ErrCodeInvalidSelector) {
		t.Errorf("bad selector error = %v, want INVALID_SELECTOR", err)
	}
}

func TestConfigSuppliesSceneDefaults(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", appName, configFile), "from_top = 30\ncache_ttl = \"1h\"\n")
	scenePath := filepath.Join(dir, "plain.toml")
	writeFile(t, scenePath, plainScene)
	out := filepath.Join(dir, "out.json")

	if _, err := execute(t, "simulate", scenePath, "-o", out); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if tr := readTrace(t, out); tr.FromTop != 30 {
		t.Errorf("trace from_top = %g, want 30 from config", tr.FromTop)
	}

	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "cache", "path"); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func TestSimulateMissingScene(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "simulate", filepath.Join(dir, "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if got := ExitCode(err); got != ExitBadInput {
		t.Errorf("ExitCode = %d, want %d", got, ExitBadInput)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	for shell := range completionShells {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("%s completion should mention the command name", shell)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
