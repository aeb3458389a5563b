//go:build integration

// Package integration provides integration tests for the mpcatalog CLI using testscript.
package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/mpcatalog/mpcatalog/internal/cmd"
)

// TestMain registers the CLI as a testscript command.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"mpcatalog": cmd.Main,
	}))
}

// TestScripts runs all testscript files in testdata/scripts.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata/scripts",
		Setup: setupTestEnv,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"requests": cmdRequests,
		},
		Condition: evalCondition,
	})
}

// catalogServer serves the files under $WORK/catalog as the catalog
// repository. The seed path redirects to the repository like the public
// catalog does.
type catalogServer struct {
	srv      *httptest.Server
	requests atomic.Int64
}

func newCatalogServer(root string) *catalogServer {
	cs := &catalogServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/CatalogRepo", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/repo/", http.StatusFound)
	})
	mux.Handle("/repo/", http.StripPrefix("/repo/", http.FileServer(http.Dir(root))))

	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	return cs
}

// setupTestEnv isolates HOME and points the CLI at a fake catalog server.
func setupTestEnv(env *testscript.Env) error {
	testHome := filepath.Join(env.WorkDir, "home")
	configDir := filepath.Join(testHome, ".config", "mpcatalog")
	dataDir := filepath.Join(testHome, ".local", "share", "mpcatalog")

	for _, dir := range []string{configDir, dataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	env.Setenv("HOME", testHome)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(testHome, ".config"))
	env.Setenv("XDG_DATA_HOME", filepath.Join(testHome, ".local", "share"))

	cs := newCatalogServer(filepath.Join(env.WorkDir, "catalog"))
	env.Defer(cs.srv.Close)
	env.Values["catalog"] = cs

	env.Setenv("CATALOG_URL", cs.srv.URL)
	env.Setenv("MPCATALOG_CATALOG_SEED_URL", cs.srv.URL+"/CatalogRepo")

	return nil
}

// evalCondition evaluates custom conditions for testscript.
func evalCondition(cond string) (bool, error) {
	switch cond {
	case "linux":
		return runtime.GOOS == "linux", nil
	case "darwin":
		return runtime.GOOS == "darwin", nil
	default:
		return false, fmt.Errorf("unknown condition: %s", cond)
	}
}

// cmdRequests asserts the number of requests the catalog server has seen.
func cmdRequests(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 1 {
		ts.Fatalf("usage: requests <count>")
	}

	cs, ok := ts.Value("catalog").(*catalogServer)
	if !ok {
		ts.Fatalf("catalog server not running")
	}

	var want int64
	if _, err := fmt.Sscanf(args[0], "%d", &want); err != nil {
		ts.Fatalf("invalid request count: %s", args[0])
	}

	got := cs.requests.Load()
	if (got == want) == neg {
		ts.Fatalf("catalog server saw %d requests, want %s%d", got, map[bool]string{true: "not ", false: ""}[neg], want)
	}
}
