package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"hyperspectral/internal/config"
	"hyperspectral/internal/deps"
)

// CheckClowder verifies the data-management service is reachable and
// accepts the key.
func CheckClowder(ctx context.Context, baseURL, key string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: "Clowder", Detail: "missing url"}
	}
	return checkKeyedEndpoint(ctx, "Clowder", base+"/api/status", key, nil)
}

// CheckBETYdb verifies the trait endpoint is reachable and accepts the key.
func CheckBETYdb(ctx context.Context, endpoint, key string) Result {
	if strings.TrimSpace(endpoint) == "" {
		return Result{Name: "BETYdb", Detail: "missing url"}
	}
	return checkKeyedEndpoint(ctx, "BETYdb", strings.TrimSpace(endpoint), key, url.Values{"limit": {"1"}})
}

func checkKeyedEndpoint(ctx context.Context, name, endpoint, key string, extra url.Values) Result {
	if strings.TrimSpace(key) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	target, err := url.Parse(endpoint)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	query := target.Query()
	for k, values := range extra {
		for _, v := range values {
			query.Add(k, v)
		}
	}
	query.Set("key", strings.TrimSpace(key))
	target.RawQuery = query.Encode()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < http.StatusMultipleChoices:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the workflow shell and script. Both the extract
// and preflight commands use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{deps.WorkflowShell(cfg.Conversion.Shell)})
	workDir, _ := os.Getwd()
	return append(statuses, deps.CheckScript(cfg.Conversion.Script, workDir))
}
