package preflight

import (
	"context"
	"strings"

	"hyperspectral/internal/config"
)

// ServiceStatus evaluates both remote services from config for status
// displays. A disabled service passes with a "Disabled" detail.
func ServiceStatus(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return []Result{{Name: "Clowder", Detail: "Unknown"}, {Name: "BETYdb", Detail: "Unknown"}}
	}
	return []Result{
		serviceFromConfig(ctx, "Clowder", cfg.Clowder.Enabled, cfg.Clowder.URL, cfg.Clowder.Key, CheckClowder),
		serviceFromConfig(ctx, "BETYdb", cfg.BETYdb.Enabled, cfg.BETYdb.URL, cfg.BETYdb.Key, CheckBETYdb),
	}
}

func serviceFromConfig(ctx context.Context, name string, enabled bool, url, key string, check func(context.Context, string, string) Result) Result {
	if !enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(url) == "" {
		return Result{Name: name, Detail: "Missing URL"}
	}
	if strings.TrimSpace(key) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return check(ctx, url, key)
}
