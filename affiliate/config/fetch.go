package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	getter "github.com/hashicorp/go-getter"
)

// FetchRemoteConfig downloads a hub config file from a remote source into
// dst and returns the local path. src takes any go-getter URL, so operators
// can point the hub at a git repository, an HTTP server, or an S3 bucket
// holding the deployment's config.
//
// Usage:
//   - FetchRemoteConfig("github.com/myorg/hub-configs//osmosis/hub_config.toml", "/etc/hub")
func FetchRemoteConfig(src, dst string) (string, error) {
	deadline := time.Now().Add(120 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	local := filepath.Join(dst, "hub_config.toml")
	opts := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  local,
		Mode: getter.ClientModeFile,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
			&getter.FileDetector{},
		},
	}
	if err := opts.Get(); err != nil {
		return "", fmt.Errorf("failed to download config: %w", err)
	}
	return local, nil
}
