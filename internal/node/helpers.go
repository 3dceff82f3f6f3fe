package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/golfmellow/config"
)

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// resolveGenesis loads the configured genesis file, or the built-in genesis
// of the configured network.
func resolveGenesis(cfg *config.Config) (*config.Genesis, error) {
	if cfg.Genesis == "" {
		return config.GenesisFor(cfg.Network), nil
	}
	g, err := config.LoadGenesis(expandHome(cfg.Genesis))
	if err != nil {
		return nil, fmt.Errorf("load genesis %s: %w", cfg.Genesis, err)
	}
	return g, nil
}
