// Package config loads and validates the tama orchestrator configuration.
//
// # Architecture
//
// Values are layered with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Overrides (CLI flags)   │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TAMA_CONFIG_PATH, TAMA_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← tama.toml / tama.yaml / tama.json
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: file decoding (TOML, YAML, JSON) and environment variables
//   - layer: deep merge and dot-path helpers for map[string]any trees
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithFile("tama.toml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.ConfigPath)
//
// # Configuration Files
//
//	# tama.toml
//	configPath = "config"
//	customTaskPaths = ["tasks"]
//	basicAsMultiTask = ["lint"]
//
//	[taskMaps]
//	"deploy:prod" = "deployer:release"
//
// # Error Handling
//
//   - ErrInvalidConfigPath: configPath is missing or not a directory
//   - ErrValidationFailed: any other field is invalid
//   - ErrFileNotFound: an explicitly requested config file doesn't exist
//
// Both validation sentinels are reachable through *ValidationError.
package config
