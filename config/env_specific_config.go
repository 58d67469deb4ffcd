package config

import (
	"os"
	"path/filepath"
)

// configFileForEnv locates an optional YAML overlay for the environment.
// CONFIG_FILE wins when set; otherwise config/config.<env>.yaml (or
// /app/config when CONTAINER=true) is used if it exists.
func configFileForEnv(env Environment) (string, bool) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path, true
	}

	configDir := "config"
	if os.Getenv("CONTAINER") == "true" {
		configDir = "/app/config"
	}

	var filename string
	switch env {
	case EnvDevelopment:
		filename = "config.dev.yaml"
	case EnvProduction:
		filename = "config.prod.yaml"
	default:
		return "", false
	}

	path := filepath.Join(configDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
