// Package config loads scribe configuration.
//
// Viper reads a YAML file found in the standard locations (./scribe.yml,
// ./config.yml, ./config/config.yml, the user config directory), godotenv
// loads an optional .env file, and SCRIBE_* environment variables override
// individual keys:
//
//	SCRIBE_BACKEND=cloud
//	SCRIBE_CLOUD_API_KEY=sk-...
//
// # Usage
//
//	settings, err := config.Load(config.WithConfigFile(path))
package config
