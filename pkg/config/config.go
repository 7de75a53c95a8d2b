package config

import internalconfig "github.com/SmitUplenchwar2687/oscseq/internal/config"

// Config is the top-level configuration for oscseq.
type Config = internalconfig.Config

type (
	RecordConfig       = internalconfig.RecordConfig
	ReplayConfig       = internalconfig.ReplayConfig
	StorageConfig      = internalconfig.StorageConfig
	FileStorageConfig  = internalconfig.FileStorageConfig
	RedisStorageConfig = internalconfig.RedisStorageConfig
	LogConfig          = internalconfig.LogConfig
	MetricsConfig      = internalconfig.MetricsConfig
)

// Default returns a Config with sensible defaults.
func Default() Config {
	return internalconfig.Default()
}

// Load applies defaults, the optional file at path and OSCSEQ_* overrides.
func Load(path string) (Config, error) {
	return internalconfig.Load(path)
}

// LoadFile reads a JSON or YAML config file and merges it with defaults.
func LoadFile(path string) (Config, error) {
	return internalconfig.LoadFile(path)
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	return internalconfig.WriteExample(path)
}
