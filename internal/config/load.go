package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. OSCSEQ_RECORD_PORT.
const EnvPrefix = "OSCSEQ_"

// Load builds the effective config: defaults, then the file at path
// (skipped when path is empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields of cfg from OSCSEQ_* environment variables.
// Unset variables leave the field unchanged.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFile reads a config file and merges it with defaults. Files ending
// in .yaml or .yml are parsed as YAML, anything else as JSON.
// Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Use a raw intermediate struct to handle duration parsing.
	var raw rawConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := raw.merge(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// rawConfig is the file representation with string durations. Pointers
// distinguish an explicit false or zero from an absent field.
type rawConfig struct {
	Record struct {
		Host          string   `json:"host" yaml:"host"`
		Port          *int     `json:"port" yaml:"port"`
		Channels      []string `json:"channels" yaml:"channels"`
		FinishChannel string   `json:"finish_channel" yaml:"finish_channel"`
		Duration      string   `json:"duration" yaml:"duration"`
	} `json:"record" yaml:"record"`
	Replay struct {
		Host     string  `json:"host" yaml:"host"`
		Port     int     `json:"port" yaml:"port"`
		Quantum  string  `json:"quantum" yaml:"quantum"`
		Speed    float64 `json:"speed" yaml:"speed"`
		JoinArgs *bool   `json:"join_args" yaml:"join_args"`
	} `json:"replay" yaml:"replay"`
	Storage struct {
		Backend string `json:"backend" yaml:"backend"`
		File    struct {
			Dir      string `json:"dir" yaml:"dir"`
			Compress *bool  `json:"compress" yaml:"compress"`
		} `json:"file" yaml:"file"`
		Redis struct {
			Host         string   `json:"host" yaml:"host"`
			Port         int      `json:"port" yaml:"port"`
			Password     string   `json:"password" yaml:"password"`
			DB           int      `json:"db" yaml:"db"`
			Cluster      *bool    `json:"cluster" yaml:"cluster"`
			ClusterNodes []string `json:"cluster_nodes" yaml:"cluster_nodes"`
			PoolSize     int      `json:"pool_size" yaml:"pool_size"`
			MaxRetries   int      `json:"max_retries" yaml:"max_retries"`
			DialTimeout  string   `json:"dial_timeout" yaml:"dial_timeout"`
			TTL          string   `json:"ttl" yaml:"ttl"`
			KeyPrefix    string   `json:"key_prefix" yaml:"key_prefix"`
		} `json:"redis" yaml:"redis"`
	} `json:"storage" yaml:"storage"`
	Log struct {
		Level  string `json:"level" yaml:"level"`
		Format string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`
	Metrics struct {
		Addr string `json:"addr" yaml:"addr"`
	} `json:"metrics" yaml:"metrics"`
}

func (raw *rawConfig) merge(cfg *Config) error {
	rec := raw.Record
	if rec.Host != "" {
		cfg.Record.Host = rec.Host
	}
	if rec.Port != nil {
		cfg.Record.Port = *rec.Port
	}
	if len(rec.Channels) > 0 {
		cfg.Record.Channels = rec.Channels
	}
	if rec.FinishChannel != "" {
		cfg.Record.FinishChannel = rec.FinishChannel
	}
	if err := parseDuration("record.duration", rec.Duration, &cfg.Record.Duration); err != nil {
		return err
	}

	rep := raw.Replay
	if rep.Host != "" {
		cfg.Replay.Host = rep.Host
	}
	if rep.Port > 0 {
		cfg.Replay.Port = rep.Port
	}
	if err := parseDuration("replay.quantum", rep.Quantum, &cfg.Replay.Quantum); err != nil {
		return err
	}
	if rep.Speed > 0 {
		cfg.Replay.Speed = rep.Speed
	}
	if rep.JoinArgs != nil {
		cfg.Replay.JoinArgs = *rep.JoinArgs
	}

	st := raw.Storage
	if st.Backend != "" {
		cfg.Storage.Backend = st.Backend
	}
	if st.File.Dir != "" {
		cfg.Storage.File.Dir = st.File.Dir
	}
	if st.File.Compress != nil {
		cfg.Storage.File.Compress = *st.File.Compress
	}
	rd := st.Redis
	if rd.Host != "" {
		cfg.Storage.Redis.Host = rd.Host
	}
	if rd.Port > 0 {
		cfg.Storage.Redis.Port = rd.Port
	}
	if rd.Password != "" {
		cfg.Storage.Redis.Password = rd.Password
	}
	if rd.DB > 0 {
		cfg.Storage.Redis.DB = rd.DB
	}
	if rd.Cluster != nil {
		cfg.Storage.Redis.Cluster = *rd.Cluster
	}
	if len(rd.ClusterNodes) > 0 {
		cfg.Storage.Redis.ClusterNodes = rd.ClusterNodes
	}
	if rd.PoolSize > 0 {
		cfg.Storage.Redis.PoolSize = rd.PoolSize
	}
	if rd.MaxRetries > 0 {
		cfg.Storage.Redis.MaxRetries = rd.MaxRetries
	}
	if err := parseDuration("storage.redis.dial_timeout", rd.DialTimeout, &cfg.Storage.Redis.DialTimeout); err != nil {
		return err
	}
	if err := parseDuration("storage.redis.ttl", rd.TTL, &cfg.Storage.Redis.TTL); err != nil {
		return err
	}
	if rd.KeyPrefix != "" {
		cfg.Storage.Redis.KeyPrefix = rd.KeyPrefix
	}

	if raw.Log.Level != "" {
		cfg.Log.Level = raw.Log.Level
	}
	if raw.Log.Format != "" {
		cfg.Log.Format = raw.Log.Format
	}
	if raw.Metrics.Addr != "" {
		cfg.Metrics.Addr = raw.Metrics.Addr
	}
	return nil
}

func parseDuration(field, s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", field, err)
	}
	*dst = d
	return nil
}

// WriteExample writes an example config file to the given path, as YAML
// when the path ends in .yaml or .yml and JSON otherwise.
func WriteExample(path string) error {
	data, err := Example(isYAML(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Example renders the default config in file form.
func Example(asYAML bool) ([]byte, error) {
	ex := exampleFile(Default())
	if asYAML {
		return yaml.Marshal(ex)
	}
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// exampleFile is Config with durations spelled as strings.
type exampleFile Config

func (e exampleFile) fileForm() map[string]any {
	return map[string]any{
		"record": map[string]any{
			"host":           e.Record.Host,
			"port":           e.Record.Port,
			"channels":       e.Record.Channels,
			"finish_channel": e.Record.FinishChannel,
			"duration":       e.Record.Duration.String(),
		},
		"replay": map[string]any{
			"host":      e.Replay.Host,
			"port":      e.Replay.Port,
			"quantum":   e.Replay.Quantum.String(),
			"speed":     e.Replay.Speed,
			"join_args": e.Replay.JoinArgs,
		},
		"storage": map[string]any{
			"backend": e.Storage.Backend,
			"file": map[string]any{
				"dir":      e.Storage.File.Dir,
				"compress": e.Storage.File.Compress,
			},
			"redis": map[string]any{
				"host":         e.Storage.Redis.Host,
				"port":         e.Storage.Redis.Port,
				"db":           e.Storage.Redis.DB,
				"pool_size":    e.Storage.Redis.PoolSize,
				"max_retries":  e.Storage.Redis.MaxRetries,
				"dial_timeout": e.Storage.Redis.DialTimeout.String(),
				"ttl":          e.Storage.Redis.TTL.String(),
			},
		},
		"log": map[string]any{
			"level":  e.Log.Level,
			"format": e.Log.Format,
		},
		"metrics": map[string]any{
			"addr": e.Metrics.Addr,
		},
	}
}

func (e exampleFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fileForm())
}

func (e exampleFile) MarshalYAML() (interface{}, error) {
	return e.fileForm(), nil
}
