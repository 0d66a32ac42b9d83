package config

import (
	"time"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Web     WebConfig     `yaml:"web"`
}

// APIConfig describes the remote VPN provisioning service endpoint.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Profile string `yaml:"profile"`
}

// SessionConfig selects and tunes the credential session store.
type SessionConfig struct {
	Store StoreConfig `yaml:"store"`
}

type StoreConfig struct {
	Type    string           `yaml:"type"`
	Expiry  time.Duration    `yaml:"expiry"`
	Cleanup time.Duration    `yaml:"cleanup"`
	Redis   RedisStoreConfig `yaml:"redis,omitempty"`
	SQLite  SQLiteConfig     `yaml:"sqlite,omitempty"`
	Memory  MemoryConfig     `yaml:"memory,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type SQLiteConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type MemoryConfig struct {
	Cleanup time.Duration `yaml:"cleanup"`
}

type LogConfig struct {
	Level  string `yaml:"log_level"`
	Dir    string `yaml:"log_dir"`
	File   string `yaml:"log_file"`
	Format string `yaml:"log_format"`
}

// WebConfig controls the local HTTP facade serving the browser frontend.
type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}
