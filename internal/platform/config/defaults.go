package config

import "time"

// Default returns the configuration used when no file or overrides are present.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Profile: "default",
		},
		Session: SessionConfig{
			Store: StoreConfig{
				Type:    "sqlite",
				Expiry:  168 * time.Hour,
				Cleanup: 10 * time.Minute,
				SQLite: SQLiteConfig{
					DSN: "vibibay.db",
				},
				Redis: RedisStoreConfig{
					Prefix: "vibibay:session:",
				},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Web: WebConfig{
			Enabled:   true,
			Port:      8090,
			StaticDir: "./web",
		},
	}
}
