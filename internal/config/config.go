// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CloudConfig holds point-cloud loading and display settings.
type CloudConfig struct {
	// File is the point-cloud file opened at startup. Empty means the user
	// picks one through the file dialog.
	File string `yaml:"file"`

	// PointSize is the base size of rendered points, in file units.
	PointSize float64 `yaml:"point_size"`

	// MaxPoints limits how many points are loaded (0 = all points).
	MaxPoints uint64 `yaml:"max_points"`

	// BatchSize is the producer-to-consumer transfer unit.
	BatchSize int `yaml:"batch_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Cloud: CloudConfig{
			PointSize: 0.1,
			MaxPoints: 0,
			BatchSize: 500_000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
