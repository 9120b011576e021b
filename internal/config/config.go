// Package config loads braketctl configuration from a JSON file backend with
// environment overrides (BRAKETCTL_*). AWS credentials themselves come from
// the standard SDK credential chain and are never stored here.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	AWS     AWSConfig
	Device  DeviceConfig
	Output  OutputConfig
	Task    TaskConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

type AWSConfig struct {
	Region string
}

type DeviceConfig struct {
	ARN string
}

// OutputConfig names the S3 location task results are written to. The bucket
// must exist and be writable by the Braket service role.
type OutputConfig struct {
	S3Bucket string
	S3Prefix string
}

type TaskConfig struct {
	Shots        int
	PollInterval string
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		AWS: AWSConfig{
			Region: "us-west-1",
		},
		Device: DeviceConfig{
			ARN: "arn:aws:braket:us-west-1::device/qpu/rigetti/Aspen-M-3",
		},
		Output: OutputConfig{
			S3Prefix: "tasks",
		},
		Task: TaskConfig{
			Shots:        1000,
			PollInterval: "5s",
		},
		Server: ServerConfig{
			Port: 4020,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/braketctl/config.json, then applies BRAKETCTL_* environment
// overrides. A missing file yields pure defaults.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if _, err := time.ParseDuration(cfg.Task.PollInterval); err != nil {
		return Config{}, fmt.Errorf("invalid task.poll_interval %q: %w", cfg.Task.PollInterval, err)
	}
	if cfg.Task.Shots <= 0 {
		return Config{}, fmt.Errorf("task.shots must be positive, got %d", cfg.Task.Shots)
	}

	return cfg, nil
}

// PollInterval returns the parsed poll interval. Load validates the value, so
// a Config obtained from Load never fails here.
func (c Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Task.PollInterval)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
