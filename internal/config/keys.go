package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "aws.region", typ: kString, env: "BRAKETCTL_AWS_REGION",
		apply:   func(cfg *Config, v any) { cfg.AWS.Region = v.(string) },
		extract: func(cfg Config) any { return cfg.AWS.Region },
	},
	{
		key: "device.arn", typ: kString, env: "BRAKETCTL_DEVICE_ARN",
		apply:   func(cfg *Config, v any) { cfg.Device.ARN = v.(string) },
		extract: func(cfg Config) any { return cfg.Device.ARN },
	},
	{
		key: "output.s3_bucket", typ: kString, env: "BRAKETCTL_OUTPUT_S3_BUCKET",
		apply:   func(cfg *Config, v any) { cfg.Output.S3Bucket = v.(string) },
		extract: func(cfg Config) any { return cfg.Output.S3Bucket },
	},
	{
		key: "output.s3_prefix", typ: kString, env: "BRAKETCTL_OUTPUT_S3_PREFIX",
		apply:   func(cfg *Config, v any) { cfg.Output.S3Prefix = v.(string) },
		extract: func(cfg Config) any { return cfg.Output.S3Prefix },
	},
	{
		key: "task.shots", typ: kInt, env: "BRAKETCTL_TASK_SHOTS",
		apply:   func(cfg *Config, v any) { cfg.Task.Shots = v.(int) },
		extract: func(cfg Config) any { return cfg.Task.Shots },
	},
	{
		key: "task.poll_interval", typ: kString, env: "BRAKETCTL_TASK_POLL_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.Task.PollInterval = v.(string) },
		extract: func(cfg Config) any { return cfg.Task.PollInterval },
	},
	{
		key: "server.port", typ: kInt, env: "BRAKETCTL_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "BRAKETCTL_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "BRAKETCTL_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
