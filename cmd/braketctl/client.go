package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/config"
	"github.com/waihoh/amazon-braket-examples/internal/storage"
)

// braketAPI is the client surface the commands use. Tests substitute a fake.
type braketAPI interface {
	GetDevice(ctx context.Context, arn string) (*braket.DeviceInfo, error)
	SearchDevices(ctx context.Context, qpuOnly bool) ([]braket.DeviceSummary, error)
	Submit(ctx context.Context, spec braket.SubmitSpec) (string, error)
	GetTask(ctx context.Context, arn string) (*braket.TaskInfo, error)
	Cancel(ctx context.Context, arn string) (string, error)
	FetchResult(ctx context.Context, info *braket.TaskInfo) (*braket.Result, error)
}

var newClient = func(ctx context.Context, cfg config.Config) (braketAPI, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return braket.New(awsCfg), nil
}

var openStore = func(cfg config.Config) (*storage.Store, error) {
	return storage.Open(cfg.Storage.DataDir)
}
