package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Rewiring mode values stored in the ledger.
const (
	RewiringAutomatic = "automatic"
	RewiringManual    = "manual"
)

// TaskRecord is one submitted quantum task in the local ledger. Status is the
// last status observed from the service, not a live value.
type TaskRecord struct {
	ARN             string
	DeviceARN       string
	Label           string
	Shots           int64
	RewiringMode    string // "automatic" or "manual"
	Status          string
	FailureReason   string
	OutputBucket    string
	OutputDirectory string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
