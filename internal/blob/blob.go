// Package blob is the entry point to the report archive's object storage.
// Packages outside internal/blob depend on Store and never import the infra
// drivers directly.
package blob

import (
	"context"
	"fmt"

	"reliefcore/internal/blob/core"
	fsblob "reliefcore/internal/infra/blob/fs"
	memblob "reliefcore/internal/infra/blob/memory"
	s3blob "reliefcore/internal/infra/blob/s3"
)

type (
	// Store is the object storage contract.
	Store = core.Store
	// Driver names a backend.
	Driver = core.Driver
	// Info describes a stored object.
	Info = core.Info
	// PutOptions carries optional upload attributes.
	PutOptions = core.PutOptions
	// S3Config configures the S3 driver.
	S3Config = s3blob.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrNotFound = core.ErrNotFound
	ErrExists   = core.ErrExists
)

// Options selects and configures a driver.
type Options struct {
	Driver Driver   `yaml:"driver" validate:"omitempty,oneof=fs s3 memory"`
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// Open returns the Store named by opts.Driver, defaulting to the filesystem.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fsblob.New(opts.FSRoot)
	case DriverS3:
		return s3blob.New(ctx, opts.S3)
	case DriverMemory:
		return memblob.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory() Store { return memblob.New() }
