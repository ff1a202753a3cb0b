package interfaces

import "context"

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// ArchiverInterface copies a persisted ledger image off the host.
type ArchiverInterface interface {
	Archive(ctx context.Context, name string, data []byte) error
}
