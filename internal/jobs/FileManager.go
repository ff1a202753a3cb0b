package jobs

import (
	"fmt"
	"os"
	"surveycore/internal/jobs/interfaces"
	"surveycore/internal/providers"
	"surveycore/internal/storage"

	json "github.com/goccy/go-json"
)

// FileManager writes the in-memory ledger to a compressed snapshot file and
// reads it back on startup. With a durable store there is nothing to do.
type FileManager struct {
	snapshotter storage.SnapshotterInterface
	compressor  interfaces.CompressorInterface
	logger      providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, snapshotter storage.SnapshotterInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor:  compressor,
		snapshotter: snapshotter,
		logger:      logger,
	}
}

func (f *FileManager) Enabled() bool {
	return f.snapshotter != nil
}

// SaveToFile atomically replaces fileName and returns the bytes written.
func (f *FileManager) SaveToFile(fileName string) ([]byte, error) {
	if !f.Enabled() {
		return nil, nil
	}
	jsonData, err := json.Marshal(f.snapshotter.Snapshot())
	if err != nil {
		return nil, err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return nil, err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}

	return data, os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the ledger from fileName. A missing file means a
// fresh start.
func (f *FileManager) LoadFromFile(fileName string) error {
	if !f.Enabled() {
		return nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Infof(providers.TypeApp, "No ledger snapshot at %s, starting empty", fileName)
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := f.snapshotter.Restore(&snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	f.logger.Infof(providers.TypeApp, "Ledger restored: %d campaigns, %d responses", len(snap.Campaigns), len(snap.Responses))
	return nil
}
