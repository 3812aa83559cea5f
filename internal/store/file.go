package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"PowerPrice/internal/model"
)

// FileStore keeps rates in a small JSON document on disk.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewFileStore keeps rates in a JSON file at filePath, created on first save.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

func (f *FileStore) read() (map[string]model.ConversionRate, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.ConversionRate{}, nil
		}
		return nil, err
	}
	state := map[string]model.ConversionRate{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.filePath, err)
	}
	return state, nil
}

func (f *FileStore) LoadRate(_ context.Context, pair string) (*model.ConversionRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.read()
	if err != nil {
		return nil, err
	}
	rate, ok := state[pair]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (f *FileStore) SaveRate(_ context.Context, pair string, rate model.ConversionRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.read()
	if err != nil {
		return err
	}
	state[pair] = rate
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.filePath, data, 0644)
}

func (f *FileStore) Close() error { return nil }
