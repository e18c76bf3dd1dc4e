package localstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

// FileStore persists the cart as a single JSON file. It is the local-storage
// analogue used by the CLI client.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger.With().Str("component", "localstore").Logger()}
}

func (s *FileStore) Save(_ context.Context, cart domain.Cart) error {
	raw, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}

func (s *FileStore) Load(_ context.Context) (*domain.Cart, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		s.logger.Warn().Err(err).Str("path", s.path).Msg("read local cart")
		return nil, nil
	}
	cart, err := decodeCart(raw)
	if err != nil {
		// Unparseable state is treated as absent, not fatal.
		s.logger.Warn().Err(err).Str("path", s.path).Msg("discarding corrupt local cart")
		return nil, nil
	}
	return cart, nil
}
