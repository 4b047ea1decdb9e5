// Package storage provides the top-level StorageManager that coordinates
// the two storage areas: userdb (accounts + settings) and paperdb
// (ledgers, watchlists, analysis history).
package storage

import (
	"fmt"

	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/storage/paperdb"
	"trademind/internal/storage/userdb"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	user   *userdb.Store
	paper  *paperdb.Store
	logger *common.Logger
}

// NewManager opens both storage areas from config paths.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	userStore, err := userdb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}

	paperStore, err := paperdb.NewStore(logger, config.Storage.Paper.Path)
	if err != nil {
		userStore.Close()
		return nil, fmt.Errorf("failed to create paper store: %w", err)
	}

	logger.Info().
		Str("internal", config.Storage.Internal.Path).
		Str("paper", config.Storage.Paper.Path).
		Msg("Storage manager initialized")

	return &Manager{
		user:   userStore,
		paper:  paperStore,
		logger: logger,
	}, nil
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.user
}

func (m *Manager) PaperStore() interfaces.PaperStore {
	return m.paper
}

// Close closes both areas, reporting the first error.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.user.Close(); err != nil {
		firstErr = err
	}
	if err := m.paper.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ interfaces.StorageManager = (*Manager)(nil)
