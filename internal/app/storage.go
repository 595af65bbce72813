package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/internal/config"
	"github.com/klokku/eventcal/internal/database"
	"github.com/klokku/eventcal/pkg/kvstore"
)

// OpenStorage builds the key/value backend selected by cfg.Storage.Type. The returned
// func releases it.
func OpenStorage(cfg config.Application) (kvstore.Store, func(), error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		log.Warn("Using in-memory storage, events will not survive a restart")
		return kvstore.NewMemoryStore(), func() {}, nil
	case config.StorageFile, "":
		log.Infof("Using file storage at %s", cfg.Storage.Path)
		return kvstore.NewFileStore(cfg.Storage.Path), func() {}, nil
	case config.StorageSqlite:
		db, err := database.OpenSqlite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewSQLStore(db), func() { db.Close() }, nil
	case config.StoragePostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, nil, err
		}
		pool, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using postgres storage at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		return kvstore.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
