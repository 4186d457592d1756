// Package storage elige el adaptador de persistencia según STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Recursos-api/pkg/config"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

// Store repositorios del adaptador elegido y la función que libera sus conexiones.
type Store struct {
	Driver   string
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Close    func(context.Context) error
}

// Open conecta el adaptador configurado. En postgres aplica antes las migraciones
// si DB_RUN_MIGRATIONS está activo.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Store.Driver {
	case config.StoreMemory:
		s := memory.NewStore()
		return &Store{
			Driver:   config.StoreMemory,
			Users:    memory.NewUserRepository(s),
			Projects: memory.NewProjectRepository(s),
			Close:    func(context.Context) error { return nil },
		}, nil

	case config.StorePostgres:
		if err := postgres.RunMigrations(cfg.DB, log); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		db := postgres.NewDB(pool, cfg.Store.QueryTimeout)
		return &Store{
			Driver:   config.StorePostgres,
			Users:    postgres.NewUserRepository(db),
			Projects: postgres.NewProjectRepository(db),
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StoreMongo:
		db, err := mongodb.Connect(ctx, cfg.Mongo, cfg.Store.QueryTimeout)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   config.StoreMongo,
			Users:    mongodb.NewUserRepository(db),
			Projects: mongodb.NewProjectRepository(db),
			Close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Store.Driver)
	}
}
