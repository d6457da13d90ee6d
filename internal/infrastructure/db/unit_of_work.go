package db

import (
	"context"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// unitOfWork wraps gorm's transaction support so services can commit an ack
// and its side effects atomically. Repositories handed to the callback are
// bound to the transaction; the pooled connection is released on every exit
// path by gorm itself.
type unitOfWork struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitOfWork(db *gorm.DB, log *logger.Logger) ports.UnitOfWork {
	return &unitOfWork{db: db, log: log}
}

func (u *unitOfWork) InTx(ctx context.Context, fn func(tx ports.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx, log: u.log})
	})
}

type txRepositories struct {
	tx  *gorm.DB
	log *logger.Logger
}

func (t *txRepositories) Commands() ports.CommandRepository {
	return NewCommandRepository(t.tx, t.log)
}

func (t *txRepositories) NodeLogs() ports.NodeLogRepository {
	return NewNodeLogRepository(t.tx, t.log)
}

func (t *txRepositories) Nodes() ports.NodeRepository {
	return NewNodeRepository(t.tx, t.log)
}

func (t *txRepositories) Blockchains() ports.BlockchainRepository {
	return NewBlockchainRepository(t.tx, t.log)
}
