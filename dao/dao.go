package dao

import (
	"context"

	"github.com/zeromicro/go-zero/core/stores/kv"
	"gorm.io/gorm"
)

// Dao is the data access layer over MySQL and the KV cache.
type Dao struct {
	ctx     context.Context
	DB      *gorm.DB
	KvStore kv.Store
}

func New(ctx context.Context, db *gorm.DB, kvStore kv.Store) *Dao {
	return &Dao{
		ctx:     ctx,
		DB:      db,
		KvStore: kvStore,
	}
}
