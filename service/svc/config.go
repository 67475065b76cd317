package svc

import (
	"github.com/zeromicro/go-zero/core/stores/kv"
	"gorm.io/gorm"

	"github.com/HabitChainLabs/HabitChainBackend/dao"
	"github.com/HabitChainLabs/HabitChainBackend/service/checkin"
	"github.com/HabitChainLabs/HabitChainBackend/service/ipfs"
	"github.com/HabitChainLabs/HabitChainBackend/service/recommend"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

// CtxConfig collects the ServerCtx components through the option pattern.
type CtxConfig struct {
	db       *gorm.DB
	dao      *dao.Dao
	kvStore  kv.Store
	registry *wallet.Registry
	guard    *wallet.ChainGuard
	detector *wallet.Detector
	checkin  *checkin.Client
	engine   *recommend.Engine
	uploader *ipfs.Uploader
}

type CtxOption func(conf *CtxConfig)

// NewServerCtx assembles a ServerCtx from options; tests use it to build
// contexts over fakes.
func NewServerCtx(options ...CtxOption) *ServerCtx {
	c := &CtxConfig{}
	for _, opt := range options {
		opt(c)
	}
	return &ServerCtx{
		DB:       c.db,
		Dao:      c.dao,
		KvStore:  c.kvStore,
		Registry: c.registry,
		Guard:    c.guard,
		Detector: c.detector,
		Checkin:  c.checkin,
		Engine:   c.engine,
		Uploader: c.uploader,
	}
}

func WithDB(db *gorm.DB) CtxOption {
	return func(conf *CtxConfig) {
		conf.db = db
	}
}

func WithDao(d *dao.Dao) CtxOption {
	return func(conf *CtxConfig) {
		conf.dao = d
	}
}

func WithKv(store kv.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.kvStore = store
	}
}

func WithRegistry(r *wallet.Registry) CtxOption {
	return func(conf *CtxConfig) {
		conf.registry = r
	}
}

func WithGuard(g *wallet.ChainGuard) CtxOption {
	return func(conf *CtxConfig) {
		conf.guard = g
	}
}

func WithDetector(d *wallet.Detector) CtxOption {
	return func(conf *CtxConfig) {
		conf.detector = d
	}
}

func WithCheckin(c *checkin.Client) CtxOption {
	return func(conf *CtxConfig) {
		conf.checkin = c
	}
}

func WithEngine(e *recommend.Engine) CtxOption {
	return func(conf *CtxConfig) {
		conf.engine = e
	}
}

func WithUploader(u *ipfs.Uploader) CtxOption {
	return func(conf *CtxConfig) {
		conf.uploader = u
	}
}
