package svc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"

	"github.com/HabitChainLabs/HabitChainBackend/dao"
	"github.com/HabitChainLabs/HabitChainBackend/model"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/utils"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/service/checkin"
	"github.com/HabitChainLabs/HabitChainBackend/service/config"
	"github.com/HabitChainLabs/HabitChainBackend/service/ipfs"
	"github.com/HabitChainLabs/HabitChainBackend/service/recommend"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

// ServerCtx bundles everything the handlers and loops need.
type ServerCtx struct {
	C        *config.Config
	DB       *gorm.DB
	Dao      *dao.Dao
	KvStore  kv.Store
	Registry *wallet.Registry
	Guard    *wallet.ChainGuard
	Detector *wallet.Detector
	Checkin  *checkin.Client
	Engine   *recommend.Engine
	Uploader *ipfs.Uploader
}

// NewServiceContext initializes all infrastructure components.
func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	// 1. logger
	if _, err := xzap.SetUp(*c.Log); err != nil {
		return nil, err
	}

	// 2. kv store (redis)
	var kvConf kv.KvConf
	for _, con := range c.Kv.Redis {
		kvConf = append(kvConf, cache.NodeConf{
			RedisConf: redis.RedisConf{
				Host: con.Host,
				Type: con.Type,
				Pass: con.Pass,
			},
			Weight: 1,
		})
	}
	store := kv.NewStore(kvConf)

	// 3. database
	db, err := model.NewDB(c.DB)
	if err != nil {
		return nil, err
	}
	d := dao.New(context.Background(), db, store)

	// 4. wallet session: registry, chain guard, embedded detector
	registry := wallet.NewRegistry(nil, nil)
	guard := wallet.NewChainGuard(c.ChainCfg.Params(), registry)
	detector := wallet.NewDetector(nil)

	// 5. ledger rpc reader
	if len(c.ChainCfg.RpcUrls) == 0 {
		return nil, errors.New("chain_cfg.rpc_urls must not be empty")
	}
	var ledger *checkin.RPCLedger
	if err := utils.Retry("dial ledger rpc", 3, 2*time.Second, func() error {
		var dialErr error
		ledger, dialErr = checkin.NewRPCLedger(context.Background(), c.ChainCfg.RpcUrls[0], c.ContractCfg.LedgerAddress)
		return dialErr
	}); err != nil {
		return nil, errors.Wrap(err, "failed on create ledger client")
	}

	// 6. checkin client, hinted by the local history length
	hint := func(ctx context.Context, addr string) int64 {
		count, err := d.CountCheckins(ctx, addr)
		if err != nil {
			return 0
		}
		return count
	}
	checkinClient := checkin.NewClient(c.ContractCfg.LedgerAddress, c.ChainCfg.Params(),
		ledger, registry, guard, store, hint)

	// 7. collaborators
	engine := recommend.NewEngine(context.Background(), c.AiCfg.ApiKey, c.AiCfg.Model)
	uploader := ipfs.NewUploader(c.IpfsCfg.Endpoint, c.IpfsCfg.Token)

	serverCtx := NewServerCtx(
		WithDB(db),
		WithKv(store),
		WithDao(d),
		WithRegistry(registry),
		WithGuard(guard),
		WithDetector(detector),
		WithCheckin(checkinClient),
		WithEngine(engine),
		WithUploader(uploader),
	)
	serverCtx.C = c

	return serverCtx, nil
}
