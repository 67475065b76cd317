package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/HabitChainLabs/HabitChainBackend/api/router"
	"github.com/HabitChainLabs/HabitChainBackend/app"
	"github.com/HabitChainLabs/HabitChainBackend/service/config"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

// Service is the daemon: the wallet session, the ledger polling loops, and
// the HTTP platform.
type Service struct {
	ctx      context.Context
	cfg      *config.Config
	svcCtx   *svc.ServerCtx
	platform *app.Platform
}

// New wires the full service from config.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	svcCtx, err := svc.NewServiceContext(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create service context")
	}

	r := router.NewRouter(svcCtx)
	platform, err := app.NewPlatform(cfg, r, svcCtx)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create platform")
	}

	return &Service{
		ctx:      ctx,
		cfg:      cfg,
		svcCtx:   svcCtx,
		platform: platform,
	}, nil
}

// Start launches the background loops and blocks on the HTTP listener.
func (s *Service) Start() error {
	// embedded hosts get one silent auto-connect attempt
	if s.cfg.WalletCfg.AutoConnect && s.svcCtx.Detector.IsEmbedded() {
		env := wallet.Env{Embedded: true}
		partition := wallet.Classify(s.svcCtx.Registry.Connectors(), env)
		s.svcCtx.Registry.AutoConnectEmbedded(s.ctx, partition.Embedded)
	}

	s.svcCtx.Checkin.Start(s.ctx)

	return s.platform.Start()
}
