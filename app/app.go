package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/service/config"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
)

// Platform is the container for the HTTP side of the daemon.
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
}

func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
	}, nil
}

// Start blocks on the HTTP listener.
func (p *Platform) Start() error {
	xzap.WithContext(context.Background()).Info("HabitChain-End run", zap.String("port", p.config.Api.Port))
	return p.router.Run(p.config.Api.Port)
}
