package router

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/HabitChainLabs/HabitChainBackend/api/v1"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
)

func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	api := r.Group("/api/v1")

	wallets := api.Group("/wallets")
	{
		wallets.GET("/connectors", v1.ConnectorsHandler(svcCtx))
		wallets.POST("/connect", v1.ConnectHandler(svcCtx))
		wallets.POST("/disconnect", v1.DisconnectHandler(svcCtx))
		wallets.GET("/chain", v1.ChainStatusHandler(svcCtx))
		wallets.POST("/chain/ensure", v1.EnsureChainHandler(svcCtx))
	}

	checkins := api.Group("/checkins")
	{
		checkins.GET("/status/:address", v1.CheckinStatusHandler(svcCtx))
		checkins.GET("/cooldown/:address", v1.CooldownHandler(svcCtx))
		checkins.GET("/history/:address", v1.CheckinHistoryHandler(svcCtx))
		checkins.POST("/submit", v1.SubmitCheckinHandler(svcCtx))
		checkins.POST("/capabilities/refresh", v1.RefreshCapabilitiesHandler(svcCtx))
	}

	recommend := api.Group("/recommend")
	{
		recommend.GET("/questions", v1.QuestionsHandler(svcCtx))
		recommend.POST("/analyze", v1.AnalyzeHandler(svcCtx))
	}
}
