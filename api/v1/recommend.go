package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/HabitChainLabs/HabitChainBackend/api/types"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/errcode"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xhttp"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
)

// QuestionsHandler returns the daily question set.
func QuestionsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		focus := c.DefaultQuery("focus", "general wellness")
		xhttp.OkJson(c, svcCtx.Engine.GenerateQuestions(c.Request.Context(), focus))
	}
}

// AnalyzeHandler turns the day's answers plus recent history into a
// recommendation.
func AnalyzeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := types.AnalyzeReq{}
		if err := c.BindJSON(&req); err != nil {
			xhttp.Error(c, err)
			return
		}
		if len(req.Answers) == 0 {
			xhttp.Error(c, errcode.NewCustomErr("answers are null"))
			return
		}

		ctx := c.Request.Context()
		var history []string
		if req.Address != "" {
			if records, err := svcCtx.Dao.RecentCheckins(ctx, req.Address, defaultHistoryLimit); err == nil {
				for _, r := range records {
					history = append(history, r.ContentHash)
				}
			}
		}

		xhttp.OkJson(c, svcCtx.Engine.Analyze(ctx, req.Answers, history))
	}
}
