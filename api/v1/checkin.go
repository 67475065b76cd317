package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/api/types"
	"github.com/HabitChainLabs/HabitChainBackend/model"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/errcode"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xhttp"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/service/checkin"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
)

const defaultHistoryLimit = 20

// CheckinStatusHandler returns the consolidated on-chain status view.
func CheckinStatusHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Params.ByName("address")
		if address == "" {
			xhttp.Error(c, errcode.NewCustomErr("user addr is null"))
			return
		}

		status, err := svcCtx.Checkin.FetchStatus(c.Request.Context(), address)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		xhttp.OkJson(c, status)
	}
}

// CooldownHandler runs the advisory pre-check and formats the countdown.
func CooldownHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Params.ByName("address")
		if address == "" {
			xhttp.Error(c, errcode.NewCustomErr("user addr is null"))
			return
		}

		ctx := c.Request.Context()
		eligible := svcCtx.Checkin.CheckCooldown(ctx, address)

		var remaining int64
		if status, err := svcCtx.Checkin.FetchStatus(ctx, address); err == nil {
			remaining = status.CooldownRemaining
		}

		xhttp.OkJson(c, types.CooldownResp{
			Eligible:          eligible,
			CooldownRemaining: remaining,
			HoursUntilNext:    checkin.HoursUntilNext(remaining),
			Countdown:         checkin.FormatCountdown(remaining),
		})
	}
}

// CheckinHistoryHandler lists the locally recorded check-ins for an address.
func CheckinHistoryHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Params.ByName("address")
		if address == "" {
			xhttp.Error(c, errcode.NewCustomErr("user addr is null"))
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
		if err != nil || limit <= 0 {
			limit = defaultHistoryLimit
		}

		records, err := svcCtx.Dao.RecentCheckins(c.Request.Context(), address, limit)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		resp := types.CheckinHistoryResp{Items: make([]types.CheckinHistoryItem, 0, len(records))}
		for _, r := range records {
			resp.Items = append(resp.Items, types.CheckinHistoryItem{
				RecordID:    r.RecordId,
				ContentHash: r.ContentHash,
				TxHash:      r.TxHash,
				RequiresFee: r.RequiresFee,
				CreateTime:  r.CreateTime,
			})
		}
		xhttp.OkJson(c, resp)
	}
}

// RefreshCapabilitiesHandler re-probes the deployed contract, picking up
// upgraded deployments without a restart.
func RefreshCapabilitiesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := types.RefreshCapabilitiesReq{}
		if err := c.BindJSON(&req); err != nil {
			xhttp.Error(c, err)
			return
		}
		if req.Address == "" {
			xhttp.Error(c, errcode.NewCustomErr("user addr is null"))
			return
		}
		xhttp.OkJson(c, svcCtx.Checkin.RefreshCapabilities(c.Request.Context(), req.Address))
	}
}

// SubmitCheckinHandler runs the full submission pipeline:
// 1. pin the check-in content when the caller did not pin it already
// 2. drive the on-chain submission to confirmation
// 3. append the confirmed check-in to the local history
func SubmitCheckinHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := types.SubmitCheckinReq{}
		if err := c.BindJSON(&req); err != nil {
			xhttp.Error(c, err)
			return
		}
		if req.Address == "" {
			xhttp.Error(c, errcode.NewCustomErr("user addr is null"))
			return
		}

		ctx := c.Request.Context()

		contentHash := req.ContentHash
		if contentHash == "" && len(req.Content) > 0 {
			hash, err := svcCtx.Uploader.Upload(ctx, req.Content)
			if err != nil {
				xhttp.Error(c, errcode.NewCustomErr(err.Error()))
				return
			}
			contentHash = hash
		}

		sub, err := svcCtx.Checkin.SubmitCheckin(ctx, req.Address, contentHash, req.RequiresFee)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		// local history is best-effort; the chain already holds the truth
		if err := svcCtx.Dao.CreateCheckinRecord(ctx, &model.CheckinRecord{
			RecordId:    sub.ID,
			Address:     req.Address,
			ContentHash: sub.IPFSHash,
			TxHash:      sub.TxHash,
			RequiresFee: sub.RequiresFee,
		}); err != nil {
			xzap.WithContext(ctx).Warn("failed on record checkin history", zap.Error(err))
		}

		xhttp.OkJson(c, sub)
	}
}
