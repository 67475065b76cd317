package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/HabitChainLabs/HabitChainBackend/api/types"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/errcode"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xhttp"
	"github.com/HabitChainLabs/HabitChainBackend/service/svc"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

func connectorView(c *wallet.Connector, role wallet.Role) *types.ConnectorView {
	if c == nil {
		return nil
	}
	return &types.ConnectorView{
		ID:    c.ID,
		Name:  c.Name,
		Ready: c.Ready,
		Role:  role.String(),
	}
}

// ConnectorsHandler returns the classified wallet picker.
func ConnectorsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		env := wallet.Env{
			Embedded:           svcCtx.Detector.IsEmbedded(),
			MobileOrRestricted: c.Query("mobile") == "true",
			InjectedIsMetaMask: c.Query("injected_is_metamask") == "true",
		}

		p := wallet.Classify(svcCtx.Registry.Connectors(), env)

		resp := types.ConnectorsResp{
			Embedded: connectorView(p.Embedded, wallet.RoleEmbedded),
			Primary:  connectorView(p.Primary, wallet.RolePrimary),
			Remote:   connectorView(p.Remote, wallet.RoleRemote),
			Others:   make([]types.ConnectorView, 0, len(p.Others)),
		}
		for _, other := range p.Others {
			resp.Others = append(resp.Others, *connectorView(other, wallet.RoleOther))
		}

		xhttp.OkJson(c, resp)
	}
}

// ConnectHandler establishes the wallet session over the named connector.
func ConnectHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := types.ConnectReq{}
		if err := c.BindJSON(&req); err != nil {
			xhttp.Error(c, err)
			return
		}
		if req.ConnectorID == "" {
			xhttp.Error(c, errcode.NewCustomErr("connector_id is null"))
			return
		}

		address, err := svcCtx.Registry.Connect(c.Request.Context(), req.ConnectorID)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		xhttp.OkJson(c, types.ConnectResp{Address: address})
	}
}

// DisconnectHandler drops the active wallet session.
func DisconnectHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		svcCtx.Registry.Disconnect()
		xhttp.OkJson(c, struct{}{})
	}
}

// ChainStatusHandler reports the chain guard's view of the wallet chain.
func ChainStatusHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		xhttp.OkJson(c, types.ChainStatusResp{
			State:          svcCtx.Guard.State().String(),
			CurrentChainID: svcCtx.Guard.CurrentChainID(),
			TargetChainID:  svcCtx.Guard.TargetChainID(),
			OnCorrectChain: svcCtx.Guard.IsOnCorrectChain(),
		})
	}
}

// EnsureChainHandler drives one switch attempt toward the target chain.
func EnsureChainHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok := svcCtx.Guard.EnsureCorrectChain(c.Request.Context())
		xhttp.OkJson(c, types.EnsureChainResp{
			OnCorrectChain: ok,
			ChainID:        svcCtx.Guard.CurrentChainID(),
		})
	}
}
