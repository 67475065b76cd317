package types

import (
	"encoding/json"

	"github.com/HabitChainLabs/HabitChainBackend/service/recommend"
)

// ConnectorView is one picker entry.
type ConnectorView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Role  string `json:"role"`
}

type ConnectorsResp struct {
	Embedded *ConnectorView  `json:"embedded,omitempty"`
	Primary  *ConnectorView  `json:"primary,omitempty"`
	Remote   *ConnectorView  `json:"remote,omitempty"`
	Others   []ConnectorView `json:"others"`
}

type ConnectReq struct {
	ConnectorID string `json:"connector_id"`
}

type ConnectResp struct {
	Address string `json:"address"`
}

type ChainStatusResp struct {
	State          string `json:"state"`
	CurrentChainID int64  `json:"current_chain_id"`
	TargetChainID  int64  `json:"target_chain_id"`
	OnCorrectChain bool   `json:"on_correct_chain"`
}

type EnsureChainResp struct {
	OnCorrectChain bool  `json:"on_correct_chain"`
	ChainID        int64 `json:"chain_id"`
}

type SubmitCheckinReq struct {
	Address string `json:"address"`
	// Content is the free-form check-in payload pinned before submission;
	// ContentHash short-circuits the upload when the caller pinned it already.
	Content     json.RawMessage `json:"content,omitempty"`
	ContentHash string          `json:"content_hash,omitempty"`
	RequiresFee bool            `json:"requires_fee"`
}

type RefreshCapabilitiesReq struct {
	Address string `json:"address"`
}

type CooldownResp struct {
	Eligible          bool   `json:"eligible"`
	CooldownRemaining int64  `json:"cooldown_remaining"`
	HoursUntilNext    int64  `json:"hours_until_next"`
	Countdown         string `json:"countdown"`
}

type CheckinHistoryItem struct {
	RecordID    string `json:"record_id"`
	ContentHash string `json:"content_hash"`
	TxHash      string `json:"tx_hash"`
	RequiresFee bool   `json:"requires_fee"`
	CreateTime  int64  `json:"create_time"`
}

type CheckinHistoryResp struct {
	Items []CheckinHistoryItem `json:"items"`
}

type AnalyzeReq struct {
	Address string             `json:"address"`
	Answers []recommend.Answer `json:"answers"`
}
