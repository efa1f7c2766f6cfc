package domain

import (
	"encoding/json"
	"time"
)

// Proposal is one OpenGov referendum as fetched from the explorer API,
// reduced to what valuation needs.
type Proposal struct {
	ID          uint32
	Title       string
	Track       string
	State       string
	SubmittedAt time.Time
	// ExecutedAt is the enactment time when the referendum has executed;
	// historic valuations are pinned to it.
	ExecutedAt *time.Time
	// Call is the decoded proposal call tree. Nil when no preimage was ever
	// submitted.
	Call *Call
	// Raw is the unmodified explorer payload, kept for archival.
	Raw json.RawMessage
}

// ProposalSummary is one row of a paginated referendum listing.
type ProposalSummary struct {
	ID    uint32
	Title string
	State string
}

// Valuation is the persisted outcome of evaluating one proposal: the
// per-kind amounts it moves plus scalar values in USD and the native token.
// Undetermined valuations carry nil scalars, never zero.
type Valuation struct {
	Network      string                `json:"network"`
	ProposalID   uint32                `json:"proposal_id"`
	Amounts      map[AssetKind]float64 `json:"amounts"`
	USDValue     *float64              `json:"usd_value"`
	NativeValue  *float64              `json:"native_value"`
	Undetermined bool                  `json:"undetermined"`
	EvaluatedAt  time.Time             `json:"evaluated_at"`
}

// Quote is one dated native-token-in-USD price point.
type Quote struct {
	Date  time.Time
	Price float64
}

// ScanRun is the audit record for one pipeline sweep over the referenda.
type ScanRun struct {
	ID           string
	Network      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Seen         int
	Valued       int
	Undetermined int
	Error        string
}
