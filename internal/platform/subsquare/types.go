package subsquare

import (
	"encoding/json"
	"time"

	"github.com/nkoval/govscan/internal/domain"
)

// APIReferendumPage is one page of the referendum listing endpoint.
type APIReferendumPage struct {
	Items    []APIReferendumSummary `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// APIReferendumSummary is one row of the listing.
type APIReferendumSummary struct {
	ReferendumIndex uint32   `json:"referendumIndex"`
	Title           string   `json:"title"`
	State           APIState `json:"state"`
}

// APIState is the explorer's state wrapper.
type APIState struct {
	Name string `json:"name"`
}

// APIReferendum is the full referendum detail payload.
type APIReferendum struct {
	ReferendumIndex uint32          `json:"referendumIndex"`
	Title           string          `json:"title"`
	Track           json.RawMessage `json:"track"`
	State           APIState        `json:"state"`
	CreatedAt       string          `json:"createdAt"`
	OnchainData     APIOnchainData  `json:"onchainData"`
}

// APIOnchainData carries the decoded proposal and its timeline.
type APIOnchainData struct {
	Proposal *APIProposal       `json:"proposal"`
	Timeline []APITimelineEntry `json:"timeline"`
}

// APIProposal wraps the decoded call tree. Call stays raw here; the domain
// Call decoder handles the envelope variants.
type APIProposal struct {
	Call json.RawMessage `json:"call"`
}

// APITimelineEntry is one lifecycle event of the referendum.
type APITimelineEntry struct {
	Name    string     `json:"name"`
	Indexer APIIndexer `json:"indexer"`
}

// APIIndexer locates a timeline event on-chain; blockTime is Unix
// milliseconds.
type APIIndexer struct {
	BlockHeight uint64 `json:"blockHeight"`
	BlockTime   int64  `json:"blockTime"`
}

// ToDomainSummary maps a listing row to the domain type.
func (s APIReferendumSummary) ToDomainSummary() domain.ProposalSummary {
	return domain.ProposalSummary{
		ID:    s.ReferendumIndex,
		Title: s.Title,
		State: s.State.Name,
	}
}

// ToDomainProposal maps a detail payload to the domain type. raw is the
// unmodified response body, retained for archival.
func (r APIReferendum) ToDomainProposal(raw []byte) (domain.Proposal, error) {
	p := domain.Proposal{
		ID:    r.ReferendumIndex,
		Title: r.Title,
		State: r.State.Name,
		Raw:   raw,
	}

	var track string
	if err := json.Unmarshal(r.Track, &track); err == nil {
		p.Track = track
	}

	if r.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			p.SubmittedAt = ts.UTC()
		}
	}

	for _, entry := range r.OnchainData.Timeline {
		if (entry.Name == "Executed" || entry.Name == "Confirmed") && entry.Indexer.BlockTime > 0 {
			ts := time.UnixMilli(entry.Indexer.BlockTime).UTC()
			p.ExecutedAt = &ts
		}
	}

	if r.OnchainData.Proposal != nil && len(r.OnchainData.Proposal.Call) > 0 {
		var call domain.Call
		if err := json.Unmarshal(r.OnchainData.Proposal.Call, &call); err != nil {
			return domain.Proposal{}, err
		}
		if !call.Empty() {
			p.Call = &call
		}
	}

	return p, nil
}
