package domain

import "time"

type Payout struct {
	ID           int64     `json:"id"`
	MemberID     int32     `json:"member_id"`
	MemberName   string    `json:"member_name"`
	PayoutAmount int64     `json:"payout_amount"`
	PayoutDate   time.Time `json:"payout_date"`
	ReceiptRef   string    `json:"receipt_ref"`
	CreatedAt    time.Time `json:"created_at"`
}

// RotationState is the singleton pointer to the next beneficiary. Version is bumped
// on every advance and used as a compare-and-swap token.
type RotationState struct {
	NextPayoutIndex int32      `json:"next_payout_index"`
	NextPayoutDate  *time.Time `json:"next_payout_date,omitempty"`
	Version         int64      `json:"version"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NextRotationIndex wraps from groupSize back to 1.
func NextRotationIndex(current, groupSize int32) int32 {
	if groupSize <= 0 {
		return 1
	}
	if current < 1 {
		current = groupSize
	}
	return (current % groupSize) + 1
}

// RotationWindow is the accounting window of the current cycle. End documents the
// expected cycle length and only bounds the pot when the bounded rule is configured.
type RotationWindow struct {
	Start      time.Time `json:"window_start"`
	End        time.Time `json:"window_end"`
	Anchored   bool      `json:"anchored_to_payout"`
	Bounded    bool      `json:"bounded"`
	Pot        int64     `json:"pot"`
	LastPayout *Payout   `json:"last_payout,omitempty"`
	Degraded   []string  `json:"degraded,omitempty"`
}

// RotationWindowFor anchors the window at the last payout's execution time, or at
// the season start when nothing has been paid out yet.
func RotationWindowFor(lastPayoutAt *time.Time, seasonStart time.Time, period time.Duration) RotationWindow {
	w := RotationWindow{Start: seasonStart}
	if lastPayoutAt != nil && !lastPayoutAt.IsZero() {
		w.Start = *lastPayoutAt
		w.Anchored = true
	}
	w.End = w.Start.Add(period)
	return w
}

// Contains applies the exclusive lower bound and, when bounded, the inclusive upper bound.
func (w RotationWindow) Contains(t time.Time) bool {
	if !t.After(w.Start) {
		return false
	}
	if w.Bounded && t.After(w.End) {
		return false
	}
	return true
}

// PotContributions returns the contributions that make up the pot of the window:
// positive amounts inside it that an earlier payout has not already settled.
func PotContributions(contributions []Contribution, w RotationWindow, settledKind string) []Contribution {
	var out []Contribution
	for _, c := range contributions {
		if c.Amount <= 0 || c.Kind == settledKind {
			continue
		}
		if w.Contains(c.CreatedAt) {
			out = append(out, c)
		}
	}
	return out
}

// PotFrom sums PotContributions, so the pot is never negative.
func PotFrom(contributions []Contribution, w RotationWindow, settledKind string) int64 {
	var pot int64
	for _, c := range PotContributions(contributions, w, settledKind) {
		pot += c.Amount
	}
	return pot
}

type RotationStatus struct {
	Window      RotationWindow `json:"window"`
	State       *RotationState `json:"state,omitempty"`
	Beneficiary *Member        `json:"beneficiary,omitempty"`
	GroupSize   int32          `json:"group_size"`
}

// PayoutResult separates the committed primary outcome from a secondary write that
// failed without aborting the payout.
type PayoutResult struct {
	Payout               Payout    `json:"payout"`
	Beneficiary          Member    `json:"beneficiary"`
	SettledContributions int64     `json:"settled_contributions"`
	PreviousIndex        int32     `json:"previous_index"`
	NextIndex            int32     `json:"next_index"`
	NextPayoutDate       time.Time `json:"next_payout_date"`
	ReceiptRecorded      bool      `json:"receipt_recorded"`
	Warning              string    `json:"warning,omitempty"`
	ViaProcedure         bool      `json:"via_procedure"`
}
