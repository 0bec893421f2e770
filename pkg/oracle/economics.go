package oracle

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// SecondsPerBlock is the chain's block cadence.
	SecondsPerBlock = 20

	// minStakeGas is the gas bound backing a voting's minimum stake.
	minStakeGas = 3_000_000

	// minStakeEpsilon counters float rounding when the stake is compared
	// against node-side math. Reproduced as-is; do not fold into the
	// multiplication.
	minStakeEpsilon = 0.00001

	maxOwnerDeposit = 5000
)

// VotingRecord is the read-only snapshot of an oracle voting the calculator
// operates on. Refreshing it is the caller's concern.
type VotingRecord struct {
	Balance         float64
	VotesCount      uint64
	Quorum          uint64
	CommitteeSize   uint64
	WinnerThreshold uint64
	OwnerFee        float64
	Votes           []OptionVotes
}

type OptionVotes struct {
	Option uint16
	Count  uint64
}

func ceilPct(n, pct uint64) uint64 {
	return (n*pct + 99) / 100
}

// QuorumVotesCount is the minimum number of committee votes for the result
// to be valid.
func QuorumVotesCount(committeeSize, quorum uint64) uint64 {
	return ceilPct(committeeSize, quorum)
}

// WinnerVotesCount is the minimum number of votes one option needs to win.
func WinnerVotesCount(votesCount, winnerThreshold uint64) uint64 {
	return ceilPct(votesCount, winnerThreshold)
}

func (v *VotingRecord) HasQuorum() bool {
	return v.VotesCount >= QuorumVotesCount(v.CommitteeSize, v.Quorum)
}

// HasWinner reports whether the voting has a decided outcome. The winner
// threshold is applied over the sum of all option counts, which can diverge
// from the raw VotesCount field; both are honored independently. A degenerate
// requirement of zero votes (zero threshold or no accountable votes) never
// declares a winner, even though the raw count comparison would hold for
// every option.
func (v *VotingRecord) HasWinner() bool {
	if !v.HasQuorum() {
		return false
	}

	var accountable uint64
	for _, o := range v.Votes {
		accountable += o.Count
	}

	need := WinnerVotesCount(accountable, v.WinnerThreshold)
	if need == 0 {
		return false
	}

	for _, o := range v.Votes {
		if o.Count >= need {
			return true
		}
	}

	return false
}

// OracleReward computes the per-oracle payout. The second return is false
// when the record does not carry enough to compute one (unknown balance or
// an empty committee); unknowns propagate instead of panicking.
func (v *VotingRecord) OracleReward() (float64, bool) {
	if math.IsNaN(v.Balance) || math.IsInf(v.Balance, 0) {
		return 0, false
	}

	n := QuorumVotesCount(v.CommitteeSize, v.Quorum)
	if v.VotesCount > n {
		n = v.VotesCount
	}
	if n == 0 {
		return 0, false
	}

	return v.Balance * (1 - v.OwnerFee/100) / float64(n), true
}

// VotingMinStake is the stake locked per voting, derived from the current
// fee per gas (base units).
func VotingMinStake(feePerGas float64) float64 {
	return minStakeGas*feePerGas*1e-18 + minStakeEpsilon
}

// VotingMinBalance is the minimum voting balance funding the committee's
// rewards, rounded to 4 decimals half-up.
func VotingMinBalance(minReward float64, committeeSize uint64) float64 {
	return round4(minReward * float64(committeeSize))
}

// EffectiveBalance is the voting balance net of the owner fee, rounded to 4
// decimals half-up.
func EffectiveBalance(balance, ownerFee float64) float64 {
	return round4(balance * (1 - ownerFee/100))
}

// MinOwnerDeposit is the deposit required of the voting owner, proportional
// to the committee's share of the network and capped at the full deposit.
func MinOwnerDeposit(networkSize, committeeSize uint64) float64 {
	if networkSize == 0 {
		return maxOwnerDeposit
	}

	perNode := decimal.NewFromInt(maxOwnerDeposit).
		Div(decimal.NewFromInt(int64(networkSize)))

	d := ceil4(perNode).Mul(decimal.NewFromInt(int64(committeeSize)))

	if d.GreaterThan(decimal.NewFromInt(maxOwnerDeposit)) {
		return maxOwnerDeposit
	}

	f, _ := d.Float64()
	return f
}

// VotingFinishDate is the wall-clock end of a voting, covering both the
// secret and public voting windows.
func VotingFinishDate(start time.Time, votingDuration, publicVotingDuration uint64) time.Time {
	blocks := votingDuration + publicVotingDuration
	return start.Add(time.Duration(blocks) * SecondsPerBlock * time.Second)
}

func round4(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(4).Float64()
	return f
}

func ceil4(d decimal.Decimal) decimal.Decimal {
	return d.Shift(4).Ceil().Shift(-4)
}
