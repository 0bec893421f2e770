package oracle

import "fmt"

// ErrorCode is an on-chain rejection reason from the oracle-voting contract.
// The set is closed; anything else the node reports is treated as unknown
// and passed through verbatim.
type ErrorCode string

const (
	ErrSenderNotIdentity  ErrorCode = "sender is not identity"
	ErrTooEarly           ErrorCode = "too early to accept open vote"
	ErrTooLate            ErrorCode = "too late to accept open vote"
	ErrQuorumNotReachable ErrorCode = "quorum is not reachable"
	ErrInsufficientFunds  ErrorCode = "insufficient funds"
	ErrNotRunning         ErrorCode = "contract is not in running state"
	ErrWrongVoteHash      ErrorCode = "wrong vote hash"
	ErrAlreadyVoted       ErrorCode = "sender has voted already"
)

var knownCodes = map[ErrorCode]struct{}{
	ErrSenderNotIdentity:  {},
	ErrTooEarly:           {},
	ErrTooLate:            {},
	ErrQuorumNotReachable: {},
	ErrInsufficientFunds:  {},
	ErrNotRunning:         {},
	ErrWrongVoteHash:      {},
	ErrAlreadyVoted:       {},
}

// ParseErrorCode reports whether the node's error string is one of the
// recognized rejection codes.
func ParseErrorCode(s string) (ErrorCode, bool) {
	c := ErrorCode(s)
	_, ok := knownCodes[c]
	return c, ok
}

type Locale string

const (
	LocaleEN Locale = "en"
)

// ErrorContext carries the voting fields some messages interpolate.
type ErrorContext struct {
	MinReward     float64
	CommitteeSize uint64
}

var messages = map[Locale]map[ErrorCode]func(ErrorContext) string{
	LocaleEN: {
		ErrSenderNotIdentity: fixed("Your address is not eligible to vote in this voting"),
		ErrTooEarly:          fixed("Voting has not started yet"),
		ErrTooLate:           fixed("The voting window has already closed"),
		ErrQuorumNotReachable: fixed(
			"Quorum can no longer be reached for this voting"),
		ErrInsufficientFunds: func(ctx ErrorContext) string {
			if ctx.CommitteeSize == 0 {
				// no voting snapshot to compute the minimum from
				return "Insufficient funds to vote in this voting"
			}
			return fmt.Sprintf("Insufficient funds. Minimum voting balance required: %v",
				VotingMinBalance(ctx.MinReward, ctx.CommitteeSize))
		},
		ErrNotRunning:    fixed("Voting is not running"),
		ErrWrongVoteHash: fixed("Your vote does not match the committed vote hash"),
		ErrAlreadyVoted:  fixed("You have already voted in this voting"),
	},
}

func fixed(s string) func(ErrorContext) string {
	return func(ErrorContext) string { return s }
}

// HumanError maps an on-chain rejection code to user-facing text. Unknown
// codes and codes without a message in the requested locale pass through
// verbatim; unknown locales fall back to English.
func HumanError(code string, ctx ErrorContext, locale Locale) string {
	byCode, ok := messages[locale]
	if !ok {
		byCode = messages[LocaleEN]
	}

	if m, ok := byCode[ErrorCode(code)]; ok {
		return m(ctx)
	}

	if m, ok := messages[LocaleEN][ErrorCode(code)]; ok {
		return m(ctx)
	}

	return code
}
