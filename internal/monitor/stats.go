package monitor

import (
	"math"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
)

// ValidatorStats are the metrics derived from a vote account
type ValidatorStats struct {
	Uptime      float64 `json:"uptime"`
	StakeAmount uint64  `json:"stake_amount"`
	Commission  uint8   `json:"commission"`
	Rewards     uint64  `json:"rewards"`
	APR         float64 `json:"apr"`
}

// ComputeStats derives ValidatorStats from a vote account entry.
//
// Uptime is the epoch credit history length over 432, so it exceeds 100 for longer histories. Rewards is the
// sum of the credits column and APR annualizes it against the activated stake, 0 when there is no stake
func ComputeStats(voteAccount rpc.VoteAccountsResult) ValidatorStats {
	stats := ValidatorStats{
		Uptime:      float64(len(voteAccount.EpochCredits)) / constants.ExpectedEpochCreditEntries * 100,
		StakeAmount: voteAccount.ActivatedStake,
		Commission:  voteAccount.Commission,
	}

	for _, entry := range voteAccount.EpochCredits {
		// [epoch, credits, previous_credits]
		if len(entry) < 2 || entry[1] < 0 {
			continue
		}
		stats.Rewards += uint64(entry[1])
	}

	if stats.StakeAmount > 0 {
		stats.APR = float64(stats.Rewards) / float64(stats.StakeAmount) * constants.DaysPerYear * 100
	}

	return stats
}

// UptimeToBasisPoints converts an uptime percentage into the integer submitted to the dashboard program,
// two decimals of precision kept (99.87% -> 9987)
func UptimeToBasisPoints(uptime float64) uint64 {
	if uptime <= 0 || math.IsNaN(uptime) {
		return 0
	}
	return uint64(math.Floor(uptime * 100))
}
