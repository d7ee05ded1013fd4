package monitor

import (
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
)

func epochCredits(n int, credits int64) [][]int64 {
	entries := make([][]int64, n)
	for i := range entries {
		entries[i] = []int64{int64(i), credits, 0}
	}
	return entries
}

func TestComputeStats_FullHistory(t *testing.T) {
	stats := ComputeStats(rpc.VoteAccountsResult{
		ActivatedStake: 1_000_000,
		Commission:     7,
		EpochCredits:   epochCredits(432, 10),
	})

	assert.Equal(t, 100.0, stats.Uptime)
	assert.Equal(t, uint64(1_000_000), stats.StakeAmount)
	assert.Equal(t, uint8(7), stats.Commission)
	assert.Equal(t, uint64(4320), stats.Rewards)
	assert.InDelta(t, 4320.0/1_000_000*365*100, stats.APR, 1e-9)
}

func TestComputeStats_PartialHistory(t *testing.T) {
	stats := ComputeStats(rpc.VoteAccountsResult{
		ActivatedStake: 1000,
		EpochCredits:   [][]int64{{500, 20, 0}, {501, 30, 20}},
	})

	assert.InDelta(t, 2.0/432*100, stats.Uptime, 1e-9)
	assert.Equal(t, uint64(50), stats.Rewards)
	assert.InDelta(t, 1825.0, stats.APR, 1e-9)
}

func TestComputeStats_LongHistoryExceeds100(t *testing.T) {
	stats := ComputeStats(rpc.VoteAccountsResult{ActivatedStake: 1, EpochCredits: epochCredits(864, 0)})
	assert.Equal(t, 200.0, stats.Uptime)
}

func TestComputeStats_ZeroStake(t *testing.T) {
	stats := ComputeStats(rpc.VoteAccountsResult{EpochCredits: epochCredits(10, 5)})

	assert.Equal(t, uint64(50), stats.Rewards)
	assert.Zero(t, stats.APR)
}

func TestComputeStats_EmptyHistory(t *testing.T) {
	stats := ComputeStats(rpc.VoteAccountsResult{ActivatedStake: 10})

	assert.Zero(t, stats.Uptime)
	assert.Zero(t, stats.Rewards)
	assert.Zero(t, stats.APR)
}

func TestUptimeToBasisPoints(t *testing.T) {
	assert.Equal(t, uint64(10000), UptimeToBasisPoints(100))
	assert.Equal(t, uint64(9987), UptimeToBasisPoints(99.875))
	assert.Equal(t, uint64(46), UptimeToBasisPoints(2.0/432*100))
	assert.Equal(t, uint64(0), UptimeToBasisPoints(-1))
}

func TestStatsRows(t *testing.T) {
	rows := StatsRows(ValidatorStats{
		Uptime:      99.5,
		StakeAmount: 1_500_000_000_000,
		Commission:  5,
		Rewards:     1234567,
		APR:         6.25,
	})

	assert.Equal(t, []string{"Uptime", "99.50%"}, rows[0])
	assert.Equal(t, []string{"Stake", "1,500 SOL (1,500,000,000,000 lamports)"}, rows[1])
	assert.Equal(t, []string{"Commission", "5%"}, rows[2])
	assert.Equal(t, []string{"Rewards", "1,234,567 credits"}, rows[3])
	assert.Equal(t, []string{"APR", "6.25%"}, rows[4])
}
