package constants

import (
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	// ExpectedEpochCreditEntries is the number of epoch credit entries that counts as 100% uptime
	ExpectedEpochCreditEntries = 432

	// DaysPerYear is used to annualize rewards into an APR
	DaysPerYear = 365

	// DefaultUptimeAlertThreshold is the uptime percentage below which the monitor raises an alert
	DefaultUptimeAlertThreshold = 95.0

	// DefaultMonitorInterval is the time between two monitor ticks
	DefaultMonitorInterval = 60 * time.Second

	// DefaultDashboardAlertThreshold is the alert threshold a dashboard record is created with
	DefaultDashboardAlertThreshold uint64 = 95

	// DefaultDashboardProgramID is the address of the deployed validator dashboard program
	DefaultDashboardProgramID = "9KxB22cPSBkKXJJ9wusjQkfeVUrbT5qzCWdhCpnW5dpC"

	// LamportsPerSOL is the number of lamports in one SOL
	LamportsPerSOL = 1_000_000_000

	// EnvVarRPCURL is the environment variable holding the rpc endpoint
	EnvVarRPCURL = "SOLANA_RPC_URL"

	// EnvVarValidatorPubkey is the environment variable holding the monitored validator identity
	EnvVarValidatorPubkey = "VALIDATOR_PUBKEY"
)

var (
	// SolanaClusters is a map of solana clusters to their rpc urls
	SolanaClusters = map[string]rpc.Cluster{
		rpc.MainNetBeta.Name: rpc.MainNetBeta,
		rpc.TestNet.Name:     rpc.TestNet,
		rpc.DevNet.Name:      rpc.DevNet,
		rpc.LocalNet.Name:    rpc.LocalNet,
	}

	// SolanaClusterNames is a list of solana cluster names
	SolanaClusterNames []string

	// DefaultRPCURL is the endpoint used when none is configured
	DefaultRPCURL = rpc.MainNetBeta.RPC
)

func init() {
	SolanaClusterNames = make([]string, 0, len(SolanaClusters))
	for name := range SolanaClusters {
		SolanaClusterNames = append(SolanaClusterNames, name)
	}
}
