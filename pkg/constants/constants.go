package constants

import (
	// embed
	_ "embed"
)

var (
	// AppVersion ...
	//go:embed app.version
	AppVersion string
)

const (
	// AppName ...
	AppName = "solana-validator-dashboard"
	// AppEnvVarLogLevel ...
	AppEnvVarLogLevel = "SOLANA_VALIDATOR_DASHBOARD_LOG_LEVEL"
	// AppEnvVarPrefix is prepended to environment variables handed to alert hooks
	AppEnvVarPrefix = "SOLANA_VALIDATOR_DASHBOARD_"
)
