package main

import (
	"github.com/sol-strategies/solana-validator-dashboard/cmd/solanavalidatordashboard"
)

func main() {
	solanavalidatordashboard.Execute()
}
