package e2e

import (
	"github.com/cucumber/godog"

	"storeops/e2e/steps/common"
	"storeops/e2e/steps/timeclock"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (identity, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register clock and access steps
	timeclock.RegisterSteps(ctx, tc)
}
