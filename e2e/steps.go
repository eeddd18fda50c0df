package e2e

import (
	"github.com/cucumber/godog"

	"kayit/e2e/steps/common"
	"kayit/e2e/steps/onboarding"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// Registration link, location and submission steps
	onboarding.RegisterSteps(ctx, tc)
}
