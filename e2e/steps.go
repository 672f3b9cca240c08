package e2e

import (
	"github.com/cucumber/godog"

	"kycgate/e2e/steps/common"
	"kycgate/e2e/steps/verify"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	verify.RegisterSteps(ctx, tc)
}
