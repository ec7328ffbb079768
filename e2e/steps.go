package e2e

import (
	"github.com/cucumber/godog"

	"github.com/qxxq-lcvn/treasure-hunt/e2e/steps/attestation"
	"github.com/qxxq-lcvn/treasure-hunt/e2e/steps/common"
	"github.com/qxxq-lcvn/treasure-hunt/e2e/steps/game"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic response assertions)
	common.RegisterSteps(ctx, tc)

	// Register identity and credential steps
	attestation.RegisterSteps(ctx, tc)

	// Register game-play steps
	game.RegisterSteps(ctx, tc)
}
