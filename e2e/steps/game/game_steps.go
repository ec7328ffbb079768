package game

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	ActAs(name string) error
	AsAnonymous()
	POST(path string, body any) error
	GET(path string) error
	LastStatus() int
	TreasurePosition(treasureID int) (int, error)
}

// RegisterSteps registers game-play step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gameSteps{tc: tc}

	ctx.Step(`^"([^"]*)" registers as a player$`, steps.registersAsPlayer)
	ctx.Step(`^"([^"]*)" moves to the position of treasure (\d+)$`, steps.movesToTreasure)
	ctx.Step(`^"([^"]*)" moves to position (\d+)$`, steps.movesToPosition)
	ctx.Step(`^"([^"]*)" makes (\d+) moves to position (\d+)$`, steps.makesMoves)
	ctx.Step(`^"([^"]*)" claims treasure (\d+)$`, steps.claimsTreasure)
	ctx.Step(`^"([^"]*)" reads the profile of player "([^"]*)"$`, steps.readsPlayer)
	ctx.Step(`^an anonymous caller reads the position of treasure (\d+)$`, steps.anonymousReadsPosition)
}

type gameSteps struct {
	tc TestContext
}

func (s *gameSteps) registersAsPlayer(name string) error {
	if err := s.tc.ActAs(name); err != nil {
		return err
	}
	return s.tc.POST("/game/players", nil)
}

func (s *gameSteps) movesToTreasure(name string, treasureID int) error {
	position, err := s.tc.TreasurePosition(treasureID)
	if err != nil {
		return err
	}
	return s.movesToPosition(name, position)
}

func (s *gameSteps) movesToPosition(name string, position int) error {
	if err := s.tc.ActAs(name); err != nil {
		return err
	}
	return s.tc.POST("/game/players/me/moves", map[string]int{"position": position})
}

func (s *gameSteps) makesMoves(name string, count, position int) error {
	for i := 0; i < count; i++ {
		if err := s.movesToPosition(name, position); err != nil {
			return err
		}
		if s.tc.LastStatus() != 200 {
			return fmt.Errorf("move %d returned status %d", i+1, s.tc.LastStatus())
		}
	}
	return nil
}

func (s *gameSteps) claimsTreasure(name string, treasureID int) error {
	if err := s.tc.ActAs(name); err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf("/game/treasures/%d/claim", treasureID), nil)
}

func (s *gameSteps) readsPlayer(caller, player string) error {
	if err := s.tc.ActAs(caller); err != nil {
		return err
	}
	return s.tc.GET("/game/players/0x" + player)
}

func (s *gameSteps) anonymousReadsPosition(treasureID int) error {
	s.tc.AsAnonymous()
	return s.tc.GET(fmt.Sprintf("/game/treasures/%d/position", treasureID))
}
