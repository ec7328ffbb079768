// Package board computes the one-time randomized treasure placement.
package board

import (
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/rng"
)

// Params are the deploy-time board parameters.
type Params struct {
	GridSize     int
	MaxTreasures int
	InitialValue int64
}

// Validate enforces the construction invariants.
func (p Params) Validate() error {
	if p.GridSize <= 0 {
		return dErrors.New(dErrors.CodeValidation, "grid size must be positive")
	}
	if p.InitialValue <= 0 {
		return dErrors.New(dErrors.CodeValidation, "initial treasure value must be positive")
	}
	if p.MaxTreasures <= 0 {
		return dErrors.New(dErrors.CodeValidation, "max treasures must be positive")
	}
	if p.MaxTreasures > p.GridSize {
		return dErrors.New(dErrors.CodeValidation, "max treasures cannot exceed grid size")
	}
	return nil
}

// Place shuffles the grid cells and assigns the first MaxTreasures of them to
// sequential treasure IDs starting at 1, with value = InitialValue + index.
//
// The shuffle is Fisher-Yates with modulo reduction: element i swaps with
// element i + (source() mod (gridSize - i)). The modulo bias and the weak
// source are preserved for parity with the original placement behavior.
func Place(params Params, source rng.Source) ([]models.Treasure, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	cells := make([]int, params.GridSize)
	for i := range cells {
		cells[i] = i
	}
	for i := 0; i < params.GridSize; i++ {
		j := i + int(source.Next()%uint64(params.GridSize-i))
		cells[i], cells[j] = cells[j], cells[i]
	}

	treasures := make([]models.Treasure, 0, params.MaxTreasures)
	for i := 0; i < params.MaxTreasures; i++ {
		treasures = append(treasures, models.Treasure{
			ID:       id.TreasureID(i + 1),
			Value:    params.InitialValue + int64(i),
			Claimed:  false,
			Position: cells[i],
		})
	}
	return treasures, nil
}
