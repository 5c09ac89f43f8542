package service

import (
	"errors"
	"sync"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	PickMove(grid entity.Grid) (entity.Coordinate, error)
}

type botService struct {
	mu  sync.Mutex
	rnd tictactoe.Rand
}

// NewBotService - returns a computer opponent that plays a uniformly random empty cell.
func NewBotService(rnd tictactoe.Rand) BotService {
	return &botService{
		rnd: rnd,
	}
}

func (that *botService) PickMove(grid entity.Grid) (entity.Coordinate, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	cell, found := tictactoe.TryGetRandomEmptyCell(grid, that.rnd)
	if !found {
		return entity.Coordinate{}, ErrNoAvailableMoves
	}

	return cell, nil
}
