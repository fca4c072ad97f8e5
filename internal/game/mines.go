package game

import (
	"slices"
	"sync"
	"time"

	"telegram_casino/internal/domain"
)

// MinesGame - одиночная игра в сапёра на поле 5x5 с тремя минами.
// Игрок открывает ячейки и может забрать выигрыш в любой момент.
type MinesGame struct {
	ID         string
	UserID     int64
	Bet        int64
	Mines      []int // позиции мин (скрыты от клиента до конца игры)
	Opened     []int // открытые безопасные ячейки в порядке открытия
	HitCell    int   // ячейка, на которой подорвался игрок, иначе -1
	Status     MinesStatus
	WinAmount  int64
	CreatedAt  time.Time
	FinishedAt *time.Time
	mu         sync.RWMutex
}

type MinesStatus string

const (
	MinesBoardRows  = 5
	MinesBoardCols  = 5
	MinesBoardSize  = MinesBoardRows * MinesBoardCols
	MinesCount      = 3
	MinesSafeCells  = MinesBoardSize - MinesCount
	MinesMaxPayout  = 100.0
	MinesBaseFactor = 1.0

	MinesStatusActive    MinesStatus = "active"
	MinesStatusLost      MinesStatus = "lost"
	MinesStatusCashedOut MinesStatus = "cashed_out"
)

// Множители по числу открытых безопасных ячеек; после 12 - потолок MinesMaxPayout
var MinesMultipliers = map[int]float64{
	1:  1.2,
	2:  1.5,
	3:  2,
	4:  3,
	5:  5,
	6:  7,
	7:  10,
	8:  15,
	9:  20,
	10: 30,
	11: 50,
	12: 100,
}

// MinesMultiplier возвращает множитель для k открытых ячеек
func MinesMultiplier(opened int) float64 {
	if opened <= 0 {
		return MinesBaseFactor
	}
	if m, ok := MinesMultipliers[opened]; ok {
		return m
	}
	return MinesMaxPayout
}

// создает новую игру, раскладывая мины равномерно без повторов
func NewMinesGame(id string, userID, bet int64, r Rand, now time.Time) *MinesGame {
	return NewMinesGameWithMines(id, userID, bet, sample(r, MinesBoardSize, MinesCount), now)
}

// NewMinesGameWithMines создает игру с известной раскладкой
func NewMinesGameWithMines(id string, userID, bet int64, mines []int, now time.Time) *MinesGame {
	return &MinesGame{
		ID:        id,
		UserID:    userID,
		Bet:       bet,
		Mines:     slices.Clone(mines),
		Opened:    []int{},
		HitCell:   -1,
		Status:    MinesStatusActive,
		CreatedAt: now,
	}
}

// CellIndex переводит координаты (0-based) в индекс ячейки
func CellIndex(row, col int) (int, bool) {
	if row < 0 || row >= MinesBoardRows || col < 0 || col >= MinesBoardCols {
		return 0, false
	}
	return row*MinesBoardCols + col, true
}

// Open открывает ячейку; hitMine=true завершает игру проигрышем
func (g *MinesGame) Open(row, col int, now time.Time) (hitMine bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != MinesStatusActive {
		return false, domain.ErrNotActive
	}

	cell, ok := CellIndex(row, col)
	if !ok {
		return false, domain.ErrInvalidCell
	}

	if slices.Contains(g.Opened, cell) {
		return false, domain.ErrAlreadyOpened
	}

	if slices.Contains(g.Mines, cell) {
		g.Status = MinesStatusLost
		g.HitCell = cell
		g.WinAmount = 0
		g.FinishedAt = &now
		return true, nil
	}

	// все 22 безопасные ячейки открыты - игра продолжается до кэшаута
	g.Opened = append(g.Opened, cell)
	return false, nil
}

// CashOut фиксирует выигрыш. Без открытых ячеек возвращается ставка.
func (g *MinesGame) CashOut(now time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != MinesStatusActive {
		return 0, domain.ErrNotActive
	}

	g.Status = MinesStatusCashedOut
	g.WinAmount = Payout(g.Bet, MinesMultiplier(len(g.Opened)))
	g.FinishedAt = &now
	return g.WinAmount, nil
}

func (g *MinesGame) IsActive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Status == MinesStatusActive
}

func (g *MinesGame) Multiplier() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return MinesMultiplier(len(g.Opened))
}

func (g *MinesGame) PotentialPayout() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Payout(g.Bet, MinesMultiplier(len(g.Opened)))
}

// возвращает чистую прибыль (выигрыш - ставка)
func (g *MinesGame) Profit() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.Status == MinesStatusCashedOut {
		return g.WinAmount - g.Bet
	}
	return -g.Bet
}

type CellState string

const (
	CellHidden   CellState = "hidden"
	CellSafe     CellState = "safe"
	CellMine     CellState = "mine"
	CellExploded CellState = "exploded"
)

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func cellOf(index int) Cell {
	return Cell{Row: index / MinesBoardCols, Col: index % MinesBoardCols}
}

// MinesSnapshot - состояние игры, безопасное для клиента
type MinesSnapshot struct {
	ID              string        `json:"id"`
	UserID          int64         `json:"user_id"`
	Bet             int64         `json:"bet"`
	Status          MinesStatus   `json:"status"`
	Grid            [][]CellState `json:"grid"`
	Opened          []Cell        `json:"opened"`
	Mines           []Cell        `json:"mines,omitempty"`
	Multiplier      float64       `json:"multiplier"`
	NextMultiplier  float64       `json:"next_multiplier"`
	PotentialPayout int64         `json:"potential_payout"`
	WinAmount       int64         `json:"win_amount"`
	CreatedAt       time.Time     `json:"created_at"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
}

// Snapshot возвращает копию состояния; мины видны только после окончания игры
func (g *MinesGame) Snapshot() MinesSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	opened := len(g.Opened)
	next := MinesMultiplier(opened)
	if opened < MinesSafeCells {
		next = MinesMultiplier(opened + 1)
	}

	s := MinesSnapshot{
		ID:              g.ID,
		UserID:          g.UserID,
		Bet:             g.Bet,
		Status:          g.Status,
		Grid:            make([][]CellState, MinesBoardRows),
		Opened:          make([]Cell, 0, opened),
		Multiplier:      MinesMultiplier(opened),
		NextMultiplier:  next,
		PotentialPayout: Payout(g.Bet, MinesMultiplier(opened)),
		WinAmount:       g.WinAmount,
		CreatedAt:       g.CreatedAt,
		FinishedAt:      g.FinishedAt,
	}

	for r := range s.Grid {
		s.Grid[r] = make([]CellState, MinesBoardCols)
		for c := range s.Grid[r] {
			s.Grid[r][c] = CellHidden
		}
	}
	for _, idx := range g.Opened {
		c := cellOf(idx)
		s.Opened = append(s.Opened, c)
		s.Grid[c.Row][c.Col] = CellSafe
	}

	if g.Status != MinesStatusActive {
		for _, idx := range g.Mines {
			c := cellOf(idx)
			s.Mines = append(s.Mines, c)
			s.Grid[c.Row][c.Col] = CellMine
		}
		if g.HitCell >= 0 {
			c := cellOf(g.HitCell)
			s.Grid[c.Row][c.Col] = CellExploded
		}
	}
	return s
}

// возвращает детали игры для аудита и логов
func (g *MinesGame) ToDetails() map[string]interface{} {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return map[string]interface{}{
		"mines":      g.Mines,
		"opened":     g.Opened,
		"multiplier": MinesMultiplier(len(g.Opened)),
		"status":     g.Status,
		"win_amount": g.WinAmount,
	}
}
