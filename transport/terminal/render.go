package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/game2048/game/engine"
)

// Board geometry in terminal cells. Tile i starts at i*(tileWidth+gap)+gap
// from the board edge, on both axes.
const (
	tileWidth  = 7
	tileHeight = 3
	gap        = 1

	boardX = 2
	boardY = 2

	boardWidth  = engine.BoardSize*(tileWidth+gap) + gap
	boardHeight = engine.BoardSize*(tileHeight+gap) + gap
)

const helpLine = "arrows/hjkl/wasd move  r restart  q quit"

var (
	styleDefault = tcell.StyleDefault
	styleBoard   = tcell.StyleDefault.Background(tcell.NewRGBColor(0xbb, 0xad, 0xa0))
	styleEmpty   = tcell.StyleDefault.Background(tcell.NewRGBColor(0xcd, 0xc1, 0xb4))
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLost    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

var tileColors = map[int]tcell.Color{
	2:    tcell.NewRGBColor(0xee, 0xe4, 0xda),
	4:    tcell.NewRGBColor(0xed, 0xe0, 0xc8),
	8:    tcell.NewRGBColor(0xf2, 0xb1, 0x79),
	16:   tcell.NewRGBColor(0xf5, 0x95, 0x63),
	32:   tcell.NewRGBColor(0xf6, 0x7c, 0x5f),
	64:   tcell.NewRGBColor(0xf6, 0x5e, 0x3b),
	128:  tcell.NewRGBColor(0xed, 0xcf, 0x72),
	256:  tcell.NewRGBColor(0xed, 0xcc, 0x61),
	512:  tcell.NewRGBColor(0xed, 0xc8, 0x50),
	1024: tcell.NewRGBColor(0xed, 0xc5, 0x3f),
	2048: tcell.NewRGBColor(0xed, 0xc2, 0x2e),
}

func tileStyle(value int) tcell.Style {
	bg, ok := tileColors[value]
	if !ok {
		bg = tcell.NewRGBColor(0x3c, 0x3a, 0x32)
	}
	fg := tcell.NewRGBColor(0xf9, 0xf6, 0xf2)
	if value <= 4 {
		fg = tcell.NewRGBColor(0x77, 0x6e, 0x65)
	}
	return tcell.StyleDefault.Background(bg).Foreground(fg).Bold(true)
}

// TileOrigin returns the top-left screen cell of the tile at row, col
func TileOrigin(row, col int) (x, y int) {
	return boardX + col*(tileWidth+gap) + gap, boardY + row*(tileHeight+gap) + gap
}

// Renderer draws game state onto a tcell screen
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a renderer for screen
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders a full frame: header, board, banner and key help
func (r *Renderer) Draw(state *engine.GameState) {
	r.screen.Clear()

	r.text(boardX, 0, styleDefault.Bold(true), fmt.Sprintf("2048   Score: %d   Max: %d", state.Score, state.MaxTile))

	r.fill(boardX, boardY, boardWidth, boardHeight, styleBoard)
	for row := 0; row < engine.BoardSize; row++ {
		for col := 0; col < engine.BoardSize; col++ {
			r.drawTile(row, col, state.Grid[row][col])
		}
	}

	below := boardY + boardHeight + 1
	switch state.Status {
	case engine.Won:
		r.text(boardX, below, styleWin, "You win! Press r to play again.")
	case engine.Lost:
		r.text(boardX, below, styleLost, "Game over! Press r to try again.")
	}
	r.text(boardX, below+1, styleDefault.Dim(true), helpLine)

	r.screen.Show()
}

func (r *Renderer) drawTile(row, col, value int) {
	x, y := TileOrigin(row, col)
	if value == 0 {
		r.fill(x, y, tileWidth, tileHeight, styleEmpty)
		return
	}

	style := tileStyle(value)
	r.fill(x, y, tileWidth, tileHeight, style)

	label := fmt.Sprint(value)
	if len(label) > tileWidth {
		label = label[:tileWidth]
	}
	r.text(x+(tileWidth-len(label))/2, y+tileHeight/2, style, label)
}

func (r *Renderer) fill(x, y, w, h int, style tcell.Style) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			r.screen.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}

func (r *Renderer) text(x, y int, style tcell.Style, s string) {
	for i, ch := range []rune(s) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}
