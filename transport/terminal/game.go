package terminal

import (
	"context"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/game2048/game/engine"
)

type action int

const (
	actionNone action = iota
	actionMove
	actionRestart
	actionQuit
)

var runeDirections = map[rune]engine.Direction{
	'h': engine.Left, 'a': engine.Left,
	'j': engine.Down, 's': engine.Down,
	'k': engine.Up, 'w': engine.Up,
	'l': engine.Right, 'd': engine.Right,
}

// keyAction maps a key press to what the game should do with it
func keyAction(ev *tcell.EventKey) (action, engine.Direction) {
	switch ev.Key() {
	case tcell.KeyUp:
		return actionMove, engine.Up
	case tcell.KeyDown:
		return actionMove, engine.Down
	case tcell.KeyLeft:
		return actionMove, engine.Left
	case tcell.KeyRight:
		return actionMove, engine.Right
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit, ""
	case tcell.KeyRune:
		ch := unicode.ToLower(ev.Rune())
		if dir, ok := runeDirections[ch]; ok {
			return actionMove, dir
		}
		switch ch {
		case 'r':
			return actionRestart, ""
		case 'q':
			return actionQuit, ""
		}
	}
	return actionNone, ""
}

// Game runs one engine against a terminal: keys in, frames and tones out
type Game struct {
	screen   tcell.Screen
	engine   engine.Engine
	sound    Sound
	renderer *Renderer
}

// NewGame creates a terminal game. The screen must already be initialized.
func NewGame(screen tcell.Screen, eng engine.Engine, sound Sound) *Game {
	if sound == nil {
		sound = Silent{}
	}
	return &Game{
		screen:   screen,
		engine:   eng,
		sound:    sound,
		renderer: NewRenderer(screen),
	}
}

// Run draws the board and processes input until the player quits, the
// screen is finalized or ctx is cancelled
func (g *Game) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	g.renderer.Draw(g.engine.GetState())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !g.handleEvent(ev) {
				return nil
			}
		}
	}
}

// handleEvent reports false when the game should stop
func (g *Game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		act, dir := keyAction(ev)
		switch act {
		case actionQuit:
			return false
		case actionMove:
			g.move(dir)
		case actionRestart:
			g.renderer.Draw(g.engine.Restart())
		}
	case *tcell.EventResize:
		g.screen.Sync()
		g.renderer.Draw(g.engine.GetState())
	}
	return true
}

func (g *Game) move(dir engine.Direction) {
	wasWon := g.engine.Status() == engine.Won

	out, err := g.engine.ApplyMove(dir)
	if err != nil {
		return
	}
	for _, m := range out.Merges {
		g.sound.Merge(m.Value)
	}

	state := g.engine.GetState()
	if !wasWon && state.Status == engine.Won {
		g.sound.Win()
	}
	g.renderer.Draw(state)
}
