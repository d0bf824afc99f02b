// Command validate checks the starting layout JSON files in the ../layouts
// directory (or the directory given as the first argument). It checks:
//   - JSON structure, the 4x4 grid shape and that every cell is empty or a tile
//   - A non-negative score
//   - That the name matches the file name sessions will refer to it by
//   - That the position is still in play: not already won and not locked
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/game2048/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateLayout loads and validates a single layout file
func validateLayout(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	layout, err := engine.LoadLayout(filePath)
	switch {
	case errors.Is(err, engine.ErrInvalidLayout):
		result.fail("%v", err)
		return result
	case err != nil:
		result.fail("Failed to read file: %v", err)
		return result
	}

	if id := strings.TrimSuffix(result.File, ".json"); layout.Name != id {
		result.fail("Name %q does not match file name %q", layout.Name, id)
	}

	if layout.IsEmpty() {
		result.info("Empty grid: two random tiles at start")
		return result
	}

	checkPlayable(&result, layout)
	return result
}

// checkPlayable rejects layouts whose game is already decided
func checkPlayable(result *ValidationResult, layout *engine.Layout) {
	board, err := layout.Board()
	if err != nil {
		result.fail("%v", err)
		return
	}

	switch engine.StatusOf(board) {
	case engine.Won:
		result.fail("Layout already contains a %d tile", engine.WinValue)
		return
	case engine.Lost:
		result.fail("Layout is locked: no move changes the board")
		return
	}

	var moves []string
	for _, dir := range engine.Directions {
		if board.CanSlide(dir) {
			moves = append(moves, string(dir))
		}
	}
	result.info("%d tiles, max %d, score %d", board.Len(), board.MaxTile(), layout.Score)
	result.info("Possible moves: %s", strings.Join(moves, ", "))
}

// main validates every *.json file in the layout directory, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	layoutDir := "../layouts"
	if len(os.Args) > 1 {
		layoutDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(layoutDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding layout files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No layout files found in %s\n", layoutDir)
		return
	}

	allValid := true
	for _, file := range files {
		result := validateLayout(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All layouts are valid!")
	} else {
		fmt.Println("❌ Some layouts have errors")
		os.Exit(1)
	}
}
