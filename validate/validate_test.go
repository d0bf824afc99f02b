package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLayout(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateLayout(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		body  string
		valid bool
		msg   string
	}{
		{
			name:  "playable layout",
			file:  "corner",
			body:  `{"name":"corner","grid":[[2,2,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,4]],"score":0}`,
			valid: true,
			msg:   "Possible moves: up, down, left, right",
		},
		{
			name:  "empty grid",
			file:  "blank",
			body:  `{"name":"blank","grid":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
			valid: true,
			msg:   "two random tiles",
		},
		{
			name: "invalid JSON",
			file: "broken",
			body: `{"name": "broken", "grid": [`,
			msg:  "invalid layout",
		},
		{
			name: "wrong shape",
			file: "short",
			body: `{"name":"short","grid":[[2,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
			msg:  "grid has 3 rows",
		},
		{
			name: "not a tile",
			file: "three",
			body: `{"name":"three","grid":[[3,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
			msg:  "is not a tile",
		},
		{
			name: "name mismatch",
			file: "alpha",
			body: `{"name":"beta","grid":[[2,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
			msg:  `does not match file name "alpha"`,
		},
		{
			name: "already won",
			file: "done",
			body: `{"name":"done","grid":[[2048,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
			msg:  "already contains a 2048 tile",
		},
		{
			name: "locked",
			file: "locked",
			body: `{"name":"locked","grid":[[2,4,2,4],[4,2,4,2],[2,4,2,4],[4,2,4,2]]}`,
			msg:  "locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateLayout(writeLayout(t, tt.file, tt.body))

			assert.Equal(t, tt.file+".json", result.File)
			assert.Equal(t, tt.valid, result.Valid, result.Errors)
			assert.True(t, hasMessage(result, tt.msg), "expected %q in %v", tt.msg, result.Errors)
		})
	}
}

func TestValidateLayout_MissingFile(t *testing.T) {
	result := validateLayout(filepath.Join(t.TempDir(), "nope.json"))

	assert.False(t, result.Valid)
	assert.True(t, hasMessage(result, "Failed to read file"))
}

func TestValidateLayout_ShippedLayouts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "layouts", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		result := validateLayout(file)
		assert.True(t, result.Valid, "%s: %v", result.File, result.Errors)
	}
}
