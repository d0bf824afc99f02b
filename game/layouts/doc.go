// Package layouts provides named starting positions for 2048 games.
//
// A layout is a JSON file in the layout directory:
//
//	{
//	  "name": "endgame",
//	  "description": "One merge away from 2048",
//	  "grid": [[1024, 1024, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0]],
//	  "score": 20000
//	}
//
// The file name without its extension is the layout ID used when creating a
// session. Zero marks an empty cell; an all-empty grid starts a regular game
// with two random tiles. The built-in "classic" layout is exactly that and is
// always available, even without a layout directory.
//
// Usage:
//
//	manager := layouts.NewManager("layouts")
//
//	l, err := manager.LoadLayout("endgame")
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng, err := engine.NewEngineFromLayout(l, nil)
package layouts
