package layouts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

var ErrLayoutNotFound = errors.New("layout not found")

// DefaultLayout names the built-in empty layout used for regular games
const DefaultLayout = "classic"

// Manager handles layout loading and caching. Files live in dir as
// <name>.json; the classic layout is always available.
type Manager struct {
	dir           string
	defaultLayout *engine.Layout
	layouts       map[string]*engine.Layout
	mu            sync.RWMutex
}

// NewManager creates a layout manager. A missing directory is not an error:
// only the built-in layouts are served then.
func NewManager(dir string) *Manager {
	classic := engine.EmptyLayout(DefaultLayout, "Empty board with two random tiles")
	return &Manager{
		dir:           dir,
		defaultLayout: classic,
		layouts:       map[string]*engine.Layout{DefaultLayout: classic},
	}
}

// LoadLayout loads a layout by name, from the cache when possible
func (m *Manager) LoadLayout(name string) (*engine.Layout, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if l, exists := m.layouts[name]; exists {
		m.mu.RUnlock()
		return l, nil
	}
	m.mu.RUnlock()

	if m.dir == "" || name == "" || strings.ContainsAny(name, `/\`) {
		return nil, ErrLayoutNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if l, exists := m.layouts[name]; exists {
		return l, nil
	}

	l, err := engine.LoadLayout(filepath.Join(m.dir, name+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to load layout %s: %w", name, err)
	}

	m.layouts[name] = l
	return l, nil
}

// ListLayouts returns information about the built-in layouts and every valid
// file in the layout directory, sorted by ID
func (m *Manager) ListLayouts() ([]*service.LayoutInfo, error) {
	ids := map[string]string{DefaultLayout: ""}

	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read layout directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			ids[strings.TrimSuffix(entry.Name(), ".json")] = entry.Name()
		}
	}

	infos := make([]*service.LayoutInfo, 0, len(ids))
	for id, filename := range ids {
		l, err := m.LoadLayout(id)
		if err != nil {
			// Skip invalid layouts
			continue
		}
		infos = append(infos, describe(id, filename, l))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].LayoutID < infos[j].LayoutID })
	return infos, nil
}

// GetDefault returns the default layout
func (m *Manager) GetDefault() *engine.Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLayout
}

// SetDefault sets the default layout by name
func (m *Manager) SetDefault(name string) error {
	l, err := m.LoadLayout(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLayout = l
	return nil
}

func describe(id, filename string, l *engine.Layout) *service.LayoutInfo {
	info := &service.LayoutInfo{
		Filename:    filename,
		LayoutID:    id,
		Name:        l.Name,
		Description: l.Description,
		Score:       l.Score,
	}
	for _, row := range l.Grid {
		for _, v := range row {
			if v == 0 {
				continue
			}
			info.Tiles++
			if v > info.MaxTile {
				info.MaxTile = v
			}
		}
	}
	return info
}
