package catalogue

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

//go:embed rooms.txt
var bundledRooms []byte

// Catalogue is the fixed set of rooms known to the process. It is built once
// and is safe for concurrent reads.
type Catalogue struct {
	rooms  []model.Room
	byName map[string]int
}

// New builds a catalogue from already parsed rooms. Duplicate names keep the
// first occurrence.
func New(rooms ...model.Room) *Catalogue {
	sorted := make([]model.Room, 0, len(rooms))
	seen := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		if _, dup := seen[r.Name]; dup {
			continue
		}
		seen[r.Name] = struct{}{}
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	byName := make(map[string]int, len(sorted))
	for i, r := range sorted {
		byName[r.Name] = i
	}
	return &Catalogue{rooms: sorted, byName: byName}
}

// Empty returns a catalogue without rooms.
func Empty() *Catalogue {
	return New()
}

// Load reads the catalogue at path. When the file does not exist the bundled
// rooms are used instead. A malformed file yields a MalformedError.
func Load(path string, log *logger.Logger) (*Catalogue, error) {
	return load(path, bundledRooms, log)
}

func load(path string, fallback []byte, log *logger.Logger) (*Catalogue, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		rooms, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("rooms file %s: %w", path, err)
		}
		log.Info("Loaded rooms file", "path", path, "rooms", len(rooms))
		return New(rooms...), nil

	case errors.Is(err, fs.ErrNotExist):
		if len(fallback) == 0 {
			log.Warn("No rooms file found, starting with an empty catalogue", "path", path)
			return Empty(), nil
		}
		rooms, err := ParseBytes(fallback)
		if err != nil {
			return nil, fmt.Errorf("bundled rooms: %w", err)
		}
		log.Info("Rooms file not found, using bundled rooms", "path", path, "rooms", len(rooms))
		return New(rooms...), nil

	default:
		return nil, fmt.Errorf("failed to open rooms file %s: %w", path, err)
	}
}

func (c *Catalogue) Get(name string) (model.Room, bool) {
	i, ok := c.byName[name]
	if !ok {
		return model.Room{}, false
	}
	return c.rooms[i], true
}

func (c *Catalogue) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// All returns the rooms ordered by name ascending.
func (c *Catalogue) All() []model.Room {
	out := make([]model.Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

func (c *Catalogue) Names() []string {
	names := make([]string, len(c.rooms))
	for i, r := range c.rooms {
		names[i] = r.Name
	}
	return names
}

func (c *Catalogue) Len() int {
	return len(c.rooms)
}
