package lessons

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"linguaclash/internal/scoring"
)

//go:embed data/*.yaml
var bundled embed.FS

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrPartNotFound   = errors.New("lesson part not found")
)

// Catalog indexes every folder, episode and part by id.
type Catalog struct {
	folders []*Folder
	byID    map[string]*Folder
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the bundled lesson files. Broken
// bundled data is a build defect, so it panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bundled, "data")
		if err != nil {
			panic(fmt.Sprintf("linguaclash: load bundled lessons: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads every .yaml file in dir of fsys as one folder and validates it.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson directory: %w", err)
	}

	c := &Catalog{byID: make(map[string]*Folder)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var folder Folder
		if err := yaml.Unmarshal(data, &folder); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if err := validateFolder(&folder); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if _, dup := c.byID[folder.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate folder id %q", entry.Name(), folder.ID)
		}
		c.byID[folder.ID] = &folder
		c.folders = append(c.folders, &folder)
	}

	sort.Slice(c.folders, func(i, j int) bool {
		return c.folders[i].Order < c.folders[j].Order
	})
	return c, nil
}

func validateFolder(f *Folder) error {
	if f.ID == "" {
		return errors.New("folder id is required")
	}
	seenEpisodes := make(map[string]bool)
	for _, ep := range f.Episodes {
		if ep.ID == "" || seenEpisodes[ep.ID] {
			return fmt.Errorf("episode id %q is empty or repeated", ep.ID)
		}
		seenEpisodes[ep.ID] = true

		seenParts := make(map[string]bool)
		for _, part := range ep.Parts {
			if part.ID == "" || seenParts[part.ID] {
				return fmt.Errorf("%s: part id %q is empty or repeated", ep.ID, part.ID)
			}
			seenParts[part.ID] = true

			if len(part.Exercises) != scoring.ExercisesPerPart {
				return fmt.Errorf("%s/%s: has %d exercises, want %d", ep.ID, part.ID, len(part.Exercises), scoring.ExercisesPerPart)
			}
			for _, ex := range part.Exercises {
				// building a session runs every check the engine makes
				if _, err := scoring.NewSession(ex.Definition(), nil); err != nil {
					return fmt.Errorf("%s/%s/%s: %w", ep.ID, part.ID, ex.ID, err)
				}
				if err := checkAnswers(ex); err != nil {
					return fmt.Errorf("%s/%s/%s: %w", ep.ID, part.ID, ex.ID, err)
				}
			}
		}
	}
	return nil
}

// checkAnswers makes sure every answer can actually be picked.
func checkAnswers(ex Exercise) error {
	def := ex.Definition()
	mode := ex.Type.MatchMode()
	for _, it := range def.Items {
		choices := it.Options
		if ex.Type.UsesPool() && len(def.WordBank) > 0 {
			choices = def.WordBank
		}
		if len(choices) == 0 {
			continue
		}
		found := false
		for _, c := range choices {
			if mode.Equal(c, it.CorrectAnswer) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("item %s: answer %q is not among its choices", it.ID, it.CorrectAnswer)
		}
	}
	return nil
}

// Folders returns all folders in display order.
func (c *Catalog) Folders() []*Folder {
	return c.folders
}

// Folder looks up a folder by id.
func (c *Catalog) Folder(id string) (*Folder, error) {
	f, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	return f, nil
}

// Part looks up the part ref points at.
func (c *Catalog) Part(ref Ref) (*Part, error) {
	f, err := c.Folder(ref.Folder)
	if err != nil {
		return nil, err
	}
	for _, ep := range f.Episodes {
		if ep.ID != ref.Episode {
			continue
		}
		for _, p := range ep.Parts {
			if p.ID == ref.Part {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s/%s", ErrPartNotFound, ref.Folder, ref.Episode, ref.Part)
}

// Next returns the part after ref in the same folder, crossing episode
// boundaries. ok is false after the folder's last part.
func (c *Catalog) Next(ref Ref) (next Ref, ok bool, err error) {
	f, err := c.Folder(ref.Folder)
	if err != nil {
		return Ref{}, false, err
	}
	found := false
	for _, ep := range f.Episodes {
		for _, p := range ep.Parts {
			if found {
				return Ref{Folder: f.ID, Episode: ep.ID, Part: p.ID}, true, nil
			}
			if ep.ID == ref.Episode && p.ID == ref.Part {
				found = true
			}
		}
	}
	if !found {
		return Ref{}, false, fmt.Errorf("%w: %s/%s/%s", ErrPartNotFound, ref.Folder, ref.Episode, ref.Part)
	}
	return Ref{}, false, nil
}
