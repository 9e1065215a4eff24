// Package catalog loads the built-in prompt decks.
package catalog

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/conorfennell/promptdeck/internal/domain"
)

//go:embed decks/*.yaml
var deckFiles embed.FS

const (
	Practice = "practice"
	Improv   = "improv"
)

// File is the on-disk shape of a deck catalog.
type File struct {
	Name          string        `yaml:"name" validate:"required"`
	AlwaysInclude string        `yaml:"always_include"`
	Suits         []domain.Suit `yaml:"suits" validate:"required,min=1,dive"`
	Cards         []domain.Card `yaml:"cards" validate:"dive"`
}

// Deck converts the file into a domain deck.
func (f File) Deck() domain.Deck {
	suits := make([]string, len(f.Suits))
	for i, s := range f.Suits {
		suits[i] = s.ID
	}
	return domain.Deck{
		Name:          f.Name,
		Suits:         suits,
		Cards:         f.Cards,
		AlwaysInclude: f.AlwaysInclude,
		SuitNames:     f.SuitNames(),
	}
}

// SuitNames maps suit ids to their display names.
func (f File) SuitNames() map[string]string {
	names := make(map[string]string, len(f.Suits))
	for _, s := range f.Suits {
		if s.Name != "" {
			names[s.ID] = s.Name
		}
	}
	return names
}

// Parse decodes and validates a catalog.
func Parse(r io.Reader) (File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return File{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := domain.Validate(f); err != nil {
		return File{}, fmt.Errorf("catalog %s: %w", f.Name, err)
	}
	if f.AlwaysInclude != "" && !f.Deck().HasSuit(f.AlwaysInclude) {
		return File{}, &domain.DeckError{Deck: f.Name, Reason: "always_include suit " + f.AlwaysInclude + " is not declared"}
	}
	if err := f.Deck().Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// ParseFile reads a catalog from the named file.
func ParseFile(name string) (File, error) {
	file, err := os.Open(name)
	if err != nil {
		return File{}, err
	}
	defer file.Close()

	return Parse(file)
}

// Builtin returns one of the embedded catalogs by name.
func Builtin(name string) (File, error) {
	file, err := deckFiles.Open(path.Join("decks", name+".yaml"))
	if err != nil {
		return File{}, fmt.Errorf("unknown catalog %q: %w", name, err)
	}
	defer file.Close()

	return Parse(file)
}

// Resolve loads the catalog file at path, or the embedded catalog name when
// path is empty. A catalog file without cards is rejected.
func Resolve(path, name string) (File, error) {
	if path == "" {
		return Builtin(name)
	}
	f, err := ParseFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	if len(f.Cards) == 0 {
		return File{}, &domain.DeckError{Deck: f.Name, Reason: "catalog " + path + " has no cards"}
	}
	return f, nil
}
