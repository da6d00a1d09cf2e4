// Package geo decides geographic compatibility between search queries. A
// curated gazetteer of place names is expanded with inflected surface forms
// and aliases; extraction runs through a pluggable location recognizer with
// a longest-match-first pattern matcher as the degraded fallback.
package geo

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	errorutil "github.com/projectdiscovery/utils/errors"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// Gazetteer indexes every known surface form of every curated place name
// back to its canonical (lowercase, nominative) name.
type Gazetteer struct {
	forms map[string]string // surface form -> canonical name
}

// NewGazetteer expands the curated place lists with inf and merges the
// alias table. places maps a region label to its place names; aliases maps
// informal short forms (спб, мск) to the full written name. Aliases are
// indexed as-is, never inflected.
func NewGazetteer(places map[string][]string, aliases map[string]string, inf Inflector) *Gazetteer {
	g := &Gazetteer{forms: make(map[string]string)}
	for _, names := range places {
		for _, name := range sliceutil.Dedupe(names) {
			canonical := strings.ToLower(strings.TrimSpace(name))
			if canonical == "" {
				continue
			}
			g.forms[canonical] = canonical
			if inf == nil {
				continue
			}
			for _, form := range inf.Inflect(canonical) {
				g.forms[form] = canonical
			}
		}
	}
	for short, full := range aliases {
		short = strings.ToLower(strings.TrimSpace(short))
		canonical := strings.ToLower(strings.TrimSpace(full))
		if short == "" || canonical == "" {
			continue
		}
		g.forms[short] = canonical
		// make sure the full written name resolves even when it was not
		// part of any curated list
		if _, ok := g.forms[canonical]; !ok {
			g.forms[canonical] = canonical
			if inf != nil {
				for _, form := range inf.Inflect(canonical) {
					g.forms[form] = canonical
				}
			}
		}
	}
	return g
}

// Canonical resolves any known surface form to its canonical place name.
func (g *Gazetteer) Canonical(form string) (string, bool) {
	c, ok := g.forms[strings.ToLower(strings.TrimSpace(form))]
	return c, ok
}

// Size returns the number of indexed surface forms.
func (g *Gazetteer) Size() int {
	return len(g.forms)
}

// File is the on-disk YAML shape of a gazetteer.
type File struct {
	Places  map[string][]string `yaml:"places"`
	Aliases map[string]string   `yaml:"aliases"`
}

// LoadFile reads a gazetteer YAML file.
func LoadFile(path string) (*File, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(bin, &f); err != nil {
		return nil, errorutil.NewWithTag("geo", "failed to parse gazetteer %v got %v", path, err)
	}
	return &f, nil
}
