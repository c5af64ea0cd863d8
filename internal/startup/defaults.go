package startup

import (
	"fmt"
	"os"

	"video-library/internal/viewport"

	"github.com/pelletier/go-toml/v2"
)

// ViewportDefaults are the parameters a new viewport session starts with.
//
//	sources = [["readable"]]
//	sort = ["-date"]
//	search_cond = "and"
//
//	[groups]
//	field = "tags"
//	is_property = true
//	sorting = "count"
type ViewportDefaults struct {
	Sources    [][]string        `toml:"sources"`
	Groups     viewport.GroupDef `toml:"groups"`
	Sort       []string          `toml:"sort"`
	SearchCond string            `toml:"search_cond"`
}

// DefaultViewportDefaults returns the built-in parameters.
func DefaultViewportDefaults() ViewportDefaults {
	return ViewportDefaults{
		Sources:    viewport.DefaultSources().Strings(),
		Groups:     viewport.GroupDef{Sorting: viewport.GroupByField, AllowSingletons: true},
		Sort:       viewport.DefaultSorting().Tokens(),
		SearchCond: "and",
	}
}

// LoadViewportDefaults reads a TOML file. Keys missing from the file keep
// their built-in value.
func LoadViewportDefaults(path string) (ViewportDefaults, error) {
	d := DefaultViewportDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := toml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := viewport.ParseSources(d.Sources); err != nil {
		return d, err
	}
	if _, err := viewport.ParseSorting(d.Sort); err != nil {
		return d, err
	}
	if _, err := viewport.NewSearchDef("", d.SearchCond); err != nil {
		return d, err
	}
	return d, nil
}

// Apply sets the defaults on vp. Group and sort fields are checked against
// the live database here, since properties can be created after startup.
func (d ViewportDefaults) Apply(vp *viewport.Viewport) error {
	sources, err := viewport.ParseSources(d.Sources)
	if err != nil {
		return err
	}
	if err := vp.SetSources(sources); err != nil {
		return err
	}
	if err := vp.SetGroups(d.Groups); err != nil {
		return err
	}
	if err := vp.SetSort(d.Sort); err != nil {
		return err
	}
	return vp.SetSearch("", d.SearchCond)
}
