package startup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"video-library/internal/database"
	"video-library/internal/viewport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewport.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultViewportDefaults(t *testing.T) {
	d := DefaultViewportDefaults()

	if len(d.Sources) != 1 || !slices.Equal(d.Sources[0], []string{"readable"}) {
		t.Errorf("Sources = %v, want [[readable]]", d.Sources)
	}
	if !slices.Equal(d.Sort, []string{"-date"}) {
		t.Errorf("Sort = %v, want [-date]", d.Sort)
	}
	if d.Groups.Field != "" || !d.Groups.AllowSingletons {
		t.Errorf("Groups = %+v, want inactive with singletons allowed", d.Groups)
	}
}

func TestLoadViewportDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, d ViewportDefaults)
	}{
		{
			name: "full file",
			content: `
sources = [["readable"], ["unreadable", "found"]]
sort = ["+title", "-length"]
search_cond = "or"

[groups]
field = "tags"
is_property = true
sorting = "count"
reverse = true
allow_singletons = false
`,
			check: func(t *testing.T, d ViewportDefaults) {
				if len(d.Sources) != 2 || !slices.Equal(d.Sources[1], []string{"unreadable", "found"}) {
					t.Errorf("Sources = %v", d.Sources)
				}
				if !slices.Equal(d.Sort, []string{"+title", "-length"}) {
					t.Errorf("Sort = %v", d.Sort)
				}
				if d.SearchCond != "or" {
					t.Errorf("SearchCond = %q", d.SearchCond)
				}
				want := viewport.GroupDef{Field: "tags", IsProperty: true, Sorting: viewport.GroupByCount, Reverse: true}
				if d.Groups != want {
					t.Errorf("Groups = %+v, want %+v", d.Groups, want)
				}
			},
		},
		{
			name:    "partial file keeps built-in values",
			content: `search_cond = "exact"`,
			check: func(t *testing.T, d ViewportDefaults) {
				if !slices.Equal(d.Sort, []string{"-date"}) {
					t.Errorf("Sort = %v, want [-date]", d.Sort)
				}
				if d.SearchCond != "exact" {
					t.Errorf("SearchCond = %q", d.SearchCond)
				}
			},
		},
		{
			name:    "unknown flag",
			content: `sources = [["sideways"]]`,
			wantErr: true,
		},
		{
			name:    "duplicate sort field",
			content: `sort = ["title", "-title"]`,
			wantErr: true,
		},
		{
			name:    "unknown search condition",
			content: `search_cond = "xor"`,
			wantErr: true,
		},
		{
			name:    "malformed toml",
			content: `sort = [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := LoadViewportDefaults(writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadViewportDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestLoadViewportDefaults_MissingFile(t *testing.T) {
	_, err := LoadViewportDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestViewportDefaultsApply(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "videos.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	if err := db.CreatePropType(ctx, database.PropType{Name: "tags", Type: database.TypeString, Multiple: true}); err != nil {
		t.Fatalf("CreatePropType() error = %v", err)
	}

	d := DefaultViewportDefaults()
	d.Groups = viewport.GroupDef{Field: "tags", IsProperty: true, Sorting: viewport.GroupByCount}
	d.Sort = []string{"+title"}
	d.SearchCond = "or"

	vp := viewport.New(db)
	if err := d.Apply(vp); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if vp.Groups().Field != "tags" {
		t.Errorf("Groups().Field = %q, want tags", vp.Groups().Field)
	}
	if !slices.Equal(vp.Sorting().Tokens(), []string{"+title"}) {
		t.Errorf("Sorting() = %v", vp.Sorting().Tokens())
	}
	if vp.Search().Cond != "or" {
		t.Errorf("Search().Cond = %q", vp.Search().Cond)
	}

	d.Sort = []string{"-stars"}
	if err := d.Apply(viewport.New(db)); !errors.Is(err, viewport.ErrInvalidSorting) {
		t.Errorf("Apply() with unknown sort field error = %v, want ErrInvalidSorting", err)
	}
}
