package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-library/internal/database"
	"video-library/internal/startup"
	"video-library/internal/video"
	"video-library/internal/viewport"

	"github.com/spf13/cobra"
)

// viewFlags are the viewport parameters shared by view and groups. Unset
// flags keep the built-in defaults.
type viewFlags struct {
	sources       []string
	group         string
	groupProperty bool
	groupSorting  string
	groupReverse  bool
	noSingletons  bool
	classify      []string
	groupID       int
	search        string
	cond          string
	sort          []string
	naive         bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.sources, "source", "s", nil, "Comma-separated flags of one source tuple (repeatable)")
	flags.StringVarP(&f.group, "group", "g", "", "Field or property to group by")
	flags.BoolVar(&f.groupProperty, "group-property", false, "The group name is a property")
	flags.StringVar(&f.groupSorting, "group-sorting", string(viewport.GroupByField), "Group order: field, length or count")
	flags.BoolVar(&f.groupReverse, "group-reverse", false, "Reverse the group order")
	flags.BoolVar(&f.noSingletons, "no-singletons", false, "Drop groups holding a single video")
	flags.StringArrayVar(&f.classify, "classify", nil, "Classifier path value (repeatable)")
	flags.IntVar(&f.groupID, "group-id", 0, "Selected group")
	flags.StringVarP(&f.search, "search", "q", "", "Search text")
	flags.StringVar(&f.cond, "cond", "", "Search mode: exact, and, or or id")
	flags.StringArrayVar(&f.sort, "sort", nil, "Sort field with optional +/- prefix (repeatable)")
	flags.BoolVar(&f.naive, "naive-search", false, "Scan videos instead of using the term index")
}

// build creates a viewport over db configured from the flags.
func (f *viewFlags) build(cmd *cobra.Command, db *database.Database) (*viewport.Viewport, error) {
	var opts []viewport.Option
	if f.naive {
		opts = append(opts, viewport.WithNaiveSearch())
	}
	vp := viewport.New(db, opts...)
	if err := startup.DefaultViewportDefaults().Apply(vp); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if len(f.sources) > 0 {
		tuples := make([][]string, 0, len(f.sources))
		for _, s := range f.sources {
			tuples = append(tuples, strings.Split(s, ","))
		}
		sources, err := viewport.ParseSources(tuples)
		if err != nil {
			return nil, err
		}
		if err := vp.SetSources(sources); err != nil {
			return nil, err
		}
	}
	if f.group != "" {
		def := viewport.GroupDef{
			Field:           f.group,
			IsProperty:      f.groupProperty,
			Sorting:         viewport.GroupSorting(f.groupSorting),
			Reverse:         f.groupReverse,
			AllowSingletons: !f.noSingletons,
		}
		if err := vp.SetGroups(def); err != nil {
			return nil, err
		}
	}
	if len(f.classify) > 0 {
		path, err := classifierPath(db, vp.Groups(), f.classify)
		if err != nil {
			return nil, err
		}
		vp.SetClassifierPath(path)
	}
	if flags.Changed("group-id") {
		vp.SetGroup(f.groupID)
	}
	if f.search != "" || f.cond != "" {
		cond := f.cond
		if cond == "" {
			cond = string(vp.Search().Cond)
		}
		if err := vp.SetSearch(f.search, cond); err != nil {
			return nil, err
		}
	}
	if len(f.sort) > 0 {
		if err := vp.SetSort(f.sort); err != nil {
			return nil, err
		}
	}
	return vp, nil
}

func classifierPath(db *database.Database, def viewport.GroupDef, values []string) ([]video.Value, error) {
	pt, ok := db.PropType(def.Field)
	if !def.IsProperty || !ok || !pt.Multiple {
		return nil, fmt.Errorf("%w: --classify needs --group on a multiple property", viewport.ErrInvalidGroupDef)
	}
	path := make([]video.Value, 0, len(values))
	for _, s := range values {
		v, err := pt.Type.Convert(s)
		if err != nil {
			return nil, err
		}
		path = append(path, v)
	}
	return path, nil
}

func formatLength(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

func formatProperties(v *video.Video) string {
	names := make([]string, 0, len(v.Properties))
	for name := range v.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		values := make([]string, 0, len(v.Properties[name]))
		for _, value := range v.Properties[name] {
			values = append(values, video.FormatValue(value))
		}
		parts = append(parts, name+"="+strings.Join(values, ","))
	}
	return strings.Join(parts, " ")
}

func newViewCommand(ctx *commandContext) *cobra.Command {
	var (
		f     viewFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the videos of a viewport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				vp, err := f.build(cmd, db)
				if err != nil {
					return err
				}
				defer vp.Close()

				videos, err := vp.ViewVideos()
				if err != nil {
					return err
				}
				total := len(videos)
				if limit > 0 && limit < total {
					videos = videos[:limit]
				}

				out := cmd.OutOrStdout()
				if !ctx.tableOutput(cmd) {
					for _, v := range videos {
						fmt.Fprintln(out, v.ID)
					}
					return nil
				}

				rows := make([][]string, 0, len(videos))
				for i, v := range videos {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						strconv.Itoa(v.ID),
						v.DisplayTitle(),
						v.Date.Local().Format(dateLayout),
						formatLength(v.Duration),
						formatProperties(v),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "ID", "Title", "Date", "Length", "Properties"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				sourceCount, err := vp.SourceCount()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d of %d videos (sort %s, %s)\n",
					total, sourceCount, strings.Join(vp.Sorting().Tokens(), " "), vp.SortPolicy())
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most this many videos")
	return cmd
}

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	var f viewFlags
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Print the groups of a viewport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.group == "" {
				return fmt.Errorf("--group is required")
			}
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				vp, err := f.build(cmd, db)
				if err != nil {
					return err
				}
				defer vp.Close()

				groups, err := vp.GroupSummaries()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ctx.tableOutput(cmd) {
					for _, g := range groups {
						fmt.Fprintf(out, "%s\t%d\n", g.Label, g.Count)
					}
					return nil
				}

				selected := vp.GroupID()
				rows := make([][]string, 0, len(groups))
				for i, g := range groups {
					mark := ""
					if i == selected {
						mark = "*"
					}
					rows = append(rows, []string{mark, strconv.Itoa(i), g.Label, strconv.Itoa(g.Count)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"", "Group", "Value", "Videos"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newReindexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search term index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				start := time.Now()
				n, err := db.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d videos in %s\n", n, time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}
