package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"video-library/internal/database"
	"video-library/internal/video"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// videoInput is one entry of an `add --json` file.
type videoInput struct {
	Filename   string                   `json:"filename"`
	Title      string                   `json:"title"`
	FileSize   int64                    `json:"fileSize"`
	Date       time.Time                `json:"date"`
	Length     float64                  `json:"length"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Readable   *bool                    `json:"readable"`
	Found      *bool                    `json:"found"`
	Discarded  bool                     `json:"discarded"`
	Properties map[string][]video.Value `json:"properties"`
}

func (in videoInput) video() *video.Video {
	v := &video.Video{
		Filename:   in.Filename,
		Title:      in.Title,
		FileSize:   in.FileSize,
		Date:       in.Date,
		Duration:   in.Length,
		Width:      in.Width,
		Height:     in.Height,
		Readable:   in.Readable == nil || *in.Readable,
		Found:      in.Found == nil || *in.Found,
		Discarded:  in.Discarded,
		Properties: in.Properties,
	}
	if v.Properties == nil {
		v.Properties = make(map[string][]video.Value)
	}
	return v
}

func readVideoInputs(r io.Reader) ([]videoInput, error) {
	var inputs []videoInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return inputs, nil
}

// parseProps reads repeated name=value flags. Repeating a name adds values.
func parseProps(flags []string) (map[string][]video.Value, error) {
	props := make(map[string][]video.Value)
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid property %q (want name=value)", f)
		}
		props[name] = append(props[name], value)
	}
	return props, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonPath   string
		title      string
		date       string
		length     float64
		size       int64
		unreadable bool
		notFound   bool
		props      []string
	)

	cmd := &cobra.Command{
		Use:   "add [filename...]",
		Short: "Add videos to the library",
		Long: `Add videos by filename, applying the flags to each of them, or read a
JSON array of videos with --json (use - for stdin).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var videos []*video.Video
			switch {
			case jsonPath != "" && len(args) > 0:
				return fmt.Errorf("filenames and --json are mutually exclusive")
			case jsonPath != "":
				r := cmd.InOrStdin()
				if jsonPath != "-" {
					f, err := os.Open(jsonPath)
					if err != nil {
						return err
					}
					defer f.Close()
					r = f
				}
				inputs, err := readVideoInputs(r)
				if err != nil {
					return err
				}
				for _, in := range inputs {
					videos = append(videos, in.video())
				}
			case len(args) > 0:
				var when time.Time
				if date != "" {
					t, err := time.Parse(dateLayout, date)
					if err != nil {
						return fmt.Errorf("invalid date %q: %w", date, err)
					}
					when = t
				}
				for _, name := range args {
					properties, err := parseProps(props)
					if err != nil {
						return err
					}
					videos = append(videos, &video.Video{
						Filename:   name,
						Title:      title,
						FileSize:   size,
						Date:       when,
						Duration:   length,
						Readable:   !unreadable,
						Found:      !notFound,
						Properties: properties,
					})
				}
			default:
				return fmt.Errorf("no videos given")
			}

			return ctx.withDatabase(cmd, func(db *database.Database) error {
				if err := db.AddVideos(cmd.Context(), videos); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, v := range videos {
					fmt.Fprintf(out, "%d\t%s\n", v.ID, v.Filename)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "Read a JSON array of videos from this file")
	cmd.Flags().StringVar(&title, "title", "", "Embedded title")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default now)")
	cmd.Flags().Float64Var(&length, "length", 0, "Length in seconds")
	cmd.Flags().Int64Var(&size, "size", 0, "File size in bytes")
	cmd.Flags().BoolVar(&unreadable, "unreadable", false, "Mark the videos unreadable")
	cmd.Flags().BoolVar(&notFound, "not-found", false, "Mark the videos not found")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Property value as name=value (repeatable)")
	return cmd
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid video id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete videos from the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				for _, id := range ids {
					if err := db.DeleteVideo(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted video %d\n", id)
				}
				return nil
			})
		},
	}
}

func newPropCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prop",
		Short: "Manage video properties",
	}
	cmd.AddCommand(newPropCreateCommand(ctx))
	cmd.AddCommand(newPropListCommand(ctx))
	cmd.AddCommand(newPropSetCommand(ctx))
	return cmd
}

func newPropCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		typeName string
		multiple bool
		def      string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a property type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vt, err := database.ParseValueType(typeName)
			if err != nil {
				return err
			}
			pt := database.PropType{Name: args[0], Type: vt, Multiple: multiple}
			if cmd.Flags().Changed("default") {
				if multiple {
					return fmt.Errorf("multiple properties have no default")
				}
				if pt.Default, err = vt.Convert(def); err != nil {
					return err
				}
			}
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				if err := db.CreatePropType(cmd.Context(), pt); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created property %s\n", pt.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", string(database.TypeString), "Value type: str, int, float or bool")
	cmd.Flags().BoolVarP(&multiple, "multiple", "m", false, "Allow several values per video")
	cmd.Flags().StringVar(&def, "default", "", "Default value of a single-valued property")
	return cmd
}

func newPropListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List property types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				rows := [][]string{}
				for _, pt := range db.PropTypes() {
					def := ""
					if pt.Default != nil {
						def = video.FormatValue(pt.Default)
					}
					rows = append(rows, []string{pt.Name, string(pt.Type), strconv.FormatBool(pt.Multiple), def})
				}
				out := cmd.OutOrStdout()
				if !ctx.tableOutput(cmd) {
					for _, row := range rows {
						fmt.Fprintln(out, strings.Join(row, "\t"))
					}
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Type", "Multiple", "Default"}, rows, nil))
				return nil
			})
		},
	}
}

func newPropSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <name> [value...]",
		Short: "Replace the values of a property on a video",
		Long:  "Replace the values of a property on a video. Without values the property is cleared.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid video id %q", args[0])
			}
			values := make([]video.Value, 0, len(args)-2)
			for _, a := range args[2:] {
				values = append(values, a)
			}
			return ctx.withDatabase(cmd, func(db *database.Database) error {
				return db.SetProperty(cmd.Context(), id, args[1], values)
			})
		},
	}
}
