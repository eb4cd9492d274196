package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/pkg/compile"
	"github.com/matzehuels/vlanimate/pkg/datasource"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/timeline"
)

// =============================================================================
// Scope Loading
// =============================================================================

// scopeTimeline is an animated scope with its rows and clock.
type scopeTimeline struct {
	Scope    *compile.Scope
	Rows     []timeline.Row
	Timeline *timeline.Timeline
}

// loadTimelines elaborates the chart at path and builds the timeline of each
// animated scope from the scope's data.
func (c *CLI) loadTimelines(ctx context.Context, path string, noCache bool) ([]scopeTimeline, error) {
	doc, err := readInput(path)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	s, err := runner.Elaborate(ctx, doc, c.pipelineOptions())
	if err != nil {
		return nil, err
	}
	scopes := compile.Scopes(s)
	if len(scopes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s has no time encoding", inputName(path))
	}

	prog := newProgress(c.Logger)
	loader := c.newLoader(runner, inputDir(path))
	out := make([]scopeTimeline, 0, len(scopes))
	for _, sc := range scopes {
		rows, err := scopeRows(ctx, loader, sc)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", scopeName(sc.ID), err)
		}
		tl, err := timeline.New(sc.Time, sc.Driver(), rows)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", scopeName(sc.ID), err)
		}
		out = append(out, scopeTimeline{Scope: sc, Rows: rows, Timeline: tl})
	}
	prog.done(fmt.Sprintf("Loaded %d scopes", len(out)))
	return out, nil
}

// scopeRows loads the data of the scope's first animated unit, falling back
// to the first unit with data.
func scopeRows(ctx context.Context, loader *datasource.Loader, sc *compile.Scope) ([]timeline.Row, error) {
	var pick *compile.UnitRef
	for _, u := range sc.Units {
		if len(u.Data) == 0 {
			continue
		}
		if len(u.Filters) > 0 {
			pick = u
			break
		}
		if pick == nil {
			pick = u
		}
	}
	if pick == nil {
		return nil, nil
	}
	return loader.Load(ctx, pick.Data)
}

func scopeName(id spec.ScopeID) string {
	if id == spec.Root {
		return "root"
	}
	return string(id)
}

// =============================================================================
// Preview Command
// =============================================================================

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "preview <spec.json|->",
		Short: "Tabulate each animated scope's keyframes and timing",
		Long: `Tabulate each animated scope's keyframes: when the clock reaches them,
how long they stay on screen including pauses, and how many rows they show.
Data is loaded from inline values, local files or URLs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopes, err := c.loadTimelines(cmd.Context(), args[0], noCache)
			if err != nil {
				return err
			}
			for i, st := range scopes {
				if i > 0 {
					fmt.Println()
				}
				printScope(st)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func printScope(st scopeTimeline) {
	tl := st.Timeline
	fmt.Println(StyleTitle.Render("Scope " + scopeName(st.Scope.ID)))
	printKeyValue("field", tl.Field)
	printKeyValue("scale", tl.Type)
	printKeyValue("duration", formatMillis(tl.Duration))
	printKeyValue("loop", strconv.FormatBool(tl.Loop))
	if d := st.Scope.Driver(); d != nil {
		printKeyValue("selection", d.Name)
	}

	fmt.Println(keyframeTable(tl, st.Rows).Render())

	s := timeline.Summarize(tl)
	printDetail("hold mean %s · σ %s · median %s · min %s · max %s",
		formatMillis(s.Mean), formatMillis(s.StdDev), formatMillis(s.Median),
		formatMillis(s.Min), formatMillis(s.Max))
}

// keyframeTable lists the keyframes of tl with their clock offset, hold
// time, pause and row count.
func keyframeTable(tl *timeline.Timeline, rows []timeline.Row) *table.Table {
	holds := tl.Holds()
	data := make([][]string, len(tl.Keyframes))
	for i, k := range tl.Keyframes {
		pause := "—"
		if p := tl.PauseFor(k); p > 0 {
			pause = formatMillis(p)
		}
		count := "—"
		if rows != nil {
			count = strconv.Itoa(len(timeline.Keyframe(rows, tl.Field, k)))
		}
		data[i] = []string{
			strconv.Itoa(i),
			fmt.Sprint(k),
			formatMillis(tl.Offset(i)),
			formatMillis(holds[i]),
			pause,
			count,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Value", "Offset", "Hold", "Pause", "Rows").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleNumber
			case col == 4 && data[row][col] != "—":
				return StyleWarning
			}
			return StyleValue
		})
}
