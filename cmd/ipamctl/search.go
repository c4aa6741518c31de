package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ipamkit/internal/display"
	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

var (
	searchParents  string
	searchChildren string
	searchVRFs     []string
	searchPages    int
	searchExpand   []int64
	searchReveal   bool
	searchTopLevel bool
	searchExpandAll bool
)

func init() {
	cmd := newSearchCmd()
	cmd.Flags().StringVar(&searchParents, "parents", "", "Parent depth: none, immediate or all (default from config)")
	cmd.Flags().StringVar(&searchChildren, "children", "", "Child depth: none, immediate or all (default from config)")
	cmd.Flags().StringSliceVar(&searchVRFs, "vrf", nil, "Restrict to VRF id (repeatable, \"null\" for no VRF)")
	cmd.Flags().IntVar(&searchPages, "pages", 0, "Fetch up to N more pages (-1 = until the end of the result)")
	cmd.Flags().Int64SliceVar(&searchExpand, "expand", nil, "Expand prefix id after the search (repeatable)")
	cmd.Flags().BoolVar(&searchReveal, "reveal", false, "Show hidden non-matching prefixes")
	cmd.Flags().BoolVar(&searchTopLevel, "top-level", false, "List top-level prefixes when the query is empty")
	cmd.Flags().BoolVar(&searchExpandAll, "expand-all", false, "Open every prefix whose children are loaded, collapsed types included")
	rootCmd.AddCommand(cmd)
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search prefixes and print them as a tree",
		Long: `The search command runs a smart search for prefixes and prints the
matches together with their parents. Runs of non-matching prefixes are
collapsed into a single line unless --reveal is given.

Example:
  ipamctl search 10.0.0.0/8
  ipamctl search "#core" --children immediate
  ipamctl search --top-level --pages -1
  ipamctl search customer --vrf 3 --expand 1042
  ipamctl search 10.0.0.0/8 --children all --expand-all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args)
		},
	}
	return cmd
}

// SearchOutput is the JSON form of a search.
type SearchOutput struct {
	Query       string      `json:"query"`
	QueryID     int64       `json:"query_id"`
	Results     int         `json:"results"`
	EndOfResult bool        `json:"end_of_result"`
	QueryTime   float64     `json:"query_time_seconds"`
	Rows        []OutputRow `json:"rows"`
}

// OutputRow is one flattened display row.
type OutputRow struct {
	Kind        string `json:"kind"`
	VRF         int64  `json:"vrf"`
	Title       string `json:"title,omitempty"`
	ID          int64  `json:"id,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Type        string `json:"type,omitempty"`
	Indent      int    `json:"indent"`
	Match       bool   `json:"match,omitempty"`
	Expanded    bool   `json:"expanded,omitempty"`
	Description string `json:"description,omitempty"`
	Hidden      int    `json:"hidden,omitempty"`
}

func runSearch(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" && !searchTopLevel {
		return errors.New("empty query (use --top-level to list top-level prefixes)")
	}

	cfg, client, err := setup()
	if err != nil {
		return err
	}

	f := cfg.Search.Filters()
	if f.ParentsDepth, err = depthFlag(searchParents, f.ParentsDepth); err != nil {
		return fmt.Errorf("--parents: %w", err)
	}
	if f.ChildrenDepth, err = depthFlag(searchChildren, f.ChildrenDepth); err != nil {
		return fmt.Errorf("--children: %w", err)
	}
	f.Groups = searchVRFs
	f.TopLevel = searchTopLevel
	f.Explicit = true

	view := memview.New()
	ctrl := preftree.NewController(view, cfg.Search.Options())

	printVerbose("Searching %s for %q\n", client.BaseURL(), query)
	if err := ctrl.Do(ctx, client, ctrl.Search(query, f)); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printInterpretation(ctrl.Meta())
	printVerbose("Query took %.3f seconds\n", ctrl.Stats().QueryTime.Seconds())

	for i := 0; searchPages < 0 || i < searchPages; i++ {
		q := ctrl.NextPage()
		if q == nil {
			break
		}
		printVerbose("Fetching next page at offset %d\n", q.Offset)
		err := ctrl.Do(ctx, client, q)
		if errors.Is(err, preftree.ErrEmptyUpdate) {
			break
		}
		if err != nil {
			return fmt.Errorf("next page failed: %w", err)
		}
	}

	for _, id := range searchExpand {
		if ctrl.State(preftree.NodeID(id)) == preftree.Expanded {
			continue
		}
		q, err := ctrl.Toggle(preftree.NodeID(id))
		if err != nil {
			return fmt.Errorf("expand %d: %w", id, err)
		}
		if q == nil {
			continue
		}
		printVerbose("Loading children of %d\n", id)
		if err := ctrl.Do(ctx, client, q); err != nil && !errors.Is(err, preftree.ErrEmptyUpdate) {
			return fmt.Errorf("expand %d: %w", id, err)
		}
	}

	if err := ctrl.FillGroups(ctx, client); err != nil {
		printVerbose("Some VRF names could not be loaded: %v\n", err)
	}
	if searchExpandAll {
		view.ExpandAll()
	}
	if searchReveal {
		view.RevealAll()
	}

	rows := view.Rows()
	if jsonOut {
		return printJSON(searchOutput(query, ctrl, rows))
	}

	printInfo("%s", display.Text(rows, ctrl.State))
	if !ctrl.EndOfResult() {
		printInfo("\n(more results available, use --pages to fetch them)\n")
	}
	return nil
}

func depthFlag(s string, def preftree.Depth) (preftree.Depth, error) {
	if s == "" {
		return def, nil
	}
	return preftree.ParseDepth(s)
}

func printInterpretation(meta any) {
	q, ok := meta.(*nipap.QueryPart)
	if !ok || q == nil {
		return
	}
	printVerbose("Interpretation:\n")
	for _, term := range q.Describe() {
		mark := ""
		if term.Error {
			mark = " (error)"
		}
		printVerbose("  %s%s%s\n", display.Indent(term.Depth), term.Text, mark)
	}
}

func searchOutput(query string, ctrl *preftree.Controller, rows []memview.Row) SearchOutput {
	stats := ctrl.Stats()
	out := SearchOutput{
		Query:       query,
		QueryID:     stats.QueryID,
		Results:     stats.TotalNodes,
		EndOfResult: ctrl.EndOfResult(),
		QueryTime:   stats.QueryTime.Seconds(),
		Rows:        make([]OutputRow, 0, len(rows)),
	}
	for _, r := range rows {
		row := OutputRow{VRF: int64(r.Group), Indent: r.Indent}
		switch r.Kind {
		case memview.RowGroup:
			row.Kind = "vrf"
			row.Title = display.GroupTitle(r.Info)
			row.Description = r.Info.Detail
		case memview.RowHidden:
			row.Kind = "hidden"
			row.ID = int64(r.HiddenID)
			row.Hidden = r.HiddenCount
		case memview.RowEmpty:
			row.Kind = "empty"
			row.Title = memview.EmptyText
		default:
			n := r.Node
			row.Kind = "prefix"
			row.ID = int64(n.ID)
			row.Prefix = n.Label
			row.Type = n.Type
			row.Match = n.Match
			row.Expanded = ctrl.State(n.ID) == preftree.Expanded
			if p, ok := n.Data.(*nipap.Prefix); ok {
				row.Description = p.Description
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
