package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/placeholder"
)

// NewTagsCmd lists the placeholders of a template.
func NewTagsCmd(o *opts.RootOpts) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "tags <template>",
		Short: "List the placeholder tags of a template in form order",
		Long: `Tags scans a template (a .docx path or a registry id) and prints its
distinct placeholder names in the order the fill form presents them.
With --verbose every occurrence is listed with its location.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTemplate(cmd.Context(), o, args[0])
			if err != nil {
				return err
			}

			if verbose {
				var rows [][]string
				for _, occ := range placeholder.ScanOccurrences(t.doc) {
					rows = append(rows, []string{occ.Name, occ.Hint, occ.Part, strconv.Itoa(occ.Paragraph), cellLabel(occ.Cell)})
				}
				return o.User.Table([]string{"Tag", "Hint", "Part", "Paragraph", "Cell"}, rows)
			}

			names := schemaFor(o, t.doc).Names()
			if len(names) == 0 {
				o.User.Warn("%s has no placeholders", t.doc.Name())
				return nil
			}
			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{strconv.Itoa(i + 1), name}
			}
			return o.User.Table([]string{"#", "Tag"}, rows)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every occurrence with its location")
	return cmd
}

// cellLabel renders a table location as "table 1, row 2, cell 3", one based.
func cellLabel(c *docx.CellLocation) string {
	if c == nil {
		return ""
	}
	label := fmt.Sprintf("table %d, row %d, cell %d", c.Table+1, c.Row+1, c.Cell+1)
	if c.Depth > 0 {
		label += fmt.Sprintf(" (nested %d)", c.Depth)
	}
	return label
}
