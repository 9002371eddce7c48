package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newCheckCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog file without touching the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			items, err := st.loadCatalog(out)
			if err != nil {
				return err
			}

			perCategory := make(map[string]int)
			noImage := 0
			for _, it := range items {
				perCategory[it.Category]++
				if it.Image == "" {
					noImage++
				}
			}
			categories := make([]string, 0, len(perCategory))
			for c := range perCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)
			for _, c := range categories {
				_, _ = fmt.Fprintf(out, "  %-20s %d\n", c, perCategory[c])
			}
			if noImage > 0 {
				_, _ = fmt.Fprintf(out, "%d products have no image and will get zero image and color vectors\n", noImage)
			}
			return nil
		},
	}
}
