package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/rxscan/internal/domain/substances"
	"github.com/bryanwahyu/rxscan/internal/infra/catalog"
)

func catalogCmd() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "catalog <csv>",
		Short: "Check a substance catalog file and print counts per risk category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := catalog.LoadCSV(args[0], catalog.Encoding(encoding))
			if err != nil {
				return err
			}
			counts := map[string]int{}
			keys := map[string]string{}
			dups := 0
			for _, it := range items {
				counts[it.Category]++
				k := substances.Key(it.Name)
				if prev, ok := keys[k]; ok {
					dups++
					fmt.Fprintf(cmd.ErrOrStderr(), "duplicate name %q (first seen as %q)\n", it.Name, prev)
					continue
				}
				keys[k] = it.Name
			}

			cats := make([]string, 0, len(counts))
			for c := range counts {
				cats = append(cats, c)
			}
			sort.Strings(cats)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tSUBSTANCES")
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%d\n", c, counts[c])
			}
			fmt.Fprintf(w, "total\t%d\n", len(items))
			if err := w.Flush(); err != nil {
				return err
			}
			if dups > 0 {
				return fmt.Errorf("%d duplicate names", dups)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", string(catalog.EncodingLatin1), "File encoding (latin-1 or utf-8)")
	return cmd
}
