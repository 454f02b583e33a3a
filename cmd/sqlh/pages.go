package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sqlh/sqlh"
)

type pagesOptions struct {
	items     int
	limit     int
	page      int
	unlimited bool
}

func newPagesCmd() *cobra.Command {
	var opts pagesOptions

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Compute page count and offsets",
		Long:  `Compute the number of pages and the OFFSET of each page for a LIMIT/OFFSET query.`,
		Example: `  # Offsets of every page
  sqlh pages --items 45 --limit 20

  # Offset of a single page
  sqlh pages --items 45 --limit 20 --page 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPages(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.items, "items", 0, "total number of items")
	f.IntVar(&opts.limit, "limit", 20, "items per page")
	f.IntVar(&opts.page, "page", 0, "only print this page")
	f.BoolVar(&opts.unlimited, "unlimited", false, "put every item on a single page")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func runPages(out io.Writer, opts pagesOptions) error {
	if opts.items < 0 {
		return errors.New("--items must not be negative")
	}

	limit := opts.limit
	if opts.unlimited {
		limit = sqlh.Unlimited
	} else if limit <= 0 {
		return errors.New("--limit must be positive; use --unlimited for a single page")
	}

	pagination := sqlh.NewPagination(opts.page, opts.items, limit)
	count := pagination.PageCount()

	if pagination.IsUnlimited() {
		fmt.Fprintf(out, "Items:  %d\nLimit:  unlimited\nPages:  %d\n", opts.items, count)
	} else {
		fmt.Fprintf(out, "Items:  %d\nLimit:  %d\nPages:  %d\n", opts.items, limit, count)
	}

	if opts.page > 0 {
		if opts.page > count {
			return fmt.Errorf("page %d out of range (1-%d)", opts.page, count)
		}
		fmt.Fprintf(out, "Page %d: offset %d\n", opts.page, pagination.Offset())
		return nil
	}

	for page := 1; page <= count; page++ {
		fmt.Fprintf(out, "Page %d: offset %d\n", page, pagination.OffsetForPage(page))
	}
	return nil
}
