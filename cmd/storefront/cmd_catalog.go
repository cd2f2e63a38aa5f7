package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/internal/catalog"
)

func priceHelp() string {
	var b strings.Builder
	for _, p := range catalog.PriceBuckets {
		fmt.Fprintf(&b, "  %-10s %s\n", p, p.Label())
	}
	return b.String()
}

func sortHelp() string {
	keys := make([]string, 0, len(catalog.SortKeys))
	for _, k := range catalog.SortKeys {
		if k == catalog.SortDefault {
			keys = append(keys, "default")
			continue
		}
		keys = append(keys, string(k))
	}
	return strings.Join(keys, ", ")
}

func (c *cli) productsCmd() *cobra.Command {
	var (
		search   string
		category string
		price    string
		sort     string
		rating   int
		page     int
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Long: "List products. Without any filter the curated top products are shown.\n\n" +
			"Price ranges:\n" + priceHelp() + "\nSort keys: " + sortHelp(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			v, err := a.CatalogView()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("search") {
				v.SetSearch(search)
			}
			if flags.Changed("category") {
				v.SetCategory(category)
			}
			if flags.Changed("price") {
				b, err := catalog.ParsePriceBucket(price)
				if err != nil {
					return err
				}
				if err := v.SetPriceBucket(b); err != nil {
					return err
				}
			}
			if flags.Changed("rating") {
				if err := v.SetMinRating(rating); err != nil {
					return err
				}
			}
			if flags.Changed("sort") {
				k, err := catalog.ParseSortKey(sort)
				if err != nil {
					return err
				}
				if err := v.SetSort(k); err != nil {
					return err
				}
			}
			// Filters reset the page, so it goes last.
			if flags.Changed("page") {
				if err := v.SetPage(page); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			v.Start(ctx)
			defer v.Close()

			vm, err := v.Await(ctx)
			if err != nil {
				return err
			}
			if vm.Err != nil {
				return vm.Err
			}
			renderListing(cmd, vm)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&search, "search", "s", "", "Search text")
	f.StringVarP(&category, "category", "c", catalog.CategoryAll, "Category id")
	f.StringVarP(&price, "price", "p", string(catalog.PriceAll), "Price range")
	f.StringVar(&sort, "sort", "default", "Sort key")
	f.IntVarP(&rating, "rating", "r", 0, "Minimum rating (0-4)")
	f.IntVar(&page, "page", 1, "Page number")
	return cmd
}

func renderListing(cmd *cobra.Command, vm catalog.ViewModel) {
	w := cmd.OutOrStdout()
	if vm.Status == catalog.StatusEmpty {
		printf(w, "No products found.\n")
		return
	}
	if !vm.IsFiltered {
		printf(w, "%s\n", titleStyle.Render("Top products"))
	}
	rows := make([][]string, 0, len(vm.Items))
	for _, it := range vm.Items {
		p := it.Product
		rows = append(rows, []string{
			p.ID,
			p.Title(),
			money(p.Price),
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.Itoa(p.Stock),
			it.ImageURL,
		})
	}
	renderTable(w, []string{"ID", "Name", "Price", "Rating", "Stock", "Image"}, rows)
	if vm.IsFiltered {
		printf(w, "%s\n", mutedStyle.Render(fmt.Sprintf("Page %d of %d, %d products", vm.Page, vm.TotalPages, vm.TotalCount)))
	}
}

func (c *cli) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.Shop.Product(ctx, args[0])
			if err != nil {
				return err
			}
			reviews := a.Shop.Reviews(ctx, p.ID)

			w := cmd.OutOrStdout()
			printf(w, "%s\n", titleStyle.Render(p.Title()))
			printf(w, "Price:    %s\n", money(p.Price))
			printf(w, "Rating:   %.1f (%d reviews)\n", p.Rating, p.Reviews)
			printf(w, "Stock:    %d\n", p.Stock)
			printf(w, "Category: %s\n", orDash(p.Category.Name))
			printf(w, "Image:    %s\n", a.Images.Resolve(p.ImageRef()))
			if p.Description != "" {
				printf(w, "\n%s\n", p.Description)
			}
			if len(reviews) == 0 {
				printf(w, "\n%s\n", mutedStyle.Render("No reviews yet."))
				return nil
			}
			rows := make([][]string, 0, len(reviews))
			for _, r := range reviews {
				rows = append(rows, []string{orDash(r.UserName), strconv.Itoa(r.Rating), r.Comment, when(r.CreatedAt)})
			}
			printf(w, "\n")
			renderTable(w, []string{"By", "Rating", "Comment", "Date"}, rows)
			return nil
		},
	}
}

func (c *cli) reviewCmd() *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "review <product-id>",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			reviews, err := a.Shop.AddReview(cmd.Context(), args[0], rating, comment)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Review posted. The product now has %d reviews.\n", len(reviews))
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 5, "Rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Review text")
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			categories, err := a.Shop.Categories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				rows = append(rows, []string{cat.ID, cat.Name, orDash(cat.Slug)})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Slug"}, rows)
			return nil
		},
	}
}

func (c *cli) imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <ref>",
		Short: "Resolve an image reference to a URL",
		Long: "Resolve an image reference to a URL. The reference may be a path, a URL,\n" +
			"or a JSON array of either, possibly nested once inside a string.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", a.Images.ResolveString(args[0]))
			return nil
		},
	}
}
