package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/internal/admin"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console (requires an admin session)",
	}
	cmd.AddCommand(
		c.adminDashboardCmd(),
		c.adminReportsCmd(),
		c.adminProductsCmd(),
		c.adminCategoriesCmd(),
		c.adminStockCmd(),
		c.adminOrdersCmd(),
		c.adminStatusCmd(),
		c.adminApproveReturnCmd(),
		c.adminUsersCmd(),
		c.adminBlockCmd(),
	)
	return cmd
}

func (c *cli) adminDashboardCmd() *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d, err := a.Admin.LoadDashboard(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := d.Summary
			renderTable(w, []string{"Users", "Orders", "Products", "Revenue", "Pending", "Delivered"}, [][]string{{
				strconv.Itoa(s.TotalUsers),
				strconv.Itoa(s.TotalOrders),
				strconv.Itoa(s.TotalProducts),
				money(s.TotalRevenue),
				strconv.Itoa(s.PendingOrders),
				strconv.Itoa(s.Delivered),
			}})

			monthly := make([][]string, 0, len(d.MonthlyRevenue))
			for _, m := range d.MonthlyRevenue {
				monthly = append(monthly, []string{m.Month, money(m.Revenue)})
			}
			renderTable(w, []string{"Month", "Revenue"}, monthly)

			top := make([][]string, 0, len(d.TopProducts))
			for _, p := range d.TopProducts {
				top = append(top, []string{p.Name, orDash(p.Brand), strconv.Itoa(p.Sold), money(p.Revenue)})
			}
			renderTable(w, []string{"Top product", "Brand", "Sold", "Revenue"}, top)

			renderOrders(w, d.RecentOrders)

			if xlsx == "" {
				return nil
			}
			r, err := a.Admin.LoadReports(ctx)
			if err != nil {
				return err
			}
			if err := writeWorkbook(xlsx, d, r); err != nil {
				return err
			}
			printf(w, "Saved %s\n", xlsx)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also export the dashboard and reports to this Excel file")
	return cmd
}

func writeWorkbook(path string, d *admin.Dashboard, r *admin.Reports) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create workbook")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close workbook")
		}
	}()
	return admin.ExportXLSX(f, d, r)
}

func (c *cli) adminReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "Show sales reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			r, err := a.Admin.LoadReports(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			sales := make([][]string, 0, len(r.SalesByCategory))
			for _, s := range r.SalesByCategory {
				sales = append(sales, []string{s.Category, money(s.Sales), strconv.Itoa(s.Quantity)})
			}
			renderTable(w, []string{"Category", "Sales", "Units"}, sales)

			statuses := make([][]string, 0, len(r.StatusCounts))
			for _, s := range r.StatusCounts {
				statuses = append(statuses, []string{string(s.Status), strconv.Itoa(s.Count)})
			}
			renderTable(w, []string{"Status", "Orders"}, statuses)

			top := make([][]string, 0, len(r.TopProducts))
			for _, p := range r.TopProducts {
				top = append(top, []string{p.Name, strconv.Itoa(p.Sold), money(p.Revenue)})
			}
			renderTable(w, []string{"Top product", "Sold", "Revenue"}, top)
			return nil
		},
	}
}

func (c *cli) adminProductsCmd() *cobra.Command {
	var page, rows int
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products with stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			// The flag is 1-based like the storefront listing.
			p, err := a.Admin.Products(cmd.Context(), page-1, rows)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			renderProducts(w, p.Products, "No products.")
			printf(w, "%s\n", mutedStyle.Render(strconv.Itoa(p.Total)+" products"))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&rows, "rows", 10, "Rows per page")
	cmd.AddCommand(
		c.adminProductAddCmd(),
		c.adminProductEditCmd(),
		c.adminProductDeleteCmd(),
		c.adminProductCategoryCmd(),
	)
	return cmd
}

// productFlags binds the product form to flags.
type productFlags struct {
	name, price, category, description, image string
	stock                                     int
}

func (f *productFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Product name")
	fs.StringVar(&f.price, "price", "", "Retail price")
	fs.IntVar(&f.stock, "stock", 0, "Units in stock")
	fs.StringVar(&f.category, "category", "", "Category ID")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.image, "image", "", "Path of an image file to upload")
}

// apply overrides in with the flags set on cmd.
func (f *productFlags) apply(cmd *cobra.Command, in *product.ProductInput) error {
	fs := cmd.Flags()
	if fs.Changed("name") {
		in.Name = f.name
	}
	if fs.Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return errors.Wrapf(err, "price %q", f.price)
		}
		in.Price = price
	}
	if fs.Changed("stock") {
		in.Stock = f.stock
	}
	if fs.Changed("category") {
		in.CategoryID = f.category
	}
	if fs.Changed("description") {
		in.Description = f.description
	}
	if f.image != "" {
		data, err := os.ReadFile(f.image)
		if err != nil {
			return errors.Wrap(err, "read image")
		}
		in.Image, in.ImageName = data, filepath.Base(f.image)
	}
	return nil
}

func (c *cli) adminProductAddCmd() *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in product.ProductInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			a, err := c.app()
			if err != nil {
				return err
			}
			p, err := a.Admin.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Created product %s.\n", orDash(p.ID))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) adminProductEditCmd() *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "edit <product-id>",
		Short: "Edit a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cur, err := a.Shop.Product(ctx, args[0])
			if err != nil {
				return err
			}
			in := product.ProductInput{
				Name:        cur.Name,
				Price:       cur.Price,
				Stock:       cur.Stock,
				CategoryID:  cur.Category.ID,
				Description: cur.Description,
			}
			if in.Name == "" {
				in.Name = cur.Title()
			}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			if err := a.Admin.UpdateProduct(ctx, args[0], in); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Updated product %s.\n", args[0])
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) adminProductDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Deleted product %s.\n", args[0])
			return nil
		},
	}
}

func (c *cli) adminProductCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category <product-id> <category-id>",
		Short: "Move a product to another category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.AssignCategory(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Product %s moved to category %s.\n", args[0], args[1])
			return nil
		},
	}
}

func renderCategories(w io.Writer, categories []product.Category) {
	if len(categories) == 0 {
		printf(w, "No categories.\n")
		return
	}
	rows := make([][]string, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, []string{cat.ID, cat.Name, orDash(cat.Description)})
	}
	renderTable(w, []string{"ID", "Name", "Description"}, rows)
}

func (c *cli) adminCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			categories, err := a.Admin.Categories(cmd.Context())
			if err != nil {
				return err
			}
			renderCategories(cmd.OutOrStdout(), categories)
			return nil
		},
	}

	var in product.CategoryInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			cat, err := a.Admin.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Created category %s (%s).\n", cat.Name, orDash(cat.ID))
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "Category name")
	add.Flags().StringVar(&in.Description, "description", "", "Description")

	var upd product.CategoryInput
	edit := &cobra.Command{
		Use:   "edit <category-id>",
		Short: "Edit a category; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cur, err := a.Admin.Category(ctx, args[0])
			if err != nil {
				return err
			}
			next := product.CategoryInput{Name: cur.Name, Description: cur.Description}
			if cmd.Flags().Changed("name") {
				next.Name = upd.Name
			}
			if cmd.Flags().Changed("description") {
				next.Description = upd.Description
			}
			cat, err := a.Admin.UpdateCategory(ctx, args[0], next)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Updated category %s.\n", orDash(cat.Name))
			return nil
		},
	}
	edit.Flags().StringVar(&upd.Name, "name", "", "Category name")
	edit.Flags().StringVar(&upd.Description, "description", "", "Description")

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Deleted category %s.\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, edit, del)
	return cmd
}

func (c *cli) adminStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock <product-id> <stock>",
		Short: "Set a product's stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrap(err, "stock")
			}
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.UpdateStock(cmd.Context(), args[0], stock); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Stock of %s set to %d.\n", args[0], stock)
			return nil
		},
	}
}

func (c *cli) adminOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			orders, err := a.Admin.Orders(cmd.Context())
			if err != nil {
				return err
			}
			renderOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}
}

func (c *cli) adminStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set an order's status",
		Long:  "Set an order's status. Valid statuses: Pending, Processing, Shipped, Delivered.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			status := order.Status(args[1])
			if err := a.Admin.SetOrderStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Order %s is now %s.\n", args[0], status)
			return nil
		},
	}
}

func (c *cli) adminApproveReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve-return <order-id>",
		Short: "Approve a requested return",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.ApproveReturn(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Return for order %s approved.\n", args[0])
			return nil
		},
	}
}

func (c *cli) adminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			users, err := a.Admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				state := "active"
				if u.Blocked {
					state = "blocked"
				}
				rows = append(rows, []string{u.ID, u.Name, u.Email, orDash(u.Role), state})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Email", "Role", "State"}, rows)
			return nil
		},
	}
}

func (c *cli) adminBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <user-id>",
		Short: "Block or unblock an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := a.Admin.ToggleBlock(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Toggled block for %s.\n", args[0])
			return nil
		},
	}
}
