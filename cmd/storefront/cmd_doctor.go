package main

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/pkg/health"
)

var errUnhealthy = errors.New("some checks failed")

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the API and the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			results := a.Doctor().Run(cmd.Context())

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status, detail := okStyle.Render("ok"), ""
				if !r.OK() {
					status, detail = failStyle.Render("fail"), r.Err.Error()
				}
				rows = append(rows, []string{r.Name, status, r.Duration.Round(time.Millisecond).String(), detail})
			}
			renderTable(cmd.OutOrStdout(), []string{"Check", "Status", "Took", "Detail"}, rows)

			if !health.Healthy(results) {
				return errUnhealthy
			}
			return nil
		},
	}
}
