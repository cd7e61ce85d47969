package cmd

import (
	"context"

	"surfapp/internal/models"

	"github.com/spf13/cobra"
)

var (
	filterSpot      string
	filterMinRating float64
	filterMaxPrice  float64
	filterAvailable bool
)

var photographersCmd = &cobra.Command{
	Use:   "photographers",
	Short: "List photographers, best rated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app, _ []string) error {
			list, err := a.client.ListPhotographers(ctx, photographerFilters(cmd))
			if err != nil {
				return err
			}
			return printPhotographers(list)
		})(cmd, args)
	},
}

var photographerCmd = &cobra.Command{
	Use:   "photographer <id>",
	Short: "Show one photographer",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		p, err := a.client.GetPhotographer(ctx, args[0])
		if err != nil {
			return err
		}
		return printPhotographer(p)
	}),
}

func init() {
	f := photographersCmd.Flags()
	f.StringVar(&filterSpot, "spot", "", "only photographers working this spot")
	f.Float64Var(&filterMinRating, "min-rating", 0, "minimum rating")
	f.Float64Var(&filterMaxPrice, "max-price", 0, "maximum price per session")
	f.BoolVar(&filterAvailable, "available", false, "only photographers taking bookings")

	rootCmd.AddCommand(photographersCmd, photographerCmd)
}

// photographerFilters sets only the filters given on the command line so an
// explicit zero is still sent.
func photographerFilters(cmd *cobra.Command) models.PhotographerFilters {
	var filters models.PhotographerFilters
	flags := cmd.Flags()
	if flags.Changed("spot") {
		filters.Spot = &filterSpot
	}
	if flags.Changed("min-rating") {
		filters.MinRating = &filterMinRating
	}
	if flags.Changed("max-price") {
		filters.MaxPrice = &filterMaxPrice
	}
	if flags.Changed("available") {
		filters.AvailableOnly = &filterAvailable
	}
	return filters
}
