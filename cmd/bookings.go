package cmd

import (
	"context"

	"surfapp/internal/models"

	"github.com/spf13/cobra"
)

var (
	bookPhotographer string
	bookSpot         string
	bookDate         string
	bookTime         string
	bookHours        float64
	bookNotes        string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Request a session with a photographer",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		req := models.CreateBookingRequest{
			PhotographerID: bookPhotographer,
			Spot:           bookSpot,
			Date:           bookDate,
			Time:           bookTime,
			DurationHours:  bookHours,
		}
		if bookNotes != "" {
			req.Notes = &bookNotes
		}
		b, err := a.client.CreateBooking(ctx, req)
		if err != nil {
			return err
		}
		return printBooking(b)
	}),
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		list, err := a.client.ListMyBookings(ctx)
		if err != nil {
			return err
		}
		return printBookings(list)
	}),
}

var bookingCmd = &cobra.Command{
	Use:   "booking <id>",
	Short: "Show one booking",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		b, err := a.client.GetBooking(ctx, args[0])
		if err != nil {
			return err
		}
		return printBooking(b)
	}),
}

var bookingStatusCmd = &cobra.Command{
	Use:   "booking-status <id> <status>",
	Short: "Move a booking to confirmed, completed or cancelled",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		b, err := a.client.UpdateBookingStatus(ctx, args[0], models.BookingStatus(args[1]))
		if err != nil {
			return err
		}
		return printBooking(b)
	}),
}

var cancelBookingCmd = &cobra.Command{
	Use:   "cancel-booking <id>",
	Short: "Cancel a pending booking",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		b, err := a.client.CancelBooking(ctx, args[0])
		if err != nil {
			return err
		}
		return printBooking(b)
	}),
}

func init() {
	f := bookCmd.Flags()
	f.StringVar(&bookPhotographer, "photographer", "", "photographer id")
	f.StringVar(&bookSpot, "spot", "", "surf spot")
	f.StringVar(&bookDate, "date", "", "session date (YYYY-MM-DD)")
	f.StringVar(&bookTime, "time", "", "start time (HH:MM)")
	f.Float64Var(&bookHours, "hours", 2, "duration in hours")
	f.StringVar(&bookNotes, "notes", "", "notes for the photographer")
	for _, name := range []string{"photographer", "spot", "date", "time"} {
		_ = bookCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(bookCmd, bookingsCmd, bookingCmd, bookingStatusCmd, cancelBookingCmd)
}
