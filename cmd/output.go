package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"surfapp/internal/models"
	"surfapp/internal/services"

	"github.com/goccy/go-json"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printUser(u *models.User) error {
	if jsonOutput {
		return printJSON(u)
	}
	if u == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("  id:   %s\n  role: %s\n", u.ID, u.Role)
	return nil
}

func printPhotographers(list []models.Photographer) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No photographers match.")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tRATING\tPRICE\tSPOTS\tAVAILABLE")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%.1f (%d)\t%s\t%s\t%t\n",
			p.ID, p.Name, p.Rating, p.ReviewsCount, money(p.PricePerSession, p.Currency),
			strings.Join(p.Spots, ", "), p.Available)
	}
	return w.Flush()
}

func printPhotographer(p *models.Photographer) error {
	if jsonOutput {
		return printJSON(p)
	}
	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	fmt.Printf("  rating:     %.1f from %d reviews\n", p.Rating, p.ReviewsCount)
	fmt.Printf("  price:      %s per session\n", money(p.PricePerSession, p.Currency))
	fmt.Printf("  spots:      %s\n", strings.Join(p.Spots, ", "))
	if p.ExperienceYears != nil {
		fmt.Printf("  experience: %d years\n", *p.ExperienceYears)
	}
	fmt.Printf("  available:  %t\n", p.Available)
	if p.Bio != nil {
		fmt.Printf("  bio:        %s\n", *p.Bio)
	}
	return nil
}

func printBookings(list []models.Booking) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No bookings yet.")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tSTATUS\tDATE\tTIME\tSPOT\tPHOTOGRAPHER\tPRICE")
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Status, b.Date, b.Time, b.Spot, b.PhotographerName, money(b.Price, b.Currency))
	}
	return w.Flush()
}

func printBooking(b *models.Booking) error {
	if jsonOutput {
		return printJSON(b)
	}
	fmt.Printf("Booking %s: %s\n", b.ID, b.Status)
	fmt.Printf("  %s at %s %s for %gh with %s, %s\n",
		b.Spot, b.Date, b.Time, b.DurationHours, b.PhotographerName, money(b.Price, b.Currency))
	return nil
}

func printSessions(list []models.Session) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tSTATUS\tDATE\tSPOT\tPHOTOGRAPHER\tMEDIA")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.Status, s.Date, s.Spot, s.PhotographerName, s.MediaCount)
	}
	return w.Flush()
}

func printSessionDetail(d *services.SessionDetail) error {
	if jsonOutput {
		return printJSON(d)
	}
	s := d.Session
	fmt.Printf("Session %s at %s, %s %s (%s)\n", s.ID, s.Spot, s.Date, s.Time, s.Status)
	fmt.Printf("  photographer: %s\n", s.PhotographerName)
	if c := s.Conditions; c != nil && !c.Empty() {
		fmt.Printf("  conditions:   %s\n", conditionsString(c))
	}

	fmt.Printf("\nMedia (%d)\n", len(d.Media))
	w := newTable()
	for _, m := range d.Media {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", m.ID, m.Type, m.Filename, bytesString(m.SizeBytes))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nActivity\n")
	if d.LogsErr != nil {
		fmt.Println("  (activity log unavailable)")
	}
	for _, e := range d.Logs {
		fmt.Printf("  %s  %s: %s\n", e.Timestamp.Format("2006-01-02 15:04"), e.UserName, e.Description)
	}
	return nil
}

func printStorage(u *models.StorageUsage) error {
	if jsonOutput {
		return printJSON(u)
	}
	fmt.Printf("%s: %s of %s used (%.1f%%)\n",
		u.Plan, bytesString(u.UsedBytes), bytesString(u.TotalBytes), u.Percentage())
	return nil
}

func conditionsString(c *models.WaveConditions) string {
	var parts []string
	if c.WaveHeight != nil {
		parts = append(parts, fmt.Sprintf("waves %.1fm", *c.WaveHeight))
	}
	if c.WavePeriod != nil {
		parts = append(parts, fmt.Sprintf("period %gs", *c.WavePeriod))
	}
	if c.WindSpeed != nil || c.WindDirection != nil {
		wind := "wind"
		if c.WindSpeed != nil {
			wind += fmt.Sprintf(" %g km/h", *c.WindSpeed)
		}
		if c.WindDirection != nil {
			wind += " " + *c.WindDirection
		}
		parts = append(parts, wind)
	}
	if c.Tide != nil {
		parts = append(parts, "tide "+*c.Tide)
	}
	if c.WaterTemp != nil {
		parts = append(parts, fmt.Sprintf("water %g°C", *c.WaterTemp))
	}
	return strings.Join(parts, ", ")
}

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.0f %s", amount, currency)
}

func bytesString(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
