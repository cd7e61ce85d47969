package memory

import (
	"context"
	"fmt"
	"time"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "surfapp123"

type demoPhotographer struct {
	userID, profileID, name, email string
	bio                            string
	rating                         float64
	reviews                        int
	spots                          []string
	price                          float64
	years                          int
	available                      bool
}

var demoPhotographers = []demoPhotographer{
	{"u-cata", "ph-cata", "Catalina Rojas", "catalina@surfapp.dev",
		"Water housing specialist, big wave days only.", 4.9, 128,
		[]string{"Punta de Lobos", "Pichilemu"}, 45000, 8, true},
	{"u-tomas", "ph-tomas", "Tomás Vidal", "tomas@surfapp.dev",
		"Drone and long lens from the cliffs.", 4.7, 64,
		[]string{"Pichilemu", "Infiernillo"}, 35000, 5, true},
	{"u-ana", "ph-ana", "Ana Fuentes", "ana@surfapp.dev",
		"Beginner sessions and surf schools.", 4.3, 22,
		[]string{"La Puntilla"}, 25000, 2, false},
}

// Seed fills db with demo users, photographers and one completed session.
func Seed(ctx context.Context, db *DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	now := time.Now().UTC()

	surfer := &backend.UserRecord{
		User: models.User{
			ID: "u-surfer", Email: "surfer@surfapp.dev", Name: "Diego Muñoz",
			Role: models.RoleSurfer, CreatedAt: now,
		},
		PasswordHash: string(hash),
	}
	if err := db.InsertUser(ctx, surfer); err != nil {
		return fmt.Errorf("failed to seed surfer: %w", err)
	}

	for _, d := range demoPhotographers {
		rec := &backend.UserRecord{
			User: models.User{
				ID: d.userID, Email: d.email, Name: d.name,
				Role: models.RolePhotographer, CreatedAt: now,
			},
			PasswordHash: string(hash),
		}
		if err := db.InsertUser(ctx, rec); err != nil {
			return fmt.Errorf("failed to seed photographer user: %w", err)
		}
		bio, years := d.bio, d.years
		if err := db.AddPhotographer(models.Photographer{
			ID:              d.profileID,
			UserID:          d.userID,
			Bio:             &bio,
			Rating:          d.rating,
			ReviewsCount:    d.reviews,
			Spots:           d.spots,
			PricePerSession: d.price,
			Currency:        "CLP",
			Equipment:       []string{"Sony A1", "SPL water housing"},
			ExperienceYears: &years,
			Available:       d.available,
		}); err != nil {
			return err
		}
	}

	booking := &models.Booking{
		ID: "bk-demo", SurferID: surfer.ID, PhotographerID: "u-cata",
		Spot: "Punta de Lobos", Date: now.AddDate(0, 0, -3).Format("2006-01-02"), Time: "07:30",
		DurationHours: 2, Status: models.BookingCompleted,
		Price: 45000, Currency: "CLP", CreatedAt: now, UpdatedAt: now,
	}
	if _, err := db.InsertBooking(ctx, booking); err != nil {
		return fmt.Errorf("failed to seed booking: %w", err)
	}

	height, period := 2.1, 14.0
	wind, tide := "SW", "low"
	session := &models.Session{
		ID: "ss-demo", BookingID: booking.ID, SurferID: surfer.ID, PhotographerID: "u-cata",
		Spot: booking.Spot, Date: booking.Date, Time: booking.Time, DurationHours: booking.DurationHours,
		Status: models.SessionCompleted,
		Conditions: &models.WaveConditions{
			WaveHeight: &height, WavePeriod: &period, WindDirection: &wind, Tide: &tide,
		},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.InsertSession(ctx, session); err != nil {
		return fmt.Errorf("failed to seed session: %w", err)
	}

	for i, size := range []int64{4_200_000, 3_900_000, 58_000_000} {
		m := &models.Media{
			ID:         fmt.Sprintf("md-demo-%d", i+1),
			SessionID:  session.ID,
			Type:       models.MediaPhoto,
			URL:        fmt.Sprintf("https://media.surfapp.dev/ss-demo/%d.jpg", i+1),
			Filename:   fmt.Sprintf("lobos-%d.jpg", i+1),
			SizeBytes:  size,
			UploadedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if i == 2 {
			dur := 42.0
			m.Type = models.MediaVideo
			m.URL = "https://media.surfapp.dev/ss-demo/3.mp4"
			m.Filename = "lobos-3.mp4"
			m.DurationSeconds = &dur
		}
		if err := db.InsertMedia(ctx, m); err != nil {
			return fmt.Errorf("failed to seed media: %w", err)
		}
	}

	db.AddLog(models.LogEntry{
		ID: "lg-demo-1", SessionID: session.ID, UserID: "u-cata",
		Action: "session_started", Description: "Session started at Punta de Lobos", Timestamp: now.Add(-2 * time.Hour),
	})
	db.AddLog(models.LogEntry{
		ID: "lg-demo-2", SessionID: session.ID, UserID: "u-cata",
		Action: "media_uploaded", Description: "3 files uploaded", Timestamp: now,
	})
	return nil
}
