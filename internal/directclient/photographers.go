package directclient

import (
	"context"
	"time"

	"surfapp/internal/backend"
	"surfapp/internal/models"
)

// ListPhotographers pushes availability, rating and price down to the store
// and applies the spot filter to the returned rows.
func (c *Client) ListPhotographers(ctx context.Context, filters models.PhotographerFilters) (list []models.Photographer, err error) {
	defer c.finish("list_photographers", time.Now(), &err)

	q := backend.PhotographerQuery{
		MinRating:     filters.MinRating,
		MaxPrice:      filters.MaxPrice,
		AvailableOnly: filters.AvailableOnly != nil && *filters.AvailableOnly,
	}
	rows, err := c.backend.ListPhotographers(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]models.Photographer, 0, len(rows))
	for _, p := range rows {
		if filters.MatchesSpot(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) GetPhotographer(ctx context.Context, id string) (p *models.Photographer, err error) {
	defer c.finish("get_photographer", time.Now(), &err)
	return c.backend.GetPhotographer(ctx, id)
}
