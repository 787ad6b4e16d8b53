package app

import (
	"encoding/json"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

type workerSnapshot struct {
	Name        string   `json:"name"`
	Bio         string   `json:"bio"`
	PhotoURL    string   `json:"photo_url"`
	IsFreelance bool     `json:"is_freelance"`
	VenueIDs    []string `json:"venue_ids"`
	Status      string   `json:"status"`
}

type venueSnapshot struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description"`
	PriceLevel  int    `json:"price_level"`
	PhotoURL    string `json:"photo_url"`
	Status      string `json:"status"`
}

// snapshotWorker captures the values an edit proposal is compared against.
func snapshotWorker(w domain.Worker, current []domain.Association) (json.RawMessage, error) {
	venueIDs := domain.VenueIDs(current)
	data, err := json.Marshal(workerSnapshot{
		Name:        w.Name,
		Bio:         w.Bio,
		PhotoURL:    w.PhotoURL,
		IsFreelance: w.IsFreelance,
		VenueIDs:    venueIDs,
		Status:      string(w.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding worker snapshot: %w", err)
	}
	return data, nil
}

func snapshotVenue(v domain.Venue) (json.RawMessage, error) {
	data, err := json.Marshal(venueSnapshot{
		Name:        v.Name,
		Category:    string(v.Category),
		Address:     v.Address,
		City:        v.City,
		Description: v.Description,
		PriceLevel:  v.PriceLevel,
		PhotoURL:    v.PhotoURL,
		Status:      string(v.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding venue snapshot: %w", err)
	}
	return data, nil
}
