// internal/engine/cardgrid/models.go
package cardgrid

import (
	"context"
	"time"

	"vaccard/internal/models"
)

// CardFetcher is the slice of the collaborator client the builder needs.
type CardFetcher interface {
	GetCard(ctx context.Context, personID int64, category *models.VaccineCategory) (*models.CardGrid, error)
}

// SnapshotCache is the slice of the redis wrapper used for grid snapshots.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Input identifies the card to build. A nil Category means the full card.
type Input struct {
	PersonID int64
	Category *models.VaccineCategory
}

// Grid is the derived view: every vaccine column carries exactly one cell
// per catalog dose type, in catalog order. Violations lists the integrity
// problems found while aligning; the matching cells carry StatusError.
type Grid struct {
	Person     models.Person          `json:"person"`
	Vaccines   []models.VaccineStatus `json:"vaccines"`
	Violations []string               `json:"violations,omitempty"`
}

// Column returns the aligned column for a vaccine, nil when absent.
func (g *Grid) Column(vaccineID int64) *models.VaccineStatus {
	for i := range g.Vaccines {
		if g.Vaccines[i].VaccineID == vaccineID {
			return &g.Vaccines[i]
		}
	}
	return nil
}

// Cell returns the cell at (vaccine, dose), nil when the column is absent.
func (g *Grid) Cell(vaccineID int64, dose models.DoseType) *models.DoseCell {
	col := g.Column(vaccineID)
	if col == nil {
		return nil
	}
	for i := range col.Doses {
		if col.Doses[i].DoseType == dose {
			return &col.Doses[i]
		}
	}
	return nil
}
