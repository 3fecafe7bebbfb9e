// internal/engine/cardgrid/service.go
package cardgrid

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"vaccard/internal/common/errors"
	"vaccard/internal/common/logger"
	"vaccard/internal/common/metrics"
	"vaccard/internal/models"
)

// Service derives the dose-type by vaccine status matrix from the
// collaborator's card payload. The derivation is total: any card the
// collaborator returns produces a grid, with integrity problems surfaced as
// ERROR cells rather than failed builds.
type Service struct {
	config  *Config
	fetcher CardFetcher
	cache   SnapshotCache
	logger  logger.Logger
}

func NewService(config *Config, fetcher CardFetcher, cache SnapshotCache, log logger.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cardgrid config: %w", err)
	}
	if config.CacheEnabled && cache == nil {
		return nil, fmt.Errorf("cache enabled but no snapshot cache provided")
	}
	return &Service{config: config, fetcher: fetcher, cache: cache, logger: log}, nil
}

// BuildGrid returns the aligned grid for one person, narrowed to a category
// when Input.Category is set.
func (s *Service) BuildGrid(ctx context.Context, in Input) (*Grid, error) {
	if in.PersonID <= 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("invalid person id %d", in.PersonID))
	}

	key := snapshotKey(in)
	if grid := s.cachedGrid(ctx, key); grid != nil {
		metrics.GridBuilds.WithLabelValues("success").Inc()
		return grid, nil
	}

	card, err := s.fetcher.GetCard(ctx, in.PersonID, in.Category)
	if err != nil {
		metrics.GridBuilds.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.config.ValidateResponses {
		if err := ValidateCard(card); err != nil {
			metrics.GridBuilds.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	grid := s.align(card)
	if len(grid.Violations) > 0 {
		metrics.GridIntegrityViolations.Add(float64(len(grid.Violations)))
		s.logger.Warn("card payload violates pairing invariants", map[string]interface{}{
			"personId":   in.PersonID,
			"violations": grid.Violations,
		})
	}

	s.storeGrid(ctx, key, grid)
	metrics.GridBuilds.WithLabelValues("success").Inc()
	return grid, nil
}

// Invalidate drops every cached snapshot for a person. Called after any
// mutation of the person's card, and after the person is deleted.
func (s *Service) Invalidate(ctx context.Context, personID int64) {
	if !s.config.CacheEnabled {
		return
	}
	keys := []string{snapshotKey(Input{PersonID: personID})}
	for _, cat := range []models.VaccineCategory{
		models.CategoryRoutine, models.CategorySeasonal, models.CategoryTravel, models.CategorySpecialGrp,
	} {
		c := cat
		keys = append(keys, snapshotKey(Input{PersonID: personID, Category: &c}))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("snapshot invalidation failed", map[string]interface{}{"personId": personID})
	}
}

// align produces one column per returned vaccine with exactly one cell per
// catalog dose type. The collaborator emits every catalog dose explicitly,
// NOT_APPLICABLE included, so a dose type absent from the payload is an
// omission and becomes an ERROR cell, as do cells that break the record
// pairing invariant, appear twice, or carry an unknown status.
func (s *Service) align(card *models.CardGrid) *Grid {
	grid := &Grid{Person: card.Person, Vaccines: make([]models.VaccineStatus, 0, len(card.Vaccines))}

	for _, v := range card.Vaccines {
		byDose := make(map[models.DoseType][]models.DoseCell, len(v.Doses))
		for _, cell := range v.Doses {
			if !cell.DoseType.Valid() {
				grid.Violations = append(grid.Violations,
					fmt.Sprintf("vaccine %d: unknown dose type %q", v.VaccineID, cell.DoseType))
				continue
			}
			byDose[cell.DoseType] = append(byDose[cell.DoseType], cell)
		}

		col := models.VaccineStatus{
			VaccineID:   v.VaccineID,
			VaccineName: v.VaccineName,
			Category:    v.Category,
			Doses:       make([]models.DoseCell, 0, len(models.DoseCatalog)),
		}

		for _, dose := range models.DoseCatalog {
			cells := byDose[dose]
			switch {
			case len(cells) == 0:
				grid.Violations = append(grid.Violations,
					fmt.Sprintf("vaccine %d: dose %s entry omitted", v.VaccineID, dose))
				col.Doses = append(col.Doses, models.DoseCell{DoseType: dose, Status: models.StatusError})
			case len(cells) > 1:
				grid.Violations = append(grid.Violations,
					fmt.Sprintf("vaccine %d: dose %s reported %d times", v.VaccineID, dose, len(cells)))
				col.Doses = append(col.Doses, models.DoseCell{DoseType: dose, Status: models.StatusError})
			default:
				col.Doses = append(col.Doses, s.checkCell(grid, v.VaccineID, cells[0]))
			}
		}
		grid.Vaccines = append(grid.Vaccines, col)
	}
	return grid
}

func (s *Service) checkCell(grid *Grid, vaccineID int64, cell models.DoseCell) models.DoseCell {
	fail := func(reason string) models.DoseCell {
		grid.Violations = append(grid.Violations,
			fmt.Sprintf("vaccine %d, dose %s: %s", vaccineID, cell.DoseType, reason))
		return models.DoseCell{DoseType: cell.DoseType, Status: models.StatusError}
	}

	switch cell.Status {
	case models.StatusTaken:
		if cell.RecordID == nil || cell.ApplicationDate == nil {
			return fail("TAKEN without record id and application date")
		}
	case models.StatusMissing, models.StatusNotApplicable:
		if cell.RecordID != nil || cell.ApplicationDate != nil {
			return fail(fmt.Sprintf("%s carries record data", cell.Status))
		}
	default:
		return fail(fmt.Sprintf("unknown status %q", cell.Status))
	}
	return cell
}

func snapshotKey(in Input) string {
	category := "ALL"
	if in.Category != nil {
		category = string(*in.Category)
	}
	return fmt.Sprintf("card:%d:%s", in.PersonID, category)
}

// cachedGrid returns a snapshot on hit and nil on miss. Cache failures
// degrade to a collaborator fetch.
func (s *Service) cachedGrid(ctx context.Context, key string) *Grid {
	if !s.config.CacheEnabled {
		return nil
	}

	raw, err := s.cache.Get(ctx, key)
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil
	}
	if err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("snapshot cache read failed", map[string]interface{}{"key": key})
		return nil
	}

	var grid Grid
	if err := json.Unmarshal([]byte(raw), &grid); err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("snapshot cache entry corrupt", map[string]interface{}{"key": key})
		return nil
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return &grid
}

func (s *Service) storeGrid(ctx context.Context, key string, grid *Grid) {
	if !s.config.CacheEnabled {
		return
	}
	data, err := json.Marshal(grid)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.config.CacheTTL); err != nil {
		s.logger.WithError(err).Warn("snapshot cache write failed", map[string]interface{}{"key": key})
	}
}
