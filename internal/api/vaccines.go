// internal/api/vaccines.go
package api

import (
	"context"
	"fmt"
	"net/http"

	"vaccard/internal/common/errors"
	"vaccard/internal/models"
)

// ListVaccines returns the full vaccine catalog.
func (c *Client) ListVaccines(ctx context.Context) ([]models.Vaccine, error) {
	var out []models.Vaccine
	if err := c.transport.DoJSON(ctx, "list_vaccines", http.MethodGet, "/vaccines", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateVaccine adds a vaccine with its dose schedule to the catalog.
func (c *Client) CreateVaccine(ctx context.Context, req models.VaccineRequest) (*models.Vaccine, error) {
	for _, d := range req.DoseSchedule {
		if !d.Valid() {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown dose type %q in schedule", d))
		}
	}

	var out models.Vaccine
	if err := c.transport.DoJSON(ctx, "create_vaccine", http.MethodPost, "/vaccines", nil, req, &out); err != nil {
		return nil, err
	}
	c.logger.Info("vaccine created", map[string]interface{}{"vaccineId": out.ID, "name": out.Name})
	return &out, nil
}

// DeleteVaccine removes a vaccine from the catalog.
func (c *Client) DeleteVaccine(ctx context.Context, vaccineID int64) error {
	path := fmt.Sprintf("/vaccines/%d", vaccineID)
	if err := c.transport.DoJSON(ctx, "delete_vaccine", http.MethodDelete, path, nil, nil, nil); err != nil {
		return attributeNotFound(err, errors.NewVaccineNotFoundError)
	}
	c.logger.Info("vaccine deleted", map[string]interface{}{"vaccineId": vaccineID})
	return nil
}
