// internal/api/card.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"vaccard/internal/common/errors"
	"vaccard/internal/models"
)

// GetCard fetches the raw card for a person, optionally narrowed to one
// vaccine category. The payload is the collaborator's shape; alignment to
// the dose catalog happens in the grid builder, not here.
func (c *Client) GetCard(ctx context.Context, personID int64, category *models.VaccineCategory) (*models.CardGrid, error) {
	path := fmt.Sprintf("/persons/%d/card", personID)

	var query url.Values
	if category != nil {
		query = url.Values{}
		query.Set("category", string(*category))
	}

	var out models.CardGrid
	if err := c.transport.DoJSON(ctx, "get_card", http.MethodGet, path, query, nil, &out); err != nil {
		return nil, attributeNotFound(err, errors.NewPersonNotFoundError)
	}
	return &out, nil
}

// AddVaccination registers one administration record. Rejections keep the
// record keeper's message so the caller can surface it unchanged.
func (c *Client) AddVaccination(ctx context.Context, personID int64, req models.RecordRequest) error {
	if !req.Dose.Valid() {
		return errors.NewInvalidInputError(fmt.Sprintf("unknown dose type %q", req.Dose))
	}
	if req.ApplicationDate == "" {
		return errors.NewInvalidInputError("missing application date")
	}

	path := fmt.Sprintf("/persons/%d/card", personID)
	if err := c.transport.DoJSON(ctx, "add_vaccination", http.MethodPost, path, nil, req, nil); err != nil {
		return attributeNotFound(err, errors.NewPersonNotFoundError)
	}
	c.logger.Info("administration recorded", map[string]interface{}{
		"personId":  personID,
		"vaccineId": req.VaccineID,
		"dose":      string(req.Dose),
	})
	return nil
}

// DeleteRecord revokes a single administration record from a person's card.
func (c *Client) DeleteRecord(ctx context.Context, personID, recordID int64) error {
	path := fmt.Sprintf("/persons/%d/card/records/%d", personID, recordID)
	if err := c.transport.DoJSON(ctx, "delete_record", http.MethodDelete, path, nil, nil, nil); err != nil {
		return attributeNotFound(err, errors.NewRecordNotFoundError)
	}
	c.logger.Info("administration record revoked", map[string]interface{}{
		"personId": personID,
		"recordId": recordID,
	})
	return nil
}
