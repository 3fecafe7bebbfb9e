// internal/api/persons.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"vaccard/internal/common/errors"
	"vaccard/internal/models"
)

// ListPersons fetches one offset-paginated listing page.
func (c *Client) ListPersons(ctx context.Context, page, size int, sort string) (*models.PersonPage, error) {
	if page < 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("negative page index %d", page))
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if sort != "" {
		query.Set("sort", sort)
	}

	var out models.PersonPage
	if err := c.transport.DoJSON(ctx, "list_persons", http.MethodGet, "/persons", query, nil, &out); err != nil {
		c.logger.WithError(err).Error("person listing failed", map[string]interface{}{"page": page})
		return nil, err
	}
	return &out, nil
}

// SearchPersonByCPF resolves a single person by exact CPF. A collaborator
// 404 becomes PERSON_NOT_FOUND.
func (c *Client) SearchPersonByCPF(ctx context.Context, cpf string) (*models.Person, error) {
	if cpf == "" {
		return nil, errors.NewInvalidInputError("empty cpf")
	}

	query := url.Values{}
	query.Set("cpf", cpf)

	var out models.Person
	if err := c.transport.DoJSON(ctx, "search_person", http.MethodGet, "/persons/search", query, nil, &out); err != nil {
		return nil, attributeNotFound(err, errors.NewPersonNotFoundError)
	}
	return &out, nil
}

// CreatePerson registers a person with the record keeper.
func (c *Client) CreatePerson(ctx context.Context, req models.PersonRequest) (*models.Person, error) {
	var out models.Person
	if err := c.transport.DoJSON(ctx, "create_person", http.MethodPost, "/persons", nil, req, &out); err != nil {
		return nil, err
	}
	c.logger.Info("person created", map[string]interface{}{"personId": out.ID})
	return &out, nil
}

// DeletePerson removes a person and, on the collaborator side, the person's
// administration records.
func (c *Client) DeletePerson(ctx context.Context, personID int64) error {
	path := fmt.Sprintf("/persons/%d", personID)
	if err := c.transport.DoJSON(ctx, "delete_person", http.MethodDelete, path, nil, nil, nil); err != nil {
		return attributeNotFound(err, errors.NewPersonNotFoundError)
	}
	c.logger.Info("person deleted", map[string]interface{}{"personId": personID})
	return nil
}
