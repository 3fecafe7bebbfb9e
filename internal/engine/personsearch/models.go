// internal/engine/personsearch/models.go
package personsearch

import (
	"context"

	"vaccard/internal/models"
)

// Lister is the slice of the collaborator client the browser reads and
// deletes through.
type Lister interface {
	ListPersons(ctx context.Context, page, size int, sort string) (*models.PersonPage, error)
	SearchPersonByCPF(ctx context.Context, cpf string) (*models.Person, error)
	DeletePerson(ctx context.Context, personID int64) error
}

// Mode tells how the current page was obtained. Rendering never branches on
// it: a lookup hit is a synthetic page of one.
type Mode string

const (
	ModeListing Mode = "LISTING"
	ModeLookup  Mode = "LOOKUP"
)

// View is the browser's current result set.
type View struct {
	Mode Mode
	Page models.PersonPage
	// Query is the CPF of the active lookup, empty in listing mode.
	Query string
}
