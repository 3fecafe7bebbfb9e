// internal/engine/recordflow/models.go
package recordflow

import (
	"context"

	"vaccard/internal/common/errors"
	"vaccard/internal/engine/cardgrid"
	"vaccard/internal/models"
)

// Mutator is the slice of the collaborator client the workflow writes through.
type Mutator interface {
	AddVaccination(ctx context.Context, personID int64, req models.RecordRequest) error
	DeleteRecord(ctx context.Context, personID, recordID int64) error
}

// GridProvider rebuilds the grid after a successful mutation.
type GridProvider interface {
	BuildGrid(ctx context.Context, in cardgrid.Input) (*cardgrid.Grid, error)
	Invalidate(ctx context.Context, personID int64)
}

// ModalKind is the register of the mutation modal.
type ModalKind string

const (
	ModalClosed     ModalKind = "CLOSED"
	ModalAdd        ModalKind = "ADD"
	ModalViewDelete ModalKind = "VIEW_DELETE"
	ModalSubmitting ModalKind = "SUBMITTING"
)

// MutationKind distinguishes what a SUBMITTING modal will do.
type MutationKind string

const (
	MutationAdd    MutationKind = "add"
	MutationDelete MutationKind = "delete"
)

// ModalState is one value of the modal register. The register holds exactly
// one state at a time: a closed modal carries nothing, an open one carries
// the cell it was opened on, and a failed submission returns to its opening
// kind with Err set and the draft preserved.
type ModalState struct {
	Kind        ModalKind
	Mutation    MutationKind
	VaccineID   int64
	VaccineName string
	Cell        models.DoseCell
	Draft       models.RecordRequest
	Err         *errors.StandardError
}

// Open reports whether the modal occupies the register.
func (m ModalState) Open() bool {
	return m.Kind != ModalClosed
}

func closedModal() ModalState {
	return ModalState{Kind: ModalClosed}
}
