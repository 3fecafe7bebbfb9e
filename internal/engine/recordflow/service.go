// internal/engine/recordflow/service.go
package recordflow

import (
	"context"
	"fmt"
	"sync"

	"vaccard/internal/common/errors"
	"vaccard/internal/common/logger"
	"vaccard/internal/common/metrics"
	"vaccard/internal/engine/cardgrid"
	"vaccard/internal/models"
)

// Workflow drives add/revoke mutations against one person's card. It owns
// the modal register and the current grid; all methods are safe for
// concurrent use, and the busy flag serializes loads and mutations so at
// most one action is in flight at a time, post-mutation refresh included.
type Workflow struct {
	personID int64
	grids    GridProvider
	mutator  Mutator
	logger   logger.Logger

	mu       sync.Mutex
	category *models.VaccineCategory
	grid     *cardgrid.Grid
	modal    ModalState
	busy     bool
}

func NewWorkflow(personID int64, grids GridProvider, mutator Mutator, log logger.Logger) *Workflow {
	return &Workflow{
		personID: personID,
		grids:    grids,
		mutator:  mutator,
		logger:   log,
		modal:    closedModal(),
	}
}

// Load fetches the grid for the current category filter.
func (w *Workflow) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return errors.NewActionInFlightError("load_grid")
	}
	w.busy = true
	w.mu.Unlock()

	return w.fetchGrid(ctx)
}

// SetCategory switches the category filter and reloads the grid. Rejected
// while the modal is open so a filter change never invalidates the cell a
// modal was opened on.
func (w *Workflow) SetCategory(ctx context.Context, category *models.VaccineCategory) error {
	w.mu.Lock()
	if w.modal.Open() {
		w.mu.Unlock()
		return errors.NewInvalidInputError("cannot change the category filter while a modal is open")
	}
	if w.busy {
		w.mu.Unlock()
		return errors.NewActionInFlightError("load_grid")
	}
	w.busy = true
	w.category = category
	w.mu.Unlock()

	return w.fetchGrid(ctx)
}

// fetchGrid loads the grid under the current filter and settles the busy
// flag. The caller must have set busy.
func (w *Workflow) fetchGrid(ctx context.Context) error {
	w.mu.Lock()
	category := w.category
	w.mu.Unlock()

	grid, err := w.grids.BuildGrid(ctx, cardgrid.Input{PersonID: w.personID, Category: category})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		return err
	}
	w.grid = grid
	return nil
}

// Grid returns the last loaded grid, nil before Load.
func (w *Workflow) Grid() *cardgrid.Grid {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.grid
}

// Modal returns a copy of the modal register.
func (w *Workflow) Modal() ModalState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modal
}

// OpenAdd opens the registration modal on a MISSING cell.
func (w *Workflow) OpenAdd(vaccineID int64, dose models.DoseType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return errors.NewActionInFlightError(string(MutationAdd))
	}
	cell, name, err := w.cellLocked(vaccineID, dose)
	if err != nil {
		return err
	}
	if w.modal.Open() {
		return errors.NewInvalidInputError("modal already open")
	}
	if cell.Status != models.StatusMissing {
		return errors.NewInvalidInputError(
			fmt.Sprintf("dose %s of vaccine %d is %s, only MISSING doses can be registered", dose, vaccineID, cell.Status))
	}

	w.modal = ModalState{
		Kind:        ModalAdd,
		Mutation:    MutationAdd,
		VaccineID:   vaccineID,
		VaccineName: name,
		Cell:        *cell,
		Draft:       models.RecordRequest{VaccineID: vaccineID, Dose: dose},
	}
	return nil
}

// OpenViewDelete opens the record detail modal on a TAKEN cell.
func (w *Workflow) OpenViewDelete(vaccineID int64, dose models.DoseType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return errors.NewActionInFlightError(string(MutationDelete))
	}
	cell, name, err := w.cellLocked(vaccineID, dose)
	if err != nil {
		return err
	}
	if w.modal.Open() {
		return errors.NewInvalidInputError("modal already open")
	}
	if cell.Status != models.StatusTaken {
		return errors.NewInvalidInputError(
			fmt.Sprintf("dose %s of vaccine %d is %s, only TAKEN doses carry a record", dose, vaccineID, cell.Status))
	}

	w.modal = ModalState{
		Kind:        ModalViewDelete,
		Mutation:    MutationDelete,
		VaccineID:   vaccineID,
		VaccineName: name,
		Cell:        *cell,
	}
	return nil
}

// Cancel closes the modal and discards the draft. Rejected mid-submission.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.modal.Kind == ModalSubmitting {
		return errors.NewActionInFlightError(string(w.modal.Mutation))
	}
	w.modal = closedModal()
	return nil
}

// SubmitAdd sends the registration. On success the modal closes and the
// grid is rebuilt under the category filter in effect at submit time; on
// rejection the modal reopens with the draft and the collaborator's message.
func (w *Workflow) SubmitAdd(ctx context.Context, applicationDate string) error {
	w.mu.Lock()
	if w.busy || w.modal.Kind == ModalSubmitting {
		w.mu.Unlock()
		return errors.NewActionInFlightError(string(MutationAdd))
	}
	if w.modal.Kind != ModalAdd {
		w.mu.Unlock()
		return errors.NewInvalidInputError("no registration modal open")
	}
	w.busy = true
	opened := w.modal
	w.modal.Kind = ModalSubmitting
	w.modal.Draft.ApplicationDate = applicationDate
	req := w.modal.Draft
	w.mu.Unlock()

	err := w.mutator.AddVaccination(ctx, w.personID, req)
	return w.settle(ctx, MutationAdd, opened, req, err)
}

// ConfirmDelete revokes the record shown in the view modal.
func (w *Workflow) ConfirmDelete(ctx context.Context) error {
	w.mu.Lock()
	if w.busy || w.modal.Kind == ModalSubmitting {
		w.mu.Unlock()
		return errors.NewActionInFlightError(string(MutationDelete))
	}
	if w.modal.Kind != ModalViewDelete {
		w.mu.Unlock()
		return errors.NewInvalidInputError("no record modal open")
	}
	if w.modal.Cell.RecordID == nil {
		w.mu.Unlock()
		return errors.NewIntegrityViolationError("TAKEN cell without a record id")
	}
	w.busy = true
	opened := w.modal
	recordID := *w.modal.Cell.RecordID
	w.modal.Kind = ModalSubmitting
	w.mu.Unlock()

	err := w.mutator.DeleteRecord(ctx, w.personID, recordID)
	return w.settle(ctx, MutationDelete, opened, opened.Draft, err)
}

// settle applies the outcome of a mutation to the register. Failure restores
// the modal as it was opened, with the draft and the error attached, so the
// operator can correct and resubmit.
func (w *Workflow) settle(ctx context.Context, kind MutationKind, opened ModalState, draft models.RecordRequest, err error) error {
	if err != nil {
		std := errors.AsStandardError(err)
		metrics.Mutations.WithLabelValues(string(kind), "failure").Inc()
		w.logger.WithError(err).Warn("mutation rejected", map[string]interface{}{
			"personId": w.personID,
			"kind":     string(kind),
		})

		w.mu.Lock()
		w.modal = opened
		w.modal.Draft = draft
		w.modal.Err = std
		w.busy = false
		w.mu.Unlock()
		return err
	}

	metrics.Mutations.WithLabelValues(string(kind), "success").Inc()
	w.grids.Invalidate(ctx, w.personID)

	// busy stays set until the refresh settles so no other action can start
	// against the stale grid.
	w.mu.Lock()
	w.modal = closedModal()
	category := w.category
	w.mu.Unlock()

	// The record is committed either way; a failed refresh leaves the last
	// grid on display and reports the refresh error.
	grid, refreshErr := w.grids.BuildGrid(ctx, cardgrid.Input{PersonID: w.personID, Category: category})
	if refreshErr != nil {
		w.logger.WithError(refreshErr).Warn("grid refresh after mutation failed", map[string]interface{}{
			"personId": w.personID,
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if refreshErr != nil {
		return refreshErr
	}
	w.grid = grid
	return nil
}

func (w *Workflow) cellLocked(vaccineID int64, dose models.DoseType) (*models.DoseCell, string, error) {
	if w.grid == nil {
		return nil, "", errors.NewInvalidInputError("grid not loaded")
	}
	col := w.grid.Column(vaccineID)
	if col == nil {
		return nil, "", errors.NewVaccineNotFoundError(fmt.Sprintf("vaccine %d not on the current grid", vaccineID))
	}
	cell := w.grid.Cell(vaccineID, dose)
	if cell == nil {
		return nil, "", errors.NewInvalidInputError(fmt.Sprintf("dose %s not on the grid", dose))
	}
	return cell, col.VaccineName, nil
}
