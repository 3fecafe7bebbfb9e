package recordflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "vaccard/internal/common/errors"
	"vaccard/internal/common/logger"
	"vaccard/internal/engine/cardgrid"
	"vaccard/internal/models"
)

type fakeGrids struct {
	mu          sync.Mutex
	grid        *cardgrid.Grid
	buildErr    error
	buildInputs []cardgrid.Input
	invalidated []int64

	// One-shot rendezvous: the next build signals entered and waits.
	entered chan struct{}
	proceed chan struct{}
}

func (f *fakeGrids) BuildGrid(ctx context.Context, in cardgrid.Input) (*cardgrid.Grid, error) {
	f.mu.Lock()
	entered, proceed := f.entered, f.proceed
	f.entered = nil
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-proceed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.buildInputs = append(f.buildInputs, in)
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.grid, nil
}

func (f *fakeGrids) Invalidate(ctx context.Context, personID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, personID)
}

type fakeMutator struct {
	mu        sync.Mutex
	addErr    error
	deleteErr error
	addCalls  []models.RecordRequest
	deleted   []int64
	entered   chan struct{}
	proceed   chan struct{}
}

func (f *fakeMutator) AddVaccination(ctx context.Context, personID int64, req models.RecordRequest) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.proceed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, req)
	return f.addErr
}

func (f *fakeMutator) DeleteRecord(ctx context.Context, personID, recordID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, recordID)
	return f.deleteErr
}

func recordID(v int64) *int64  { return &v }
func appDate(s string) *string { return &s }

func testGrid() *cardgrid.Grid {
	return &cardgrid.Grid{
		Person: models.Person{ID: 4, Name: "Ana Souza", CPF: "52998224725"},
		Vaccines: []models.VaccineStatus{
			{
				VaccineID:   3,
				VaccineName: "Hepatitis B",
				Category:    models.CategoryRoutine,
				Doses: []models.DoseCell{
					{DoseType: models.DoseFirst, Status: models.StatusTaken, RecordID: recordID(10), ApplicationDate: appDate("2026-01-15")},
					{DoseType: models.DoseSecond, Status: models.StatusMissing},
					{DoseType: models.DoseThird, Status: models.StatusNotApplicable},
				},
			},
		},
	}
}

func loadedWorkflow(t *testing.T, grids *fakeGrids, mutator *fakeMutator) *Workflow {
	t.Helper()
	w := NewWorkflow(4, grids, mutator, logger.NewTestLogger(t))
	require.NoError(t, w.Load(context.Background()))
	return w
}

func TestOpenAddRequiresMissingCell(t *testing.T) {
	tests := []struct {
		name     string
		dose     models.DoseType
		wantOpen bool
	}{
		{name: "missing dose opens", dose: models.DoseSecond, wantOpen: true},
		{name: "taken dose rejected", dose: models.DoseFirst},
		{name: "not applicable dose rejected", dose: models.DoseThird},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := loadedWorkflow(t, &fakeGrids{grid: testGrid()}, &fakeMutator{})

			err := w.OpenAdd(3, tt.dose)
			if !tt.wantOpen {
				assert.Equal(t, stderrors.ErrCodeInvalidInput, stderrors.Code(err))
				assert.False(t, w.Modal().Open())
				return
			}

			require.NoError(t, err)
			modal := w.Modal()
			assert.Equal(t, ModalAdd, modal.Kind)
			assert.Equal(t, "Hepatitis B", modal.VaccineName)
			assert.Equal(t, tt.dose, modal.Draft.Dose)
		})
	}
}

func TestOpenViewDeleteRequiresTakenCell(t *testing.T) {
	w := loadedWorkflow(t, &fakeGrids{grid: testGrid()}, &fakeMutator{})

	err := w.OpenViewDelete(3, models.DoseSecond)
	assert.Equal(t, stderrors.ErrCodeInvalidInput, stderrors.Code(err))

	require.NoError(t, w.OpenViewDelete(3, models.DoseFirst))
	modal := w.Modal()
	assert.Equal(t, ModalViewDelete, modal.Kind)
	assert.Equal(t, int64(10), *modal.Cell.RecordID)
}

func TestOpenRejectsUnknownVaccine(t *testing.T) {
	w := loadedWorkflow(t, &fakeGrids{grid: testGrid()}, &fakeMutator{})

	err := w.OpenAdd(77, models.DoseSecond)
	assert.Equal(t, stderrors.ErrCodeVaccineNotFound, stderrors.Code(err))
}

func TestSubmitAddRefreshesUnderCurrentFilter(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{}
	w := loadedWorkflow(t, grids, mutator)

	seasonal := models.CategorySeasonal
	require.NoError(t, w.SetCategory(context.Background(), &seasonal))
	require.NoError(t, w.OpenAdd(3, models.DoseSecond))
	require.NoError(t, w.SubmitAdd(context.Background(), "2026-08-20"))

	require.Len(t, mutator.addCalls, 1)
	assert.Equal(t, models.RecordRequest{VaccineID: 3, Dose: models.DoseSecond, ApplicationDate: "2026-08-20"}, mutator.addCalls[0])

	assert.Equal(t, []int64{4}, grids.invalidated)
	assert.False(t, w.Modal().Open())

	last := grids.buildInputs[len(grids.buildInputs)-1]
	require.NotNil(t, last.Category, "refresh must keep the active category filter")
	assert.Equal(t, models.CategorySeasonal, *last.Category)
}

func TestSubmitAddRejectionKeepsDraftAndMessage(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{addErr: stderrors.NewValidationRejectedError("dose already registered", "")}
	w := loadedWorkflow(t, grids, mutator)

	require.NoError(t, w.OpenAdd(3, models.DoseSecond))
	err := w.SubmitAdd(context.Background(), "2026-08-20")
	assert.Equal(t, stderrors.ErrCodeValidationRejected, stderrors.Code(err))

	modal := w.Modal()
	assert.Equal(t, ModalAdd, modal.Kind, "failed submission returns to the add modal")
	assert.Equal(t, "2026-08-20", modal.Draft.ApplicationDate, "draft survives the failure")
	require.NotNil(t, modal.Err)
	assert.Equal(t, "dose already registered", modal.Err.Message)

	assert.Empty(t, grids.invalidated, "no invalidation on failure")

	// The draft can be resubmitted after the error.
	mutator.addErr = nil
	require.NoError(t, w.SubmitAdd(context.Background(), "2026-08-21"))
	assert.False(t, w.Modal().Open())
}

func TestConfirmDeleteRevokesRecord(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{}
	w := loadedWorkflow(t, grids, mutator)

	require.NoError(t, w.OpenViewDelete(3, models.DoseFirst))
	require.NoError(t, w.ConfirmDelete(context.Background()))

	assert.Equal(t, []int64{10}, mutator.deleted)
	assert.Equal(t, []int64{4}, grids.invalidated)
	assert.False(t, w.Modal().Open())
}

func TestConfirmDeleteFailureKeepsModal(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{deleteErr: stderrors.NewRecordNotFoundError("record 10")}
	w := loadedWorkflow(t, grids, mutator)

	require.NoError(t, w.OpenViewDelete(3, models.DoseFirst))
	err := w.ConfirmDelete(context.Background())
	assert.Equal(t, stderrors.ErrCodeRecordNotFound, stderrors.Code(err))

	modal := w.Modal()
	assert.Equal(t, ModalViewDelete, modal.Kind)
	require.NotNil(t, modal.Err)
}

func TestCancelDiscardsDraft(t *testing.T) {
	w := loadedWorkflow(t, &fakeGrids{grid: testGrid()}, &fakeMutator{})

	require.NoError(t, w.OpenAdd(3, models.DoseSecond))
	require.NoError(t, w.Cancel())
	assert.False(t, w.Modal().Open())

	// Reopening starts from a clean draft.
	require.NoError(t, w.OpenAdd(3, models.DoseSecond))
	assert.Empty(t, w.Modal().Draft.ApplicationDate)
}

func TestInFlightSubmissionBlocksReentry(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{
		entered: make(chan struct{}),
		proceed: make(chan struct{}),
	}
	w := loadedWorkflow(t, grids, mutator)
	require.NoError(t, w.OpenAdd(3, models.DoseSecond))

	done := make(chan error, 1)
	go func() {
		done <- w.SubmitAdd(context.Background(), "2026-08-20")
	}()

	select {
	case <-mutator.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the mutator")
	}

	assert.Equal(t, ModalSubmitting, w.Modal().Kind)
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.Cancel()))
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.SubmitAdd(context.Background(), "2026-08-20")))

	close(mutator.proceed)
	require.NoError(t, <-done)
	assert.False(t, w.Modal().Open())
}

func TestInFlightRefreshBlocksNewActions(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{}
	w := loadedWorkflow(t, grids, mutator)
	require.NoError(t, w.OpenAdd(3, models.DoseSecond))

	grids.mu.Lock()
	grids.entered = make(chan struct{})
	grids.proceed = make(chan struct{})
	grids.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- w.SubmitAdd(context.Background(), "2026-08-20")
	}()

	select {
	case <-grids.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	// The record is committed and the modal closed, but the refresh is still
	// outstanding: nothing else may start against the stale grid.
	assert.False(t, w.Modal().Open())
	ctx := context.Background()
	seasonal := models.CategorySeasonal
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.Load(ctx)))
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.SetCategory(ctx, &seasonal)))
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.OpenAdd(3, models.DoseSecond)))
	assert.Equal(t, stderrors.ErrCodeActionInFlight, stderrors.Code(w.SubmitAdd(ctx, "2026-08-20")))

	close(grids.proceed)
	require.NoError(t, <-done)

	// Settled: the workflow accepts actions again.
	require.NoError(t, w.Load(ctx))
}

func TestSetCategoryRejectedWhileModalOpen(t *testing.T) {
	w := loadedWorkflow(t, &fakeGrids{grid: testGrid()}, &fakeMutator{})
	require.NoError(t, w.OpenAdd(3, models.DoseSecond))

	seasonal := models.CategorySeasonal
	err := w.SetCategory(context.Background(), &seasonal)
	assert.Equal(t, stderrors.ErrCodeInvalidInput, stderrors.Code(err))
}

func TestRefreshFailureAfterCommitClosesModal(t *testing.T) {
	grids := &fakeGrids{grid: testGrid()}
	mutator := &fakeMutator{}
	w := loadedWorkflow(t, grids, mutator)

	require.NoError(t, w.OpenAdd(3, models.DoseSecond))
	grids.buildErr = stderrors.NewTransientFailureError(assert.AnError)

	err := w.SubmitAdd(context.Background(), "2026-08-20")
	assert.Equal(t, stderrors.ErrCodeTransientFailure, stderrors.Code(err))

	// The record is committed, so the modal must not reopen.
	assert.False(t, w.Modal().Open())
	require.Len(t, mutator.addCalls, 1)
}
