// internal/engine/personsearch/service.go
package personsearch

import (
	"context"
	"fmt"
	"sync"

	"vaccard/internal/common/errors"
	"vaccard/internal/common/logger"
	"vaccard/internal/common/metrics"
	"vaccard/internal/models"
)

// Browser unifies paginated person listing with CPF point lookup. The
// listing position survives a lookup: clearing the search returns to the
// exact page and sort that were on display before it.
type Browser struct {
	config *Config
	client Lister
	logger logger.Logger

	mu           sync.Mutex
	busy         bool
	loaded       bool
	listingIndex int
	view         View
}

func NewBrowser(config *Config, client Lister, log logger.Logger) (*Browser, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid personsearch config: %w", err)
	}
	return &Browser{
		config: config,
		client: client,
		logger: log,
		view:   View{Mode: ModeListing},
	}, nil
}

// View returns the current result set.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// CanNext reports whether a next listing page exists.
func (b *Browser) CanNext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded && b.view.Mode == ModeListing && !b.view.Page.Last
}

// CanPrev reports whether a previous listing page exists.
func (b *Browser) CanPrev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded && b.view.Mode == ModeListing && !b.view.Page.First
}

// Load fetches the first listing page.
func (b *Browser) Load(ctx context.Context) error {
	return b.GoToPage(ctx, 0)
}

// GoToPage fetches one listing page. Rejected during a lookup; the search
// must be cleared first so the retained position stays meaningful.
func (b *Browser) GoToPage(ctx context.Context, index int) error {
	if index < 0 {
		return errors.NewInvalidInputError(fmt.Sprintf("negative page index %d", index))
	}

	b.mu.Lock()
	if b.view.Mode == ModeLookup {
		b.mu.Unlock()
		return errors.NewInvalidInputError("pagination is unavailable during a lookup, clear the search first")
	}
	if b.busy {
		b.mu.Unlock()
		return errors.NewActionInFlightError("list_persons")
	}
	b.busy = true
	b.mu.Unlock()

	return b.fetchListing(ctx, index)
}

// Next advances one listing page. Before Load, and on the last page, it
// issues no request.
func (b *Browser) Next(ctx context.Context) error {
	b.mu.Lock()
	if !b.loaded || b.view.Mode == ModeLookup || b.view.Page.Last {
		b.mu.Unlock()
		return nil
	}
	index := b.listingIndex + 1
	b.mu.Unlock()
	return b.GoToPage(ctx, index)
}

// Prev steps back one listing page. Before Load, and on the first page, it
// issues no request.
func (b *Browser) Prev(ctx context.Context) error {
	b.mu.Lock()
	if !b.loaded || b.view.Mode == ModeLookup || b.view.Page.First {
		b.mu.Unlock()
		return nil
	}
	index := b.listingIndex - 1
	b.mu.Unlock()
	return b.GoToPage(ctx, index)
}

// SearchCPF resolves one person by CPF. A hit replaces the view with a
// synthetic page of one; a miss clears the results. Either way the listing
// position is retained for ClearSearch.
func (b *Browser) SearchCPF(ctx context.Context, cpf string) error {
	if cpf == "" {
		return errors.NewInvalidInputError("empty cpf")
	}

	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return errors.NewActionInFlightError("search_person")
	}
	b.busy = true
	b.mu.Unlock()

	person, err := b.client.SearchPersonByCPF(ctx, cpf)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false

	if err != nil {
		if errors.IsNotFound(err) {
			metrics.SearchRequests.WithLabelValues("lookup", "miss").Inc()
			b.view = View{Mode: ModeLookup, Page: emptyPage(), Query: cpf}
			return err
		}
		metrics.SearchRequests.WithLabelValues("lookup", "error").Inc()
		return err
	}

	metrics.SearchRequests.WithLabelValues("lookup", "hit").Inc()
	b.view = View{Mode: ModeLookup, Page: models.PageOfOne(*person), Query: cpf}
	return nil
}

// ClearSearch leaves lookup mode and restores the exact listing page that
// was on display before the search, same index and sort.
func (b *Browser) ClearSearch(ctx context.Context) error {
	b.mu.Lock()
	if b.view.Mode != ModeLookup {
		b.mu.Unlock()
		return nil
	}
	if b.busy {
		b.mu.Unlock()
		return errors.NewActionInFlightError("list_persons")
	}
	b.busy = true
	index := b.listingIndex
	b.mu.Unlock()

	// The lookup view stays on display until the listing fetch succeeds, so
	// a transient failure never leaves a blank screen.
	return b.fetchListing(ctx, index)
}

// DeletePerson removes a person and refetches the listing page of the same
// index, so the view reflects the deletion without losing the position. A
// lookup over the deleted person falls back to the retained listing page.
func (b *Browser) DeletePerson(ctx context.Context, personID int64) error {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return errors.NewActionInFlightError("delete_person")
	}
	b.busy = true
	index := b.listingIndex
	b.mu.Unlock()

	if err := b.client.DeletePerson(ctx, personID); err != nil {
		b.mu.Lock()
		b.busy = false
		b.mu.Unlock()
		return err
	}

	return b.fetchListing(ctx, index)
}

// fetchListing performs the listing request and settles the busy flag. The
// caller must have set busy before calling.
func (b *Browser) fetchListing(ctx context.Context, index int) error {
	page, err := b.client.ListPersons(ctx, index, b.config.PageSize, b.config.Sort)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false

	if err != nil {
		metrics.SearchRequests.WithLabelValues("listing", "error").Inc()
		b.logger.WithError(err).Error("person listing failed", map[string]interface{}{"page": index})
		return err
	}

	metrics.SearchRequests.WithLabelValues("listing", "success").Inc()
	b.loaded = true
	b.listingIndex = index
	b.view = View{Mode: ModeListing, Page: *page}
	return nil
}

func emptyPage() models.PersonPage {
	return models.PersonPage{
		Content: []models.Person{},
		First:   true,
		Last:    true,
		Empty:   true,
	}
}
