package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quickkart/storefront-gateway/pkg/pagination"
)

type pageMeter interface {
	IncHistoryPage(kind string)
	IncStaleDiscarded()
}

// Pager fetches order history for a date range one page at a time and
// accumulates the records in arrival order. Each fetch is tagged with a
// generation number; a response arriving after the range changed is discarded
// instead of merged. A fetch that loses its generation must not touch
// inFlight either: the SetDateRange call that superseded it has already taken
// ownership of the flag for the new generation.
type Pager struct {
	api      HistoryAPI
	pageSize int
	metrics  pageMeter

	mu         sync.Mutex
	generation uint64
	inFlight   bool
	ready      bool
	from, to   time.Time
	records    []Record
	page       int
	hasNext    bool
	total      int
}

// NewPager builds a history pager over the provided API.
func NewPager(api HistoryAPI, pageSize int, metrics pageMeter) (*Pager, error) {
	if api == nil {
		return nil, fmt.Errorf("history api required")
	}
	return &Pager{
		api:      api,
		pageSize: pagination.NormalizePageSize(pageSize),
		metrics:  metrics,
	}, nil
}

// HistoryView is a copy of the pager's accumulated state.
type HistoryView struct {
	Records    []Record `json:"records"`
	PageNumber int      `json:"pageNumber"`
	HasNext    bool     `json:"hasNextPage"`
	TotalCount int      `json:"totalCount"`
}

// SetDateRange supersedes any outstanding fetch, resets to page one and loads
// the first page for the new range. A reply for an older range that lands
// after this call is dropped on arrival. The range itself is committed only
// when its first page arrives: on failure the pager keeps the prior range and
// its accumulated records, so a later LoadNextPage still pages the old range.
func (p *Pager) SetDateRange(ctx context.Context, from, to time.Time) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.inFlight = true
	p.mu.Unlock()

	page, err := p.api.List(ctx, from, to, pagination.Page{Number: pagination.FirstPage, Size: p.pageSize})

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		p.countStale()
		return nil
	}
	p.inFlight = false
	if err != nil {
		return err
	}

	p.from, p.to = from, to
	p.records = append([]Record(nil), page.Records...)
	p.page = pagination.FirstPage
	p.hasNext = page.HasNext
	p.total = page.TotalCount
	p.ready = true
	p.countPage("first")
	return nil
}

// LoadNextPage appends the next page for the current range. It is a no-op
// when no range is loaded, a fetch is already in flight, or the backend
// reported no further pages.
func (p *Pager) LoadNextPage(ctx context.Context) error {
	p.mu.Lock()
	if !p.ready || p.inFlight || !p.hasNext {
		p.mu.Unlock()
		return nil
	}
	gen := p.generation
	next := p.page + 1
	from, to := p.from, p.to
	p.inFlight = true
	p.mu.Unlock()

	page, err := p.api.List(ctx, from, to, pagination.Page{Number: next, Size: p.pageSize})

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		p.countStale()
		return nil
	}
	p.inFlight = false
	if err != nil {
		return err
	}

	p.records = append(p.records, page.Records...)
	p.page = next
	p.hasNext = page.HasNext
	p.total = page.TotalCount
	p.countPage("next")
	return nil
}

// Snapshot returns a copy of the accumulated history state.
func (p *Pager) Snapshot() HistoryView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return HistoryView{
		Records:    append([]Record(nil), p.records...),
		PageNumber: p.page,
		HasNext:    p.hasNext,
		TotalCount: p.total,
	}
}

func (p *Pager) countPage(kind string) {
	if p.metrics != nil {
		p.metrics.IncHistoryPage(kind)
	}
}

func (p *Pager) countStale() {
	if p.metrics != nil {
		p.metrics.IncStaleDiscarded()
	}
}
