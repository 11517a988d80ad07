package catalog

import (
	"appdeck/internal/components/assert"
	"appdeck/internal/components/telemetry"
	"appdeck/internal/favorites"
	"appdeck/internal/scrapers/playstore"
	"appdeck/pkg/jsontree"
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("appdeck/internal/catalog")

const (
	report_service_load   = "service.load"
	report_service_toggle = "service.toggle"
)

const DefaultRetainPrevious = 12 * time.Hour

// PageSource transfers the raw text of a page.
type PageSource interface {
	Fetch(ctx context.Context, req playstore.PageRequest) (string, error)
}

// FavoriteSource is a stream of favorite sets, it must emit the current set
// first and close the channel once ctx is done.
type FavoriteSource interface {
	Observe(ctx context.Context) <-chan favorites.Set
}

type FavoriteToggler interface {
	Toggle(ctx context.Context, identifier string) (bool, error)
}

// Favorites is what the service needs from the favorites store.
type Favorites interface {
	FavoriteSource
	FavoriteToggler
}

type Options struct {
	Request playstore.PageRequest

	// CallbackName and Marker select the callback invocation that carries the
	// catalog, they default to playstore.DefaultCallbackName and
	// playstore.DefaultMarker.
	CallbackName string
	Marker       string

	Reconstruct playstore.ReconstructOptions

	// RetainPrevious is how long the last successful catalog is kept around to be
	// attached to failures, 0 means DefaultRetainPrevious and a negative value
	// disables retention.
	RetainPrevious time.Duration
}

// Parser turns the text of a developer page into an assembled catalog.
type Parser struct {
	extractor     playstore.Extractor
	reconstructor playstore.Reconstructor
}

func NewParser(opts Options) (Parser, error) {
	if opts.CallbackName == "" {
		opts.CallbackName = playstore.DefaultCallbackName
	}
	if opts.Marker == "" {
		opts.Marker = playstore.DefaultMarker
	}
	extractor, err := playstore.NewExtractor(opts.CallbackName, opts.Marker)
	if err != nil {
		return Parser{}, err
	}
	return Parser{
		extractor:     extractor,
		reconstructor: playstore.NewReconstructor(opts.Reconstruct),
	}, nil
}

// Parse never panics, a panic while processing the page is returned as an error.
func (p Parser) Parse(page string) (records []playstore.AppRecord, err error) {
	defer func() {
		r := recover()
		if r != nil {
			records = nil
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	payload, ok := p.extractor.Extract(page)
	if !ok {
		return nil, playstore.ErrPayloadNotFound
	}
	root, err := jsontree.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("parse catalog payload: %w", err)
	}
	return Assemble(p.reconstructor.Reconstruct(root)), nil
}

type Service struct {
	source    PageSource
	favorites Favorites
	request   playstore.PageRequest
	parser    Parser
	previous  *expirable.LRU[string, []playstore.AppRecord]
	tel       telemetry.API
}

func NewService(source PageSource, favorites Favorites, opts Options, tel telemetry.API) (*Service, error) {
	assert.NotNil(source)
	assert.NotNil(favorites)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Request.Url)

	parser, err := NewParser(opts)
	if err != nil {
		return nil, err
	}

	var previous *expirable.LRU[string, []playstore.AppRecord]
	switch {
	case opts.RetainPrevious == 0:
		previous = expirable.NewLRU[string, []playstore.AppRecord](16, nil, DefaultRetainPrevious)
	case opts.RetainPrevious > 0:
		previous = expirable.NewLRU[string, []playstore.AppRecord](16, nil, opts.RetainPrevious)
	}

	return &Service{
		source:    source,
		favorites: favorites,
		request:   opts.Request,
		parser:    parser,
		previous:  previous,
		tel:       telemetry.NewScopedAPI("catalog", tel),
	}, nil
}

// Load runs a single fetch of the catalog synchronously.
func (s *Service) Load(ctx context.Context) ([]playstore.AppRecord, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	span.SetAttributes(attribute.String("url", s.request.Url))

	page, err := s.source.Fetch(ctx, s.request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records, err := s.parser.Parse(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(records)))

	return records, nil
}

// FetchCatalog makes one attempt at loading the catalog. The returned stream
// emits Loading, then a single Success or Error, then closes. If ctx is done
// before the attempt finishes the stream closes without a terminal outcome.
func (s *Service) FetchCatalog(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome)
	go func() {
		defer close(out)

		if !send(ctx, out, Loading()) {
			return
		}

		records, err := s.Load(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			send(ctx, out, s.failure(err))
			return
		}

		if s.previous != nil {
			s.previous.Add(s.request.Url, records)
		}
		send(ctx, out, Success(records))
	}()
	return out
}

func (s *Service) failure(err error) Outcome {
	kind := Classify(err)
	if kind == UnknownFailure {
		s.tel.ReportBroken(report_service_load, err)
	} else {
		s.tel.ReportWarning(report_service_load, kind.String(), err)
	}

	var previous []playstore.AppRecord
	if s.previous != nil {
		previous, _ = s.previous.Get(s.request.Url)
	}
	return Failure(kind, err, previous)
}

// WatchCatalog makes one attempt immediately and another one for every value
// received on refresh. Attempts never overlap. The stream closes once refresh
// is closed (or nil) and the attempt in flight has finished, or when ctx is done.
func (s *Service) WatchCatalog(ctx context.Context, refresh <-chan struct{}) <-chan Outcome {
	out := make(chan Outcome)
	go func() {
		defer close(out)

		for {
			for outcome := range s.FetchCatalog(ctx) {
				if !send(ctx, out, outcome) {
					return
				}
			}
			if refresh == nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-refresh:
				if !ok {
					return
				}
			}
		}
	}()
	return out
}

// ObserveFavoriteCatalog is the catalog restricted to the favorite apps. It
// follows WatchCatalog, every Success is replaced by the favorite subset of its
// records, recomputed whenever the favorites change.
func (s *Service) ObserveFavoriteCatalog(ctx context.Context, refresh <-chan struct{}) <-chan Outcome {
	outerCtx, cancelOuter := context.WithCancel(ctx)
	return compose(ctx, s.WatchCatalog(outerCtx, refresh), s.favorites, cancelOuter)
}

// ToggleFavorite flips the membership of identifier, the new view is delivered
// to observers through the favorites stream.
func (s *Service) ToggleFavorite(ctx context.Context, identifier string) (bool, error) {
	favorite, err := s.favorites.Toggle(ctx, identifier)
	if err != nil {
		s.tel.ReportBroken(report_service_toggle, err, identifier)
		return false, err
	}
	return favorite, nil
}

// send delivers v unless ctx is done first.
func send(ctx context.Context, out chan<- Outcome, v Outcome) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
