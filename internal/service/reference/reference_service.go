package reference

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"golang.org/x/sync/errgroup"
)

type ReferenceUseCase interface {
	Load(ctx context.Context) Reference
	DollarRate(ctx context.Context) domain.DollarRate
	Destinations(ctx context.Context) []domain.Destination
}

// Source is the backend API serving reference data.
type Source interface {
	Countries(ctx context.Context) ([]domain.Country, error)
	DollarRate(ctx context.Context) (*domain.DollarRate, error)
	Destinations(ctx context.Context) ([]domain.Destination, error)
}

type Cache interface {
	GetCountries(ctx context.Context) ([]domain.Country, error)
	SetCountries(ctx context.Context, countries []domain.Country) error
	GetDollarRate(ctx context.Context) (*domain.DollarRate, error)
	SetDollarRate(ctx context.Context, rate domain.DollarRate) error
	GetDestinations(ctx context.Context) ([]domain.Destination, error)
	SetDestinations(ctx context.Context, destinations []domain.Destination) error
}

// Reference is what the passenger step needs before rendering the form.
type Reference struct {
	Countries  []domain.Country  `json:"countries"`
	DollarRate domain.DollarRate `json:"dollar"`
}

type ReferenceService struct {
	source Source
	cache  Cache
	logger *slog.Logger
}

func NewReferenceService(source Source, cache Cache, logger *slog.Logger) *ReferenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceService{source: source, cache: cache, logger: logger}
}

// Load fetches countries and the exchange rate concurrently. The two
// fetches are independent: a failure of one is logged and leaves its
// default value without affecting the other. Cancelling ctx aborts both.
func (s *ReferenceService) Load(ctx context.Context) Reference {
	ref := Reference{
		Countries:  []domain.Country{},
		DollarRate: domain.DefaultDollarRate,
	}

	var g errgroup.Group
	g.Go(func() error {
		countries, err := s.countries(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "load countries failed", "error", err)
			return nil
		}
		ref.Countries = DedupCountries(countries)
		return nil
	})
	g.Go(func() error {
		rate, err := s.dollarRate(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "load dollar rate failed", "error", err)
			return nil
		}
		ref.DollarRate = *rate
		return nil
	})
	_ = g.Wait()

	return ref
}

// DollarRate returns the current exchange rate, or the default rate when it
// cannot be fetched.
func (s *ReferenceService) DollarRate(ctx context.Context) domain.DollarRate {
	rate, err := s.dollarRate(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load dollar rate failed", "error", err)
		return domain.DefaultDollarRate
	}
	return *rate
}

func (s *ReferenceService) Destinations(ctx context.Context) []domain.Destination {
	if s.cache != nil {
		if cached, err := s.cache.GetDestinations(ctx); err == nil && cached != nil {
			return cached
		}
	}

	destinations, err := s.source.Destinations(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load destinations failed", "error", err)
		return []domain.Destination{}
	}
	if s.cache != nil {
		_ = s.cache.SetDestinations(ctx, destinations)
	}
	return destinations
}

func (s *ReferenceService) countries(ctx context.Context) ([]domain.Country, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCountries(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	countries, err := s.source.Countries(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetCountries(ctx, countries)
	}
	return countries, nil
}

func (s *ReferenceService) dollarRate(ctx context.Context) (*domain.DollarRate, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetDollarRate(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rate, err := s.source.DollarRate(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetDollarRate(ctx, *rate)
	}
	return rate, nil
}

// DedupCountries keeps the first country seen for each abbreviation, or for
// each id when the abbreviation is empty, preserving order.
func DedupCountries(countries []domain.Country) []domain.Country {
	seen := make(map[string]struct{}, len(countries))
	out := make([]domain.Country, 0, len(countries))
	for _, c := range countries {
		key := "abbr:" + c.Abbreviation
		if c.Abbreviation == "" {
			key = "id:" + strconv.FormatInt(c.ID, 10)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

var _ ReferenceUseCase = (*ReferenceService)(nil)
