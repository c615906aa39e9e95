// Package matching implements fuzzy duplicate detection for customer records
package matching

import (
	"context"
	"sort"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// CustomerStore retrieves candidate customers for scoring. Each method
// takes an already-normalized value and returns server-side filtered
// rows only.
type CustomerStore interface {
	GetByTaxID(ctx context.Context, taxID string) ([]models.Customer, error)
	SearchByPhoneSubstring(ctx context.Context, digits string) ([]models.Customer, error)
	SearchByName(ctx context.Context, name string) ([]models.Customer, error)
}

const (
	minUsableNameLength  = 3
	minUsablePhoneDigits = 5
	completeTaxIDLength  = 8
)

// EngineConfig holds the tunable matching knobs.
type EngineConfig struct {
	DefaultThreshold int
	MaxCandidates    int
}

func DefaultConfig() EngineConfig {
	return EngineConfig{
		DefaultThreshold: 65,
		MaxCandidates:    100,
	}
}

// Engine runs duplicate searches against a customer store. It holds no
// per-search state and is safe for concurrent use.
type Engine struct {
	logger ectologger.Logger
	store  CustomerStore
	scorer *Scorer
	cfg    EngineConfig
}

func NewEngine(store CustomerStore, logger ectologger.Logger, cfg EngineConfig) *Engine {
	return &Engine{
		logger: logger,
		store:  store,
		scorer: NewScorer(),
		cfg:    cfg,
	}
}

// FindPotentialDuplicates retrieves, scores and ranks candidate
// duplicates for the given input. Candidates scoring below threshold are
// dropped; pass a negative threshold to use the configured default.
// Duplicate detection is advisory, so a panic anywhere below is
// recovered and reported as an empty result rather than failing the
// caller's write path.
func (e *Engine) FindPotentialDuplicates(ctx context.Context, input models.DuplicateSearchInput, threshold int) (matches []models.DuplicateMatch, err error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.FindPotentialDuplicates")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithContext(ctx).WithFields(map[string]any{"panic": r}).Error("Recovered panic during duplicate search")
			matches = []models.DuplicateMatch{}
			err = nil
		}
	}()

	input = input.Cleaned()
	if input.IsBlank() {
		return []models.DuplicateMatch{}, nil
	}

	if threshold < 0 {
		threshold = e.cfg.DefaultThreshold
	}

	candidates := e.retrieveCandidates(ctx, input)

	matches = make([]models.DuplicateMatch, 0, len(candidates))
	for _, candidate := range candidates {
		scores := FieldScores{
			Name:  e.scorer.NameSimilarity(input.CompanyName, candidate.CompanyName),
			Phone: e.scorer.PhoneSimilarity(input.Phone, candidate.Phone),
			TaxID: e.scorer.TaxIDSimilarity(input.TaxID, candidate.TaxID),
		}

		score := e.scorer.CombineScores(input, scores)
		if score < threshold {
			continue
		}

		matches = append(matches, models.DuplicateMatch{
			Customer:     candidate,
			Score:        score,
			MatchReasons: scores.Reasons(),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > e.cfg.MaxCandidates {
		matches = matches[:e.cfg.MaxCandidates]
	}

	return matches, nil
}

// retrieveCandidates runs the retrieval branches for every usable input
// field and unions the results. A failed branch degrades to a partial
// candidate set instead of failing the search.
func (e *Engine) retrieveCandidates(ctx context.Context, input models.DuplicateSearchInput) []models.Customer {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.retrieveCandidates")
	defer span.End()

	name := normalizers.NormalizeText(input.CompanyName)
	phoneDigits := normalizers.NormalizePhone(input.Phone)
	taxDigits := normalizers.NormalizeTaxID(input.TaxID)

	nameUsable := len([]rune(name)) >= minUsableNameLength
	phoneUsable := len(phoneDigits) >= minUsablePhoneDigits
	taxUsable := len(taxDigits) == completeTaxIDLength

	if phoneUsable && !nameUsable && !taxUsable {
		customers, err := e.store.SearchByPhoneSubstring(ctx, phoneDigits)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).Warn("Candidate query failed; skipping branch")
			return nil
		}
		return customers
	}

	type branch struct {
		name  string
		fetch func(context.Context) ([]models.Customer, error)
	}

	var branches []branch
	if taxUsable {
		branches = append(branches, branch{"tax_id", func(ctx context.Context) ([]models.Customer, error) {
			return e.store.GetByTaxID(ctx, taxDigits)
		}})
	}
	if phoneUsable {
		branches = append(branches, branch{"phone", func(ctx context.Context) ([]models.Customer, error) {
			return e.store.SearchByPhoneSubstring(ctx, phoneDigits)
		}})
	}
	if nameUsable {
		branches = append(branches, branch{"company_name", func(ctx context.Context) ([]models.Customer, error) {
			return e.store.SearchByName(ctx, name)
		}})
	}

	// Each branch writes only its own slot, so no mutex is needed.
	results := make([][]models.Customer, len(branches))
	var wg sync.WaitGroup
	for i, b := range branches {
		wg.Add(1)
		go func(i int, b branch) {
			defer wg.Done()
			customers, err := b.fetch(ctx)
			if err != nil {
				e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"branch": b.name}).Warn("Candidate query failed; skipping branch")
				return
			}
			results[i] = customers
		}(i, b)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var candidates []models.Customer
	for _, result := range results {
		for _, customer := range result {
			if seen[customer.ID] {
				continue
			}
			seen[customer.ID] = true
			candidates = append(candidates, customer)
		}
	}

	return candidates
}

// FindByPhoneWithNameBoost searches by phone substring and optionally
// boosts scores with a company name. Unlike FindPotentialDuplicates no
// threshold is applied; callers get every phone hit ranked.
func (e *Engine) FindByPhoneWithNameBoost(ctx context.Context, phone, companyName string) (matches []models.DuplicateMatch, err error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.FindByPhoneWithNameBoost")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithContext(ctx).WithFields(map[string]any{"panic": r}).Error("Recovered panic during phone search")
			matches = []models.DuplicateMatch{}
			err = nil
		}
	}()

	digits := normalizers.NormalizePhone(phone)
	if digits == "" {
		return []models.DuplicateMatch{}, nil
	}

	customers, err := e.store.SearchByPhoneSubstring(ctx, digits)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Candidate query failed; skipping branch")
		return []models.DuplicateMatch{}, nil
	}

	nameSupplied := normalizers.NormalizeText(companyName) != ""

	matches = make([]models.DuplicateMatch, 0, len(customers))
	for _, candidate := range customers {
		scores := FieldScores{
			Phone: e.scorer.PhoneSimilarity(phone, candidate.Phone),
		}
		if nameSupplied {
			scores.Name = e.scorer.NameSimilarity(companyName, candidate.CompanyName)
		}

		matches = append(matches, models.DuplicateMatch{
			Customer:     candidate,
			Score:        e.scorer.CombinePhoneNameBoost(scores.Phone, scores.Name, nameSupplied),
			MatchReasons: scores.Reasons(),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > e.cfg.MaxCandidates {
		matches = matches[:e.cfg.MaxCandidates]
	}

	return matches, nil
}
