package matching

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

type fakeStore struct {
	mu         sync.Mutex
	customers  []models.Customer
	taxCalls   int
	phoneCalls int
	nameCalls  int
	failTax    bool
	failPhone  bool
	panicPhone bool
}

func (f *fakeStore) GetByTaxID(ctx context.Context, taxID string) ([]models.Customer, error) {
	f.mu.Lock()
	f.taxCalls++
	f.mu.Unlock()

	if f.failTax {
		return nil, assert.AnError
	}

	var result []models.Customer
	for _, c := range f.customers {
		if normalizers.NormalizeTaxID(c.TaxID) == taxID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeStore) SearchByPhoneSubstring(ctx context.Context, digits string) ([]models.Customer, error) {
	f.mu.Lock()
	f.phoneCalls++
	f.mu.Unlock()

	if f.panicPhone {
		panic("store blew up")
	}
	if f.failPhone {
		return nil, assert.AnError
	}

	var result []models.Customer
	for _, c := range f.customers {
		if strings.Contains(normalizers.DigitsOnly(c.Phone), digits) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeStore) SearchByName(ctx context.Context, name string) ([]models.Customer, error) {
	f.mu.Lock()
	f.nameCalls++
	f.mu.Unlock()

	var result []models.Customer
	for _, c := range f.customers {
		normalized := normalizers.NormalizeText(c.CompanyName)
		if normalized == name {
			result = append(result, c)
			continue
		}

		matched := true
		for _, token := range strings.Fields(name) {
			if len([]rune(token)) < 2 {
				continue
			}
			if !strings.Contains(normalized, token) {
				matched = false
				break
			}
		}
		if matched {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeStore) calls() (tax, phone, name int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taxCalls, f.phoneCalls, f.nameCalls
}

func newTestEngine(store CustomerStore) *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(store, logger, DefaultConfig())
}

func TestFindPotentialDuplicates_BlankInputQueriesNothing(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		CompanyName: "   ",
		Phone:       "",
		TaxID:       "  ",
	}, -1)

	require.NoError(t, err)
	assert.Empty(t, matches)

	tax, phone, name := store.calls()
	assert.Equal(t, 0, tax)
	assert.Equal(t, 0, phone)
	assert.Equal(t, 0, name)
}

func TestFindPotentialDuplicates_ExactNameMatch(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "ALPHA SERVICES", Phone: "2101234567", TaxID: "99887766"},
		{ID: "c2", CompanyName: "Unrelated Trading", Phone: "2109999999", TaxID: "11223344"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		CompanyName: "alpha services",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.True(t, matches[0].MatchReasons.CompanyName)
	assert.False(t, matches[0].MatchReasons.Phone)
	assert.False(t, matches[0].MatchReasons.TaxID)
}

func TestFindPotentialDuplicates_PhoneOnlyFastPath(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Alpha Services", Phone: "6912345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		Phone: "691234",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 75, matches[0].Score)
	assert.True(t, matches[0].MatchReasons.Phone)

	tax, phone, name := store.calls()
	assert.Equal(t, 0, tax)
	assert.Equal(t, 1, phone)
	assert.Equal(t, 0, name)
}

func TestFindPotentialDuplicates_ExactPhone(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Alpha Services", Phone: "691-234-5678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		Phone: "6912345678",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 85, matches[0].Score)
}

func TestFindPotentialDuplicates_ExactTaxIDIsConclusive(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Totally Unrelated Name", Phone: "2101234567", TaxID: "12345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		CompanyName: "Alpha Services",
		TaxID:       "EL-12345678",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].Score)
	assert.True(t, matches[0].MatchReasons.TaxID)
}

func TestFindPotentialDuplicates_ThresholdFiltersAndSorts(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "partial", Phone: "6912345678"},
		{ID: "exact", Phone: "691234"},
	}}
	engine := newTestEngine(store)

	input := models.DuplicateSearchInput{Phone: "691234"}

	defaulted, err := engine.FindPotentialDuplicates(context.Background(), input, -1)
	require.NoError(t, err)
	require.Len(t, defaulted, 2)
	assert.Equal(t, "exact", defaulted[0].ID)
	assert.Equal(t, []int{85, 75}, []int{defaulted[0].Score, defaulted[1].Score})

	strict, err := engine.FindPotentialDuplicates(context.Background(), input, 80)
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, "exact", strict[0].ID)
}

func TestFindPotentialDuplicates_FailedBranchDegrades(t *testing.T) {
	store := &fakeStore{
		failTax: true,
		customers: []models.Customer{
			{ID: "c1", CompanyName: "Alpha Services", TaxID: "12345678"},
		},
	}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		CompanyName: "Alpha Services",
		TaxID:       "12345678",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ID)

	tax, _, name := store.calls()
	assert.Equal(t, 1, tax)
	assert.Equal(t, 1, name)
}

func TestFindPotentialDuplicates_RecoversStorePanic(t *testing.T) {
	store := &fakeStore{panicPhone: true}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		Phone: "6912345678",
	}, -1)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindPotentialDuplicates_DeduplicatesAcrossBranches(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Alpha Services", Phone: "6912345678", TaxID: "12345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindPotentialDuplicates(context.Background(), models.DuplicateSearchInput{
		CompanyName: "Alpha Services",
		Phone:       "6912345678",
		TaxID:       "12345678",
	}, -1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].Score)
}

func TestFindByPhoneWithNameBoost(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "both", CompanyName: "Alpha Services", Phone: "6912345678"},
		{ID: "phone-only", CompanyName: "Beta Holdings", Phone: "6912345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindByPhoneWithNameBoost(context.Background(), "6912345678", "Alpha Services")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "both", matches[0].ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, "phone-only", matches[1].ID)
	assert.True(t, matches[1].Score < 100)
}

func TestFindByPhoneWithNameBoost_StrongNameCappedAt95(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Alpha", Phone: "6912345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindByPhoneWithNameBoost(context.Background(), "6912345678", "Alpha Services")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 95, matches[0].Score)
}

func TestFindByPhoneWithNameBoost_NoName(t *testing.T) {
	store := &fakeStore{customers: []models.Customer{
		{ID: "c1", CompanyName: "Alpha Services", Phone: "6912345678"},
	}}
	engine := newTestEngine(store)

	matches, err := engine.FindByPhoneWithNameBoost(context.Background(), "691234", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 75, matches[0].Score)
	assert.False(t, matches[0].MatchReasons.CompanyName)
}

func TestFindByPhoneWithNameBoost_BlankPhoneQueriesNothing(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store)

	matches, err := engine.FindByPhoneWithNameBoost(context.Background(), "  ", "Alpha Services")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, phone, _ := store.calls()
	assert.Equal(t, 0, phone)
}
