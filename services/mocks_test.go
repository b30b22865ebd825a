package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"mealmaker-backend/catalog"
	"mealmaker-backend/database"
	"mealmaker-backend/models"
	"mealmaker-backend/repository"

	"github.com/jackc/pgx/v5"
)

type mockTxRunner struct {
	calls int
	mu    sync.Mutex
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(database.Querier) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(nil)
}

type mockImpactRepo struct {
	mu     sync.Mutex
	events []models.ImpactEvent
	err    error
}

func (m *mockImpactRepo) CreateEvent(ctx context.Context, event *models.ImpactEvent) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *mockImpactRepo) GetEvent(ctx context.Context, id string) (*models.ImpactEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, fmt.Errorf("getting impact event: %w", pgx.ErrNoRows)
}

func (m *mockImpactRepo) UpdateEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id && m.events[i].Status == from {
			m.events[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *mockImpactRepo) ListEvents(ctx context.Context, userID string, limit int) ([]models.ImpactEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ImpactEvent
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockImpactRepo) PeriodTotals(ctx context.Context, userID string, from, to *time.Time) (models.PeriodTotals, error) {
	if m.err != nil {
		return models.PeriodTotals{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var t models.PeriodTotals
	for _, e := range m.events {
		if e.UserID != userID || e.Status != models.EventStatusActive {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !e.CreatedAt.Before(*to) {
			continue
		}
		t.WasteKg += e.TotalWasteKg
		t.MoneyUSD += e.TotalCostUSD
		t.CO2Kg += e.TotalCO2Kg
		t.EventCount++
	}
	return t, nil
}

func (m *mockImpactRepo) LifetimeMetrics(ctx context.Context, userID string) (models.LifetimeMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lm models.LifetimeMetrics
	for _, e := range m.events {
		if e.UserID != userID || e.Status != models.EventStatusActive {
			continue
		}
		lm.WasteKg += e.TotalWasteKg
		lm.MoneyUSD += e.TotalCostUSD
		lm.CO2Kg += e.TotalCO2Kg
		switch e.Source {
		case models.ImpactSourceRecipe:
			lm.RecipeEvents++
		case models.ImpactSourceFridgeShare:
			lm.FridgeShareEvents++
		}
	}
	return lm, nil
}

func (m *mockImpactRepo) WithTx(tx database.Querier) repository.ImpactRepository { return m }

type mockStatsRepo struct {
	mu     sync.Mutex
	stats  map[string]models.UserImpactStats
	badges []models.EarnedBadge
	locks  int
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{stats: make(map[string]models.UserImpactStats)}
}

func (m *mockStatsRepo) LockUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.locks++
	m.mu.Unlock()
	return nil
}

func (m *mockStatsRepo) GetStats(ctx context.Context, userID string) (*models.UserImpactStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return nil, fmt.Errorf("getting impact stats: %w", pgx.ErrNoRows)
	}
	return &s, nil
}

func (m *mockStatsRepo) SaveStreak(ctx context.Context, stats *models.UserImpactStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.stats[stats.UserID]
	if !ok {
		current = models.UserImpactStats{UserID: stats.UserID, WeeklyGoalKg: stats.WeeklyGoalKg}
	}
	current.CurrentStreak = stats.CurrentStreak
	current.LongestStreak = stats.LongestStreak
	current.LastActiveDate = stats.LastActiveDate
	m.stats[stats.UserID] = current
	return nil
}

func (m *mockStatsRepo) SaveWeeklyGoal(ctx context.Context, userID string, goalKg float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.stats[userID]
	current.UserID = userID
	current.WeeklyGoalKg = goalKg
	m.stats[userID] = current
	return nil
}

func (m *mockStatsRepo) GetEarnedBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EarnedBadge
	for _, b := range m.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStatsRepo) AddBadge(ctx context.Context, badge *models.EarnedBadge) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.badges {
		if b.UserID == badge.UserID && b.Type == badge.Type && b.Tier == badge.Tier {
			return false, nil
		}
	}
	m.badges = append(m.badges, *badge)
	return true, nil
}

func (m *mockStatsRepo) WithTx(tx database.Querier) repository.StatsRepository { return m }

type mockListingRepo struct {
	mu       sync.Mutex
	listings map[string]*models.FridgeListing
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{listings: make(map[string]*models.FridgeListing)}
}

func (m *mockListingRepo) Create(ctx context.Context, l *models.FridgeListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.CreatedAt = time.Now().UTC()
	copied := *l
	m.listings[l.ID] = &copied
	return nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*models.FridgeListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, fmt.Errorf("getting listing: %w", pgx.ErrNoRows)
	}
	copied := *l
	return &copied, nil
}

func (m *mockListingRepo) ListByStatus(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FridgeListing{}
	for _, l := range m.listings {
		if l.Status == status {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) ListByUser(ctx context.Context, userID string) ([]models.FridgeListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FridgeListing{}
	for _, l := range m.listings {
		if l.UserID == userID && l.Status != models.ListingStatusDeleted {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) Claim(ctx context.Context, id, claimedBy, claimedByName string) (*models.FridgeListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.Status != models.ListingStatusAvailable {
		return nil, nil
	}
	l.Status = models.ListingStatusClaimed
	l.ClaimedBy = &claimedBy
	l.ClaimedByName = &claimedByName
	copied := *l
	return &copied, nil
}

func (m *mockListingRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.Status == models.ListingStatusDeleted {
		return false, nil
	}
	l.Status = models.ListingStatusDeleted
	return true, nil
}

func (m *mockListingRepo) WithTx(tx database.Querier) repository.ListingRepository { return m }

type mockRecipeRepo struct {
	saved     []models.Recipe
	favorites []models.FavoriteRecipe
	terms     []string
}

func (m *mockRecipeRepo) Save(ctx context.Context, recipe *models.Recipe) error {
	recipe.CreatedAt = time.Now().UTC()
	m.saved = append(m.saved, *recipe)
	return nil
}

func (m *mockRecipeRepo) SearchByIngredients(ctx context.Context, terms []string, limit int) ([]models.Recipe, error) {
	m.terms = terms
	out := []models.Recipe{}
	for _, r := range m.saved {
		joined := strings.ToLower(strings.Join(r.Ingredients, "\n"))
		all := true
		for _, t := range terms {
			if !strings.Contains(joined, t) {
				all = false
				break
			}
		}
		if all {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecipeRepo) AddFavorite(ctx context.Context, fav *models.FavoriteRecipe) error {
	for i, f := range m.favorites {
		if f.UserID == fav.UserID && f.Name == fav.Name {
			fav.ID = f.ID
			m.favorites[i] = *fav
			return nil
		}
	}
	m.favorites = append(m.favorites, *fav)
	return nil
}

func (m *mockRecipeRepo) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error) {
	out := []models.FavoriteRecipe{}
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

type mockStorage struct {
	uploads map[string][]byte
	deleted []string
	err     error
}

func (m *mockStorage) Upload(ctx context.Context, bucket, filename string, file io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[bucket+"/"+filename] = buf.Bytes()
	return "https://cdn.test/" + bucket + "/" + filename, nil
}

func (m *mockStorage) Delete(ctx context.Context, bucket, filename string) error {
	m.deleted = append(m.deleted, bucket+"/"+filename)
	return m.err
}

func (m *mockStorage) ObjectName(bucket, publicURL string) (string, bool) {
	prefix := "https://cdn.test/" + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

type mockGenerator struct {
	answer string
	err    error
	calls  int
}

func (m *mockGenerator) GenerateRecipes(ctx context.Context, image []byte, mimeType string) (string, error) {
	m.calls++
	return m.answer, m.err
}

func testCatalog() *catalog.Catalog {
	c, err := catalog.Default()
	if err != nil {
		panic(err)
	}
	return c
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestImpactService(clock *fixedClock) (*impactService, *mockImpactRepo, *mockStatsRepo) {
	impactRepo := &mockImpactRepo{}
	statsRepo := newMockStatsRepo()
	svc := NewImpactService(impactRepo, statsRepo, &mockTxRunner{}, testCatalog()).(*impactService)
	svc.now = clock.Now
	return svc, impactRepo, statsRepo
}

func qty(v float64) *float64 {
	return &v
}
