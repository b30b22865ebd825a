package client

import (
	"math"
	"sort"
	"sync"

	"mealmaker-backend/models"
)

// DisplayPercentage clamps a goal percentage to [0,100] for progress bars.
// The server value itself may exceed 100.
func DisplayPercentage(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CountUp returns steps animation frames easing from `from` to `to`. The
// last frame is always exactly `to`.
func CountUp(from, to float64, steps int) []float64 {
	if steps <= 1 || math.IsNaN(from) || math.IsInf(from, 0) {
		return []float64{to}
	}
	frames := make([]float64, steps)
	for i := 0; i < steps-1; i++ {
		t := float64(i+1) / float64(steps)
		eased := 1 - math.Pow(1-t, 3)
		frames[i] = from + (to-from)*eased
	}
	frames[steps-1] = to
	return frames
}

// FavoriteOverlay holds local favorite toggles that are not yet confirmed.
// Pending entries shadow the last fetched state until Reconcile replaces
// it with a fresh server list.
type FavoriteOverlay struct {
	mu      sync.Mutex
	server  map[string]bool
	pending map[string]bool
}

func NewFavoriteOverlay() *FavoriteOverlay {
	return &FavoriteOverlay{
		server:  make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// Toggle records a local intent. Toggling back to the server state drops
// the pending entry.
func (o *FavoriteOverlay) Toggle(name string, favorite bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.server[name] == favorite {
		delete(o.pending, name)
		return
	}
	o.pending[name] = favorite
}

// Revert drops a pending toggle, e.g. after the write failed.
func (o *FavoriteOverlay) Revert(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, name)
}

func (o *FavoriteOverlay) IsFavorite(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.pending[name]; ok {
		return v
	}
	return o.server[name]
}

func (o *FavoriteOverlay) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Reconcile adopts favorites as the authoritative state and clears every
// pending toggle. It returns the names whose pending value the server did
// not confirm.
func (o *FavoriteOverlay) Reconcile(favorites []models.FavoriteRecipe) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	server := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		server[f.Name] = true
	}

	var rejected []string
	for name, want := range o.pending {
		if server[name] != want {
			rejected = append(rejected, name)
		}
	}
	sort.Strings(rejected)
	o.server = server
	o.pending = make(map[string]bool)
	return rejected
}
