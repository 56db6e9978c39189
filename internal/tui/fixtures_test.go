package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/domain"
)

type fakeMarket struct {
	mu        sync.Mutex
	products  []domain.Product
	favorites []domain.Favorite
	err       error
	queries   []string
	toggled   []int64
}

func (f *fakeMarket) ProductsByStatus(context.Context, domain.ProductStatus) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeMarket) SearchProducts(_ context.Context, q string) ([]domain.Product, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.products[:1], f.err
}

func (f *fakeMarket) UserFavorites(context.Context, int64) ([]domain.Favorite, error) {
	return f.favorites, nil
}

func (f *fakeMarket) ToggleFavorite(_ context.Context, _ int64, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.toggled = append(f.toggled, productID)
	return true, nil
}

var errBackend = errors.New("backend down")

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 11, Title: "VinFast VF e34", Price: 450000000, ProductType: "vehicle", Brand: "VinFast", Year: 2022, Status: "Approved"},
		{ID: 12, Title: "CATL 60kWh pack", Price: 98000000, ProductType: "battery", BatteryCapacity: 60, Status: "approved"},
	}
}

func seededInbox(t *testing.T, userID int64, n int) *notify.MemoryStore {
	t.Helper()
	store := notify.NewMemoryStore()
	base := time.Now().Add(-time.Hour)
	i := 0
	store.SetClock(func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	})
	for k := 0; k < n; k++ {
		if _, err := store.Create(context.Background(), domain.NewNotification{
			UserID:  userID,
			Type:    domain.NotifyPostApproved,
			Title:   "Listing approved " + string(rune('A'+k)),
			Content: "Your listing is live",
		}); err != nil {
			t.Fatal(err)
		}
	}
	return store
}
