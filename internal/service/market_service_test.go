package service

import (
	"context"
	"errors"
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func market(p domain.Provider, id, question string) domain.NormalizedMarket {
	return domain.NormalizedMarket{
		Provider: p,
		ID:       id,
		Slug:     id,
		Question: question,
		Outcomes: []domain.Outcome{
			{Name: "Yes", YesPrice: 0.5, NoPrice: 0.5, Active: true},
			{Name: "No", YesPrice: 0.5, NoPrice: 0.5, Active: true},
		},
	}
}

func newMarketService(clients ...ProviderClient) (*MarketService, *fakeCache) {
	cache := newFakeCache()
	return NewMarketService(clients, cache, testLogger()), cache
}

func TestGetCachesDetailLookups(t *testing.T) {
	client := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "m1", "Will it rain?")},
	}
	svc, cache := newMarketService(client)

	got, err := svc.Get(context.Background(), domain.ProviderPolymarket, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Question != "Will it rain?" {
		t.Errorf("question = %q", got.Question)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	// Second lookup must come from the cache.
	if _, err := svc.Get(context.Background(), domain.ProviderPolymarket, "m1"); err != nil {
		t.Fatal(err)
	}
	if client.getCalls != 1 {
		t.Errorf("provider called %d times, want 1", client.getCalls)
	}
}

func TestGetUnsupportedProvider(t *testing.T) {
	svc, _ := newMarketService()

	_, err := svc.Get(context.Background(), domain.Provider("predictit"), "x")
	if !errors.Is(err, domain.ErrUnsupportedProvider) {
		t.Errorf("err = %v, want ErrUnsupportedProvider", err)
	}
}

func TestListSingleProviderPropagatesError(t *testing.T) {
	client := &fakeClient{provider: domain.ProviderKalshi, err: domain.ErrRateLimited}
	svc, _ := newMarketService(client)

	_, err := svc.List(context.Background(), domain.ProviderKalshi, domain.ListOpts{})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestListFanOutDegradesFailedProvider(t *testing.T) {
	poly := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "p1", "poly question")},
	}
	kalshi := &fakeClient{provider: domain.ProviderKalshi, err: domain.ErrUnauthorized}
	simmer := &fakeClient{
		provider: domain.ProviderSimmer,
		markets:  []domain.NormalizedMarket{market(domain.ProviderSimmer, "s1", "simmer question")},
	}
	svc, _ := newMarketService(poly, kalshi, simmer)

	got, err := svc.List(context.Background(), "", domain.ListOpts{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d markets, want 2", len(got))
	}
	// Precedence order survives the concurrent fan-out.
	if got[0].Provider != domain.ProviderPolymarket || got[1].Provider != domain.ProviderSimmer {
		t.Errorf("order = %s, %s", got[0].Provider, got[1].Provider)
	}
}

func TestSearchMergesGlobally(t *testing.T) {
	poly := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets: []domain.NormalizedMarket{
			market(domain.ProviderPolymarket, "p1", "bitcoin above 100k by december"),
		},
	}
	kalshi := &fakeClient{
		provider: domain.ProviderKalshi,
		markets: []domain.NormalizedMarket{
			market(domain.ProviderKalshi, "k1", "bitcoin"),
			market(domain.ProviderKalshi, "k2", "inflation above 3%"),
		},
	}
	svc, _ := newMarketService(poly, kalshi)

	got, err := svc.Search(context.Background(), "bitcoin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2 (non-matching market filtered): %v", len(got), got)
	}
	// Exact title match outranks the prefix match regardless of provider.
	if got[0].Market.ID != "k1" {
		t.Errorf("top result = %s, want exact-match k1", got[0].Market.ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v", got)
	}
}

func TestSearchProviderFailureDegrades(t *testing.T) {
	poly := &fakeClient{provider: domain.ProviderPolymarket, err: errors.New("boom")}
	kalshi := &fakeClient{
		provider: domain.ProviderKalshi,
		markets:  []domain.NormalizedMarket{market(domain.ProviderKalshi, "k1", "bitcoin")},
	}
	svc, _ := newMarketService(poly, kalshi)

	got, err := svc.Search(context.Background(), "bitcoin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Market.ID != "k1" {
		t.Errorf("results = %v", got)
	}
}

func TestResolveAndFetch(t *testing.T) {
	client := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "fed-decision", "Fed decision?")},
	}
	svc, _ := newMarketService(client)

	got, err := svc.ResolveAndFetch(context.Background(), "https://polymarket.com/event/fed-decision")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "fed-decision" {
		t.Errorf("id = %q", got.ID)
	}

	_, err = svc.ResolveAndFetch(context.Background(), "not a market url")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
