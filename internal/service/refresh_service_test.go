package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

func newRefreshService(locks *fakeLocks, clients ...ProviderClient) (*RefreshService, *fakeBus) {
	markets, _ := newMarketService(clients...)
	bus := newFakeBus()
	svc := NewRefreshService(markets, bus, locks, nil, 30*time.Second, 50, testLogger())
	return svc, bus
}

func TestRefreshPublishesOnlyOnChange(t *testing.T) {
	client := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "m1", "q1")},
	}
	svc, bus := newRefreshService(&fakeLocks{}, client)

	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Fatalf("published = %d, want 1", len(bus.published[ChannelRefresh]))
	}

	// Same content again: no new broadcast.
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Errorf("published = %d after unchanged refresh, want 1", len(bus.published[ChannelRefresh]))
	}

	// Changed content broadcasts again.
	client.markets = append(client.markets, market(domain.ProviderPolymarket, "m2", "q2"))
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 2 {
		t.Errorf("published = %d after change, want 2", len(bus.published[ChannelRefresh]))
	}
}

func TestRefreshSkipsWhenLockHeld(t *testing.T) {
	client := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "m1", "q1")},
	}
	svc, bus := newRefreshService(&fakeLocks{held: true}, client)

	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 0 {
		t.Errorf("published = %d with lock held, want 0", len(bus.published[ChannelRefresh]))
	}
	if client.listCalls != 0 {
		t.Errorf("provider called %d times while not leader", client.listCalls)
	}
}

func TestRefreshOutageKeepsPreviousListing(t *testing.T) {
	client := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "m1", "q1")},
	}
	svc, bus := newRefreshService(&fakeLocks{}, client)

	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Every provider failing is an outage; it must not clobber the previous
	// snapshot or broadcast an empty set.
	client.err = domain.ErrRateLimited
	if err := svc.RefreshOnce(context.Background()); err == nil {
		t.Error("expected error on total provider outage")
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Errorf("published = %d, want 1", len(bus.published[ChannelRefresh]))
	}

	// Recovery with identical content stays quiet.
	client.err = nil
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Errorf("published = %d after identical recovery, want 1", len(bus.published[ChannelRefresh]))
	}
}

func TestRefreshProviderOutageKeepsItsMarkets(t *testing.T) {
	poly := &fakeClient{
		provider: domain.ProviderPolymarket,
		markets:  []domain.NormalizedMarket{market(domain.ProviderPolymarket, "p1", "poly question")},
	}
	kal := &fakeClient{
		provider: domain.ProviderKalshi,
		markets:  []domain.NormalizedMarket{market(domain.ProviderKalshi, "k1", "kalshi question")},
	}
	svc, bus := newRefreshService(&fakeLocks{}, poly, kal)

	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Fatalf("published = %d, want 1", len(bus.published[ChannelRefresh]))
	}

	// One provider failing must not shrink the listing: its previous markets
	// are carried forward, so an otherwise unchanged listing stays quiet.
	kal.err = domain.ErrRateLimited
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 1 {
		t.Errorf("published = %d while one provider degraded, want 1", len(bus.published[ChannelRefresh]))
	}

	// A change elsewhere still broadcasts, and the broadcast must retain the
	// failed provider's previously displayed market.
	poly.markets = append(poly.markets, market(domain.ProviderPolymarket, "p2", "new poly question"))
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	published := bus.published[ChannelRefresh]
	if len(published) != 2 {
		t.Fatalf("published = %d after change, want 2", len(published))
	}
	last := published[len(published)-1]
	if !bytes.Contains(last, []byte(`"k1"`)) {
		t.Errorf("broadcast dropped the degraded provider's market: %s", last)
	}
	if !bytes.Contains(last, []byte(`"p2"`)) {
		t.Errorf("broadcast missing the new market: %s", last)
	}

	// Once the provider recovers with identical content, nothing re-publishes.
	kal.err = nil
	if err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bus.published[ChannelRefresh]) != 2 {
		t.Errorf("published = %d after identical recovery, want 2", len(bus.published[ChannelRefresh]))
	}
}
