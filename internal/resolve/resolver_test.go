package resolve

import (
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.MarketRef
		ok   bool
	}{
		{
			name: "polymarket event url",
			in:   "https://polymarket.com/event/will-x-happen",
			want: domain.MarketRef{Provider: domain.ProviderPolymarket, Identifier: "will-x-happen"},
			ok:   true,
		},
		{
			name: "polymarket without anchor falls back to last segment",
			in:   "https://polymarket.com/some/deep/slug",
			want: domain.MarketRef{Provider: domain.ProviderPolymarket, Identifier: "slug"},
			ok:   true,
		},
		{
			name: "polymarket bare anchor yields nothing",
			in:   "https://polymarket.com/event",
			ok:   false,
		},
		{
			name: "kalshi markets url",
			in:   "https://kalshi.com/markets/FED-25DEC",
			want: domain.MarketRef{Provider: domain.ProviderKalshi, Identifier: "FED-25DEC"},
			ok:   true,
		},
		{
			name: "kalshi subdomain",
			in:   "https://trading.kalshi.com/markets/KXRAIN",
			want: domain.MarketRef{Provider: domain.ProviderKalshi, Identifier: "KXRAIN"},
			ok:   true,
		},
		{
			name: "simmer markets url",
			in:   "https://simmer.markets/markets/3fa85f64-5717-4562-b3fc-2c963f66afa6",
			want: domain.MarketRef{Provider: domain.ProviderSimmer, Identifier: "3fa85f64-5717-4562-b3fc-2c963f66afa6"},
			ok:   true,
		},
		{
			name: "simmer uuid without anchor",
			in:   "https://simmer.markets/m/3FA85F64-5717-4562-B3FC-2C963F66AFA6",
			want: domain.MarketRef{Provider: domain.ProviderSimmer, Identifier: "3FA85F64-5717-4562-B3FC-2C963F66AFA6"},
			ok:   true,
		},
		{
			name: "simmer non-uuid path rejected",
			in:   "https://simmer.markets/about",
			ok:   false,
		},
		{
			name: "unknown domain",
			in:   "https://example.com/event/foo",
			ok:   false,
		},
		{
			name: "not a url",
			in:   "not a url",
			ok:   false,
		},
		{
			name: "empty string",
			in:   "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
