package marketdata

import (
	"testing"

	"StockPulse/internal/domain/models"
)

func TestProviderTicker(t *testing.T) {
	cases := []struct {
		symbol string
		market models.Market
		want   string
	}{
		{"600519", models.MarketCN, "600519.SS"},
		{"688981", models.MarketCN, "688981.SS"},
		{"900901", models.MarketCN, "900901.SS"},
		{"000001", models.MarketCN, "000001.SZ"},
		{"300750", models.MarketCN, "300750.SZ"},
		{"00700", models.MarketHK, "0700.HK"},
		{"09988", models.MarketHK, "9988.HK"},
		{"0005", models.MarketHK, "0005.HK"},
		{"aapl", models.MarketUS, "AAPL"},
		{"TSLA", models.MarketUS, "TSLA"},
	}
	for _, c := range cases {
		got, err := ProviderTicker(models.Instrument{Symbol: c.symbol, Market: c.market})
		if err != nil {
			t.Fatalf("%s/%s: unexpected error %v", c.market, c.symbol, err)
		}
		if got != c.want {
			t.Fatalf("%s/%s: got %q, want %q", c.market, c.symbol, got, c.want)
		}
	}
}

func TestProviderTickerRejectsUnknownMarket(t *testing.T) {
	if _, err := ProviderTicker(models.Instrument{Symbol: "X", Market: "LSE"}); err == nil {
		t.Fatalf("expected error for unknown market")
	}
}

func TestProviderTickerRejectsBadHKSymbol(t *testing.T) {
	if _, err := ProviderTicker(models.Instrument{Symbol: "07x0", Market: models.MarketHK}); err == nil {
		t.Fatalf("expected error for non-numeric HK symbol")
	}
}
