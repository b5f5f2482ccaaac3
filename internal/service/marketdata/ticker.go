package marketdata

import (
	"fmt"
	"strconv"
	"strings"

	"StockPulse/internal/domain/models"
)

// ProviderTicker converts a local symbol into the provider's ticker format.
//
//	A-shares: 600519 -> 600519.SS, 000001 -> 000001.SZ
//	HK:       00700  -> 0700.HK
//	US:       aapl   -> AAPL
func ProviderTicker(inst models.Instrument) (string, error) {
	switch inst.Market {
	case models.MarketUS:
		return strings.ToUpper(inst.Symbol), nil

	case models.MarketHK:
		code := strings.TrimLeft(inst.Symbol, "0")
		if code == "" {
			code = "0"
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			return "", fmt.Errorf("invalid HK symbol %q", inst.Symbol)
		}
		return fmt.Sprintf("%04d.HK", n), nil

	case models.MarketCN:
		if inst.Symbol == "" {
			return "", fmt.Errorf("empty A-share symbol")
		}
		// Shanghai listings start with 6 or 9, everything else is Shenzhen.
		if strings.HasPrefix(inst.Symbol, "6") || strings.HasPrefix(inst.Symbol, "9") {
			return inst.Symbol + ".SS", nil
		}
		return inst.Symbol + ".SZ", nil

	default:
		return "", fmt.Errorf("unsupported market %q", inst.Market)
	}
}
