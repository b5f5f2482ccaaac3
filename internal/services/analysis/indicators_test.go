package analysis

import (
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func mkBars(closes []float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestComputeRowCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 30} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		out, err := Compute(mkBars(closes), DefaultParams())
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}
		if len(out) != n {
			t.Fatalf("n=%d: got %d rows", n, len(out))
		}
	}
}

func TestComputeRejectsUnsortedDates(t *testing.T) {
	bars := mkBars([]float64{100, 101, 102})
	bars[2].Date = bars[1].Date
	if _, err := Compute(bars, DefaultParams()); err == nil {
		t.Fatalf("expected error on duplicate date")
	}
}

func TestMovingAverageWarmup(t *testing.T) {
	out, err := Compute(mkBars([]float64{10, 20, 30, 40, 50, 60}), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out[3].MA[5].Valid {
		t.Fatalf("MA5 must be undefined before window fills")
	}
	if !out[4].MA[5].Valid {
		t.Fatalf("MA5 must be defined at row 4")
	}
	if got := out[4].MA[5].Val; got != 30 {
		t.Fatalf("MA5 at row 4 = %v, want 30", got)
	}
	if got := out[5].MA[5].Val; got != 40 {
		t.Fatalf("MA5 at row 5 = %v, want 40", got)
	}
}

func TestRSIWarmupAndRange(t *testing.T) {
	closes := make([]float64, 30)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		// alternate gains and losses so the average loss never vanishes
		if i%2 == 0 {
			closes[i] = closes[i-1] - 1
		} else {
			closes[i] = closes[i-1] + 2
		}
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out[13].RSI.Valid {
		t.Fatalf("RSI must be undefined before 14 observed changes")
	}
	if !out[14].RSI.Valid {
		t.Fatalf("RSI must be defined at row 14")
	}
	for i, row := range out {
		if row.RSI.Valid && (row.RSI.Val < 0 || row.RSI.Val > 100) {
			t.Fatalf("row %d: RSI %v out of [0,100]", i, row.RSI.Val)
		}
	}
}

func TestRSIUndefinedWithoutLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i, row := range out {
		if row.RSI.Valid {
			t.Fatalf("row %d: RSI defined on a loss-free series", i)
		}
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	seen := false
	for i, row := range out {
		if !row.BollMid.Valid {
			continue
		}
		seen = true
		if !row.BollUpper.Valid || !row.BollLower.Valid {
			t.Fatalf("row %d: bands undefined while mid is defined", i)
		}
		if row.BollLower.Val > row.BollMid.Val || row.BollMid.Val > row.BollUpper.Val {
			t.Fatalf("row %d: band ordering violated (%v, %v, %v)",
				i, row.BollLower.Val, row.BollMid.Val, row.BollUpper.Val)
		}
	}
	if !seen {
		t.Fatalf("no defined Bollinger rows in a 40-bar series")
	}
}

func TestBollingerPctBUndefinedOnFlatSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	last := out[len(out)-1]
	if !last.BollMid.Valid {
		t.Fatalf("mid band must be defined")
	}
	if last.BollPctB.Valid {
		t.Fatalf("%%B must be undefined when the bands collapse")
	}
}

func TestMFIWarmupAndBounds(t *testing.T) {
	closes := make([]float64, 30)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%3 == 0 {
			closes[i] = closes[i-1] - 2
		} else {
			closes[i] = closes[i-1] + 1
		}
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out[12].MFI.Valid {
		t.Fatalf("MFI must be undefined before the flow window fills")
	}
	for i, row := range out {
		if row.MFI.Valid && (row.MFI.Val < 0 || row.MFI.Val > 100) {
			t.Fatalf("row %d: MFI %v out of [0,100]", i, row.MFI.Val)
		}
	}
	if !out[len(out)-1].MFI.Valid {
		t.Fatalf("MFI must be defined on a 30-bar mixed series")
	}
}

func TestOBVCumulative(t *testing.T) {
	bars := mkBars([]float64{100, 101, 99, 99, 102})
	for i := range bars {
		bars[i].Volume = float64((i + 1) * 10)
	}
	out, err := Compute(bars, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []float64{0, 20, -10, -10, 40}
	for i, w := range want {
		if !out[i].OBV.Valid {
			t.Fatalf("row %d: OBV undefined", i)
		}
		if out[i].OBV.Val != w {
			t.Fatalf("row %d: OBV = %v, want %v", i, out[i].OBV.Val, w)
		}
	}
}

func TestROCWarmupAndValue(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out, err := Compute(mkBars(closes), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out[11].ROC.Valid {
		t.Fatalf("ROC must be undefined before 12 rows of history")
	}
	if !out[12].ROC.Valid {
		t.Fatalf("ROC must be defined at row 12")
	}
	want := (closes[12] - closes[0]) / closes[0] * 100
	if math.Abs(out[12].ROC.Val-want) > 1e-9 {
		t.Fatalf("ROC = %v, want %v", out[12].ROC.Val, want)
	}
}

func TestPctChangeZeroBase(t *testing.T) {
	xs := []float64{0, 5, 10}
	out := pctChange(xs, 1)
	if out[1].Valid {
		t.Fatalf("percent change over a zero base must be undefined")
	}
	if !out[2].Valid || out[2].Val != 100 {
		t.Fatalf("got %+v, want 100", out[2])
	}
}

func TestWilderEWMCountsOnlyDefinedInputs(t *testing.T) {
	xs := make([]models.Float, 6)
	xs[0] = models.F(1)
	// gap at index 1
	xs[2] = models.F(2)
	xs[3] = models.F(3)
	out := wilderEWM(xs, 3)
	if out[2].Valid {
		t.Fatalf("mean must stay undefined until 3 defined inputs were seen")
	}
	if !out[3].Valid {
		t.Fatalf("mean must be defined once the 3rd input arrives")
	}
}
