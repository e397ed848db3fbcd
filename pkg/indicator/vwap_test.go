package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

func volumeBar(minute int64, high, low, closePrice float64, volume uint64) models.Bar {
	return models.NewBar("AAPL", minute*60_000, closePrice, high, low, closePrice).WithVolume(volume)
}

func TestVWAP_NewVWAP(t *testing.T) {
	vwap, err := NewVWAP(5 * time.Minute)
	if err != nil {
		t.Fatalf("Failed to create VWAP: %v", err)
	}
	if vwap.Name() != "vwap_5m" {
		t.Errorf("Expected name 'vwap_5m', got '%s'", vwap.Name())
	}

	if _, err := NewVWAP(0); err == nil {
		t.Error("Expected error for zero window")
	}
	if _, err := NewVWAP(-time.Minute); err == nil {
		t.Error("Expected error for negative window")
	}

	hourly, _ := NewVWAP(time.Hour)
	if hourly.Name() != "vwap_1h" {
		t.Errorf("Expected name 'vwap_1h', got '%s'", hourly.Name())
	}
}

func TestVWAP_Commit(t *testing.T) {
	vwap, _ := NewVWAP(5 * time.Minute)

	// Typical prices 100 and 200 with volumes 1 and 3.
	vwap.Commit(volumeBar(1, 100, 100, 100, 1))
	vwap.Commit(volumeBar(2, 200, 200, 200, 3))

	if !vwap.IsReady() {
		t.Fatal("VWAP should be ready")
	}
	if got := vwap.Values()["vwap_5m"]; math.Abs(got-175) > 1e-9 {
		t.Errorf("Expected VWAP 175, got %f", got)
	}
	if vwap.BarsProcessed() != 2 {
		t.Errorf("Expected 2 bars processed, got %d", vwap.BarsProcessed())
	}
}

func TestVWAP_WindowEviction(t *testing.T) {
	vwap, _ := NewVWAP(5 * time.Minute)

	vwap.Commit(volumeBar(0, 1000, 1000, 1000, 100))
	for m := int64(1); m <= 5; m++ {
		vwap.Commit(volumeBar(m, 10, 10, 10, 1))
	}

	if got := vwap.Values()["vwap_5m"]; math.Abs(got-10) > 1e-9 {
		t.Errorf("Expected bar at minute 0 to be evicted, VWAP = %f", got)
	}
}

func TestVWAP_UpdateDoesNotCommit(t *testing.T) {
	vwap, _ := NewVWAP(5 * time.Minute)
	vwap.Commit(volumeBar(1, 100, 100, 100, 1))

	vwap.Update(volumeBar(2, 200, 200, 200, 1))
	if got := vwap.Values()["vwap_5m"]; math.Abs(got-150) > 1e-9 {
		t.Errorf("Expected preview 150, got %f", got)
	}

	vwap.Update(volumeBar(2, 300, 300, 300, 1))
	if got := vwap.Values()["vwap_5m"]; math.Abs(got-200) > 1e-9 {
		t.Errorf("Expected second preview 200, got %f", got)
	}
	if vwap.BarsProcessed() != 1 {
		t.Errorf("Update must not commit, processed = %d", vwap.BarsProcessed())
	}
}

func TestVWAP_IgnoresBarsWithoutVolume(t *testing.T) {
	vwap, _ := NewVWAP(5 * time.Minute)

	vwap.Commit(models.NewBar("AAPL", 60_000, 100, 100, 100, 100))
	if vwap.IsReady() {
		t.Error("VWAP should not be ready without volume")
	}

	vwap.Commit(priceOnly(100))
	if vwap.BarsProcessed() != 1 {
		t.Errorf("inputs without volume support should be skipped, processed = %d", vwap.BarsProcessed())
	}

	vwap.Reset()
	if vwap.IsReady() || vwap.BarsProcessed() != 0 {
		t.Error("Reset should clear the window")
	}
}

type priceOnly float64

func (p priceOnly) ClosePrice() float64 { return float64(p) }
