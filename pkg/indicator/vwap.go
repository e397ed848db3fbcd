package indicator

import (
	"fmt"
	"time"
)

// VolumeBar is an OHLC bar that carries a timestamp and may carry volume.
type VolumeBar interface {
	OHLC
	TimestampMillis() int64
	VolumeOr(fallback uint64) uint64
}

type vwapPoint struct {
	ts          int64
	priceVolume float64
	volume      uint64
}

// VWAP calculates the Volume Weighted Average Price over a time window
// VWAP = Sum(Typical * Volume) / Sum(Volume), Typical = (High+Low+Close)/3
//
// Bars without volume, or inputs that are not a VolumeBar, contribute
// nothing. Update previews the forming bar on top of the committed window.
type VWAP struct {
	window    time.Duration
	name      string
	points    []vwapPoint
	current   float64
	ready     bool
	processed int
}

// NewVWAP creates a new VWAP calculator with the specified time window
func NewVWAP(window time.Duration) (*VWAP, error) {
	if window <= 0 {
		return nil, fmt.Errorf("VWAP window must be positive, got %v", window)
	}

	return &VWAP{
		window: window,
		name:   fmt.Sprintf("vwap_%s", windowLabel(window)),
	}, nil
}

var _ Calculator = (*VWAP)(nil)

// Name returns the indicator name
func (v *VWAP) Name() string {
	return v.name
}

func toPoint(bar ClosePricer) (vwapPoint, bool) {
	vb, ok := bar.(VolumeBar)
	if !ok {
		return vwapPoint{}, false
	}
	vol := vb.VolumeOr(0)
	typical := (vb.HighPrice() + vb.LowPrice() + vb.ClosePrice()) / 3.0
	return vwapPoint{ts: vb.TimestampMillis(), priceVolume: typical * float64(vol), volume: vol}, true
}

// calculate sums the committed points inside the window ending at latest,
// plus the optional extra point.
func (v *VWAP) calculate(latest int64, extra *vwapPoint) (float64, bool) {
	cutoff := latest - v.window.Milliseconds()

	var totalPriceVolume float64
	var totalVolume uint64
	for _, p := range v.points {
		if p.ts > cutoff {
			totalPriceVolume += p.priceVolume
			totalVolume += p.volume
		}
	}
	if extra != nil {
		totalPriceVolume += extra.priceVolume
		totalVolume += extra.volume
	}

	if totalVolume == 0 {
		return 0, false
	}
	return totalPriceVolume / float64(totalVolume), true
}

// Update previews a forming bar.
func (v *VWAP) Update(bar ClosePricer) {
	p, ok := toPoint(bar)
	if !ok {
		return
	}
	v.current, v.ready = v.calculate(p.ts, &p)
}

// Commit adds a finalized bar and drops bars that left the window.
func (v *VWAP) Commit(bar ClosePricer) {
	p, ok := toPoint(bar)
	if !ok {
		return
	}
	v.processed++
	v.points = append(v.points, p)

	cutoff := p.ts - v.window.Milliseconds()
	kept := v.points[:0]
	for _, q := range v.points {
		if q.ts > cutoff {
			kept = append(kept, q)
		}
	}
	v.points = kept

	v.current, v.ready = v.calculate(p.ts, nil)
}

func (v *VWAP) Values() map[string]float64 {
	return map[string]float64{v.name: v.current}
}

// Reset clears the VWAP state
func (v *VWAP) Reset() {
	v.points = v.points[:0]
	v.current = 0
	v.ready = false
	v.processed = 0
}

// IsReady returns true once the window holds traded volume
func (v *VWAP) IsReady() bool {
	return v.ready
}

// BarsProcessed returns the number of bars committed
func (v *VWAP) BarsProcessed() int {
	return v.processed
}

// windowLabel renders a window as 5m, 1h or 1d for indicator names.
func windowLabel(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
