package indicator

// Calculator is the type-erased view of an indicator used by SymbolState
// and the engine. Update previews a forming bar, Commit finalizes a bar.
type Calculator interface {
	// Name returns the unique name of this indicator (e.g., "rsi_14", "ema_20")
	Name() string

	Update(bar ClosePricer)
	Commit(bar ClosePricer)

	// Values returns the current outputs keyed by name. Multi-output
	// indicators use suffixed keys (e.g. "macd_12_26_9_signal").
	Values() map[string]float64

	// Reset clears the indicator state (useful for rehydration or testing)
	Reset()

	// IsReady returns true once the indicator has produced a meaningful value
	IsReady() bool
}

// tracked adapts a typed Indicator to Calculator.
type tracked[T any] struct {
	name     string
	ind      Indicator[T]
	values   func(name string, v T) map[string]float64
	observed bool
}

func newTracked[T any](name string, ind Indicator[T], values func(string, T) map[string]float64) *tracked[T] {
	return &tracked[T]{name: name, ind: ind, values: values}
}

func (t *tracked[T]) Name() string { return t.name }

func (t *tracked[T]) Update(bar ClosePricer) {
	t.ind.UpdateBar(bar)
	t.observed = true
}

func (t *tracked[T]) Commit(bar ClosePricer) {
	t.ind.CommitBar(bar)
	t.observed = true
}

func (t *tracked[T]) Values() map[string]float64 {
	return t.values(t.name, t.ind.Current())
}

func (t *tracked[T]) Reset() {
	t.ind.Reset()
	t.observed = false
}

func (t *tracked[T]) IsReady() bool { return t.observed }

func scalarValues(name string, v float64) map[string]float64 {
	return map[string]float64{name: v}
}

func macdValues(name string, v MACDValue) map[string]float64 {
	return map[string]float64{
		name:                v.Value,
		name + "_signal":    v.Signal,
		name + "_histogram": v.Histogram,
	}
}

// NewEMACalculator creates an EMA calculator named "ema_<period>".
func NewEMACalculator(period int) (Calculator, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}
	return newTracked[float64](ema.Name(), ema, scalarValues), nil
}

// NewRSICalculator creates an RSI calculator named "rsi_<period>".
func NewRSICalculator(period int, opts ...RSIOption) (Calculator, error) {
	rsi, err := NewRSI(period, opts...)
	if err != nil {
		return nil, err
	}
	return newTracked[float64](rsi.Name(), rsi, scalarValues), nil
}

// NewMACDCalculator creates a MACD calculator named "macd_<fast>_<slow>_<signal>".
func NewMACDCalculator(fastPeriod, slowPeriod, signalPeriod int) (Calculator, error) {
	macd, err := NewMACD(fastPeriod, slowPeriod, signalPeriod)
	if err != nil {
		return nil, err
	}
	return newTracked[MACDValue](macd.Name(), macd, macdValues), nil
}
