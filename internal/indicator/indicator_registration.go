package indicator

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/market-finance/internal/config"
	indicatorpkg "github.com/mohamedkhairy/market-finance/pkg/indicator"
)

// RegisterAllIndicators registers the indicators selected by cfg.
func RegisterAllIndicators(registry *IndicatorRegistry, cfg config.IndicatorConfig) error {
	if err := registerCoreIndicators(registry, cfg); err != nil {
		return err
	}
	if err := registerTechanIndicators(registry, cfg); err != nil {
		return err
	}
	return registerVolumeIndicators(registry, cfg)
}

func registerCoreIndicators(registry *IndicatorRegistry, cfg config.IndicatorConfig) error {
	for _, period := range cfg.EMAPeriods {
		period := period
		name := fmt.Sprintf("ema_%d", period)
		if err := registry.Register(name,
			func() (indicatorpkg.Calculator, error) {
				return indicatorpkg.NewEMACalculator(period)
			},
			IndicatorMetadata{
				Name:        name,
				Type:        "core",
				Description: fmt.Sprintf("Exponential Moving Average (%d period)", period),
				Category:    "trend",
				Parameters:  map[string]interface{}{"period": period},
			},
		); err != nil {
			return err
		}
	}

	flatSteps, err := indicatorpkg.ParseFlatStepPolicy(cfg.RSIFlatSteps)
	if err != nil {
		return err
	}
	for _, period := range cfg.RSIPeriods {
		period := period
		name := fmt.Sprintf("rsi_%d", period)
		if err := registry.Register(name,
			func() (indicatorpkg.Calculator, error) {
				return indicatorpkg.NewRSICalculator(period, indicatorpkg.WithFlatSteps(flatSteps))
			},
			IndicatorMetadata{
				Name:        name,
				Type:        "core",
				Description: fmt.Sprintf("Relative Strength Index (%d period)", period),
				Category:    "momentum",
				Parameters: map[string]interface{}{
					"period":     period,
					"flat_steps": flatSteps.String(),
				},
			},
		); err != nil {
			return err
		}
	}

	fast, slow, signal := cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal
	name := fmt.Sprintf("macd_%d_%d_%d", fast, slow, signal)
	return registry.Register(name,
		func() (indicatorpkg.Calculator, error) {
			return indicatorpkg.NewMACDCalculator(fast, slow, signal)
		},
		IndicatorMetadata{
			Name:        name,
			Type:        "core",
			Description: fmt.Sprintf("MACD (%d, %d, %d)", fast, slow, signal),
			Category:    "trend",
			Parameters: map[string]interface{}{
				"fast_period":   fast,
				"slow_period":   slow,
				"signal_period": signal,
			},
		},
	)
}

func registerTechanIndicators(registry *IndicatorRegistry, cfg config.IndicatorConfig) error {
	for _, period := range cfg.SMAPeriods {
		period := period
		name := fmt.Sprintf("sma_%d", period)
		if err := registry.Register(name,
			func() (indicatorpkg.Calculator, error) {
				return indicatorpkg.NewTechanSMA(period)
			},
			IndicatorMetadata{
				Name:        name,
				Type:        "techan",
				Description: fmt.Sprintf("Simple Moving Average (%d period)", period),
				Category:    "trend",
				Parameters:  map[string]interface{}{"period": period},
			},
		); err != nil {
			return err
		}
	}

	for _, period := range cfg.ATRPeriods {
		period := period
		name := fmt.Sprintf("atr_%d", period)
		if err := registry.Register(name,
			func() (indicatorpkg.Calculator, error) {
				return indicatorpkg.NewTechanATR(period)
			},
			IndicatorMetadata{
				Name:        name,
				Type:        "techan",
				Description: fmt.Sprintf("Average True Range (%d period)", period),
				Category:    "volatility",
				Parameters:  map[string]interface{}{"period": period},
			},
		); err != nil {
			return err
		}
	}

	return nil
}

func registerVolumeIndicators(registry *IndicatorRegistry, cfg config.IndicatorConfig) error {
	for _, minutes := range cfg.VWAPMinutes {
		window := time.Duration(minutes) * time.Minute
		probe, err := indicatorpkg.NewVWAP(window)
		if err != nil {
			return err
		}
		name := probe.Name()
		if err := registry.Register(name,
			func() (indicatorpkg.Calculator, error) {
				return indicatorpkg.NewVWAP(window)
			},
			IndicatorMetadata{
				Name:        name,
				Type:        "core",
				Description: fmt.Sprintf("Volume Weighted Average Price (%s window)", window),
				Category:    "volume",
				Parameters:  map[string]interface{}{"window_minutes": minutes},
			},
		); err != nil {
			return err
		}
	}
	return nil
}
