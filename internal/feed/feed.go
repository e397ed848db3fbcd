// Package feed turns external market data into bars for the indicator engine.
package feed

import (
	"errors"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// ErrMalformedRecord is returned for source records that cannot become a bar.
var ErrMalformedRecord = errors.New("malformed record")

// BarProcessor consumes finalized and forming bars.
type BarProcessor interface {
	ProcessBar(bar models.Bar) error
	ProcessLiveBar(bar models.Bar) error
}
