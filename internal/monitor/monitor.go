package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kujibot/internal/market"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MONITOR - Poll loop
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow:
//   Oracle price → Scan positions → Liquidate → Sleep → repeat
//
// Nothing carries over between cycles.
//
// ═══════════════════════════════════════════════════════════════════════════════

// PriceOracle reports the exchange rate of a denom
type PriceOracle interface {
	ExchangeRate(ctx context.Context, denom string) (decimal.Decimal, error)
}

// PositionScanner returns liquidation candidates at a price
type PositionScanner interface {
	Scan(ctx context.Context, contract string, price float64) []market.Position
}

// PositionLiquidator liquidates candidates and returns the accepted tx hash
type PositionLiquidator interface {
	Liquidate(ctx context.Context, positions []market.Position) string
}

// Config is the market the monitor watches
type Config struct {
	MarketAddress string
	OracleDenom   string
	PollInterval  time.Duration
}

type Monitor struct {
	cfg        Config
	oracle     PriceOracle
	scanner    PositionScanner
	liquidator PositionLiquidator
}

// New creates a monitor
func New(cfg Config, oracle PriceOracle, scanner PositionScanner, liquidator PositionLiquidator) *Monitor {
	return &Monitor{
		cfg:        cfg,
		oracle:     oracle,
		scanner:    scanner,
		liquidator: liquidator,
	}
}

// RunOnce performs a single fetch → scan → liquidate cycle. Oracle failures
// are returned; scan and liquidation failures are handled inside.
func (m *Monitor) RunOnce(ctx context.Context) error {
	rate, err := m.oracle.ExchangeRate(ctx, m.cfg.OracleDenom)
	if err != nil {
		return fmt.Errorf("fetch oracle price: %w", err)
	}
	price := rate.InexactFloat64()

	positions := m.scanner.Scan(ctx, m.cfg.MarketAddress, price)

	log.Debug().
		Str("denom", m.cfg.OracleDenom).
		Str("price", rate.String()).
		Int("candidates", len(positions)).
		Msg("Scan complete")

	if len(positions) > 0 {
		m.liquidator.Liquidate(ctx, positions)
	}
	return nil
}

// Run loops until ctx is cancelled or the oracle query fails. The interval
// is slept after each cycle finishes, so the period is work time plus
// interval.
func (m *Monitor) Run(ctx context.Context) error {
	log.Info().
		Str("market", m.cfg.MarketAddress).
		Str("denom", m.cfg.OracleDenom).
		Dur("interval", m.cfg.PollInterval).
		Msg("⚡ Monitor started")

	for {
		if ctx.Err() != nil {
			log.Info().Msg("Monitor stopped")
			return nil
		}

		if err := m.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Monitor stopped")
				return nil
			}
			return err
		}

		timer := time.NewTimer(m.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Monitor stopped")
			return nil
		case <-timer.C:
		}
	}
}
