package market

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kujibot/internal/kujira"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSITION SCANNER
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow:
//   contract state (reverse page) → decode → accrue → liquidation price → filter → reverse
//
// ═══════════════════════════════════════════════════════════════════════════════

// PageLimit is the number of state entries requested per scan
const PageLimit = 10_000

// StateQuerier lists raw contract storage
type StateQuerier interface {
	AllContractState(ctx context.Context, contract string, page kujira.PageRequest) (*kujira.ContractStateResponse, error)
}

// Scanner finds positions that can be liquidated at a given price
type Scanner struct {
	state  StateQuerier
	maxLTV float64
	clock  Clock
}

// NewScanner creates a scanner for markets with the given max LTV
func NewScanner(state StateQuerier, maxLTV float64) *Scanner {
	return &Scanner{
		state:  state,
		maxLTV: maxLTV,
		clock:  time.Now,
	}
}

// SetClock overrides the wall clock used for interest accrual
func (s *Scanner) SetClock(clock Clock) {
	s.clock = clock
}

// LiquidationPrice returns the oracle price below which the position is
// under-collateralized. ok is false for zero or unparsable deposits.
func (s *Scanner) LiquidationPrice(p Position, now int64) (price float64, ok bool) {
	a, err := p.ParseAmounts()
	if err != nil || a.Deposit == 0 {
		return 0, false
	}

	interest := a.Interest + Accrue(now, a.UpdatedAt, a.Mint)
	debt := a.Mint + interest

	return debt / (a.Deposit * s.maxLTV), true
}

// Scan returns the positions of contract whose liquidation price is above
// price. Candidates come back in the reverse of the scan order, which
// requests state newest-first. A failed state query yields no candidates.
func (s *Scanner) Scan(ctx context.Context, contract string, price float64) []Position {
	log.Debug().Time("at", s.clock()).Msg("Running")

	candidates := make([]Position, 0)

	resp, err := s.state.AllContractState(ctx, contract, kujira.PageRequest{
		Limit:   PageLimit,
		Reverse: true,
	})
	if err != nil {
		log.Error().Err(err).Str("contract", contract).Msg("Position scan failed")
		return candidates
	}

	if resp.Pagination != nil && resp.Pagination.NextKey != "" {
		log.Warn().
			Int("limit", PageLimit).
			Str("total", resp.Pagination.Total).
			Msg("Contract state exceeds one page, scanning first page only")
	}

	now := NowNanos(s.clock)
	for _, m := range resp.Models {
		value, err := m.DecodeValue()
		if err != nil {
			log.Debug().Err(err).Str("key", m.Key).Msg("Skipping undecodable state entry")
			continue
		}

		p, err := DecodePosition(value)
		if err != nil {
			if errors.Is(err, ErrMalformedPosition) {
				log.Debug().Err(err).Str("key", m.Key).Msg("Skipping malformed position")
			}
			continue
		}

		liqPrice, ok := s.LiquidationPrice(p, now)
		if !ok {
			continue
		}

		if liqPrice > price {
			log.Debug().
				Str("owner", p.Owner).
				Float64("liquidation_price", liqPrice).
				Float64("price", price).
				Msg("Liquidation candidate")
			candidates = append(candidates, p)
		}
	}

	slices.Reverse(candidates)
	return candidates
}
