package liquidator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kujibot/internal/database"
	"github.com/web3guy0/kujibot/internal/kujira"
	"github.com/web3guy0/kujibot/internal/market"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LIQUIDATOR
// ═══════════════════════════════════════════════════════════════════════════════
//
// One tx names every candidate. On failure the last candidate is dropped and
// the rest are resubmitted, until a broadcast succeeds or nothing is left.
// The dropped address is not necessarily the one that caused the failure.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Broadcaster signs and submits messages from a single sender
type Broadcaster interface {
	Address() string
	SignAndBroadcast(ctx context.Context, msgs ...kujira.Msg) (*kujira.BroadcastResult, error)
}

// Recorder persists liquidation attempts
type Recorder interface {
	RecordAttempt(attempt *database.LiquidationAttempt) error
}

// Liquidator submits manual liquidations to a market contract
type Liquidator struct {
	client   Broadcaster
	market   string
	recorder Recorder
}

// New creates a liquidator for the market contract
func New(client Broadcaster, marketAddress string) *Liquidator {
	return &Liquidator{
		client: client,
		market: marketAddress,
	}
}

// SetRecorder enables the attempt journal
func (l *Liquidator) SetRecorder(r Recorder) {
	l.recorder = r
}

// ExecuteMsg is the market contract's execute payload
type ExecuteMsg struct {
	Liquidates *LiquidatesMsg `json:"liquidates,omitempty"`
}

// LiquidatesMsg selects which positions to liquidate
type LiquidatesMsg struct {
	Manual *ManualLiquidation `json:"manual,omitempty"`
}

// ManualLiquidation names positions by owner
type ManualLiquidation struct {
	Addresses []string `json:"addresses"`
}

// BuildMsg builds the MsgExecuteContract liquidating addresses
func (l *Liquidator) BuildMsg(addresses []string) (*kujira.MsgExecuteContract, error) {
	payload, err := json.Marshal(ExecuteMsg{
		Liquidates: &LiquidatesMsg{
			Manual: &ManualLiquidation{Addresses: addresses},
		},
	})
	if err != nil {
		return nil, err
	}

	return &kujira.MsgExecuteContract{
		Sender:   l.client.Address(),
		Contract: l.market,
		Msg:      payload,
	}, nil
}

// Liquidate submits one tx naming all positions, shrinking the list from the
// tail after each failure. It returns the hash of the accepted tx, or "" if
// every attempt failed or there was nothing to do.
func (l *Liquidator) Liquidate(ctx context.Context, positions []market.Position) string {
	addresses := make([]string, 0, len(positions))
	for _, p := range positions {
		addresses = append(addresses, p.Owner)
	}

	for len(addresses) > 0 {
		hash, err := l.submit(ctx, addresses)
		if err == nil {
			return hash
		}
		addresses = addresses[:len(addresses)-1]
	}
	return ""
}

func (l *Liquidator) submit(ctx context.Context, addresses []string) (string, error) {
	log.Debug().Strs("addresses", addresses).Msg("Attempting Liquidation")

	msg, err := l.BuildMsg(addresses)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build liquidation msg")
		l.record(addresses, "", err)
		return "", err
	}

	res, err := l.client.SignAndBroadcast(ctx, msg)
	if err != nil {
		log.Error().Err(err).Int("candidates", len(addresses)).Msg("Liquidation failed")
		l.record(addresses, "", err)
		return "", err
	}

	log.Debug().Str("tx_hash", res.Hash).Int("candidates", len(addresses)).Msg("Liquidation broadcast")
	l.record(addresses, res.Hash, nil)
	return res.Hash, nil
}

func (l *Liquidator) record(addresses []string, txHash string, err error) {
	if l.recorder == nil {
		return
	}

	attempt := &database.LiquidationAttempt{
		Market:     l.market,
		Addresses:  strings.Join(addresses, ","),
		Candidates: len(addresses),
		Status:     database.StatusBroadcast,
		TxHash:     txHash,
	}
	if err != nil {
		attempt.Status = database.StatusFailed
		attempt.ErrorMessage = err.Error()
	}

	if rerr := l.recorder.RecordAttempt(attempt); rerr != nil {
		log.Warn().Err(rerr).Msg("Failed to journal liquidation attempt")
	}
}
