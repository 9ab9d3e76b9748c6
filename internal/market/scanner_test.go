package market

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kujibot/internal/kujira"
)

type fakeState struct {
	resp  *kujira.ContractStateResponse
	err   error
	calls []kujira.PageRequest
}

func (f *fakeState) AllContractState(_ context.Context, _ string, page kujira.PageRequest) (*kujira.ContractStateResponse, error) {
	f.calls = append(f.calls, page)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

var fixedNow = time.UnixMilli(1_717_787_717_123)

func fixedClock() time.Time { return fixedNow }

func entry(t *testing.T, v interface{}) kujira.ContractModel {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return kujira.ContractModel{Key: "00", Value: base64.StdEncoding.EncodeToString(raw)}
}

func position(owner, deposit, mint, interest string, updatedAt int64) Position {
	return Position{
		Owner:                 owner,
		DepositAmount:         deposit,
		MintAmount:            mint,
		InterestAmount:        interest,
		UpdatedAt:             strconv.FormatInt(updatedAt, 10),
		LiquidationPriceCache: "0.5",
	}
}

func newTestScanner(state StateQuerier, maxLTV float64) *Scanner {
	s := NewScanner(state, maxLTV)
	s.SetClock(fixedClock)
	return s
}

func TestScanRequestsReversePage(t *testing.T) {
	state := &fakeState{resp: &kujira.ContractStateResponse{}}
	s := newTestScanner(state, 0.5)

	got := s.Scan(context.Background(), "kujira1market", 1)
	require.Empty(t, got)
	require.Equal(t, []kujira.PageRequest{{Limit: 10_000, Reverse: true}}, state.calls)
}

func TestScanOneYearExample(t *testing.T) {
	now := NowNanos(fixedClock)
	p := position("kujira1owner", "2000", "1000", "10", now-NanosecondsPerYear)
	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{entry(t, p)}}}
	s := newTestScanner(state, 0.5)

	liq, ok := s.LiquidationPrice(p, now)
	require.True(t, ok)
	require.InDelta(t, 1.06, liq, 1e-9)

	require.Equal(t, []Position{p}, s.Scan(context.Background(), "m", 1.05))
	require.Empty(t, s.Scan(context.Background(), "m", 1.07))
}

func TestScanBoundaryIsNotCandidate(t *testing.T) {
	now := NowNanos(fixedClock)
	// No elapsed time: debt 500 / (1000 * 0.5) == 1 exactly
	p := position("kujira1owner", "1000", "500", "0", now)
	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{entry(t, p)}}}
	s := newTestScanner(state, 0.5)

	require.Empty(t, s.Scan(context.Background(), "m", 1.0))
	require.Len(t, s.Scan(context.Background(), "m", 0.999), 1)
}

func TestScanSkipsZeroDeposit(t *testing.T) {
	now := NowNanos(fixedClock)
	p := position("kujira1closed", "0", "1000000", "5000", now-NanosecondsPerYear)
	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{entry(t, p)}}}
	s := newTestScanner(state, 0.5)

	require.Empty(t, s.Scan(context.Background(), "m", 0))

	_, ok := s.LiquidationPrice(p, now)
	require.False(t, ok)
}

func TestScanReversesCandidates(t *testing.T) {
	now := NowNanos(fixedClock)
	a := position("kujira1a", "100", "100", "0", now)
	b := position("kujira1b", "100", "100", "0", now)
	c := position("kujira1c", "100", "100", "0", now)
	healthy := position("kujira1healthy", "1000000", "1", "0", now)

	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{
		entry(t, a), entry(t, healthy), entry(t, b), entry(t, c),
	}}}
	s := newTestScanner(state, 0.5)

	got := s.Scan(context.Background(), "m", 1)
	require.Equal(t, []Position{c, b, a}, got)
}

func TestScanSkipsMalformedAndForeignEntries(t *testing.T) {
	now := NowNanos(fixedClock)
	a := position("kujira1a", "100", "100", "0", now)
	c := position("kujira1c", "100", "100", "0", now)

	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{
		entry(t, a),
		{Key: "01", Value: "%%% not base64 %%%"},
		{Key: "02", Value: base64.StdEncoding.EncodeToString([]byte("{not json"))},
		entry(t, map[string]interface{}{"owner": "kujira1admin", "stable_denom": "factory/usk"}),
		entry(t, "just a string"),
		entry(t, position("kujira1bad", "abc", "100", "0", now)),
		entry(t, c),
	}}}
	s := newTestScanner(state, 0.5)

	got := s.Scan(context.Background(), "m", 1)
	require.Equal(t, []Position{c, a}, got)
}

func TestScanLogsMalformedEntriesOnly(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	foreign := entry(t, map[string]interface{}{"owner": "kujira1admin", "stable_denom": "factory/usk"})
	foreign.Key = "0a"
	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{
		{Key: "01", Value: "%%% not base64 %%%"},
		{Key: "02", Value: base64.StdEncoding.EncodeToString([]byte("{not json"))},
		foreign,
	}}}

	require.Empty(t, newTestScanner(state, 0.5).Scan(context.Background(), "m", 1))

	var malformed, undecodable []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec struct {
			Level   string `json:"level"`
			Key     string `json:"key"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		switch rec.Message {
		case "Skipping malformed position":
			require.Equal(t, "debug", rec.Level)
			malformed = append(malformed, rec.Key)
		case "Skipping undecodable state entry":
			undecodable = append(undecodable, rec.Key)
		}
	}
	require.Equal(t, []string{"02"}, malformed)
	require.Equal(t, []string{"01"}, undecodable)
	require.NotContains(t, buf.String(), `"key":"0a"`)
}

func TestScanQueryErrorYieldsEmpty(t *testing.T) {
	state := &fakeState{err: errors.New("connection refused")}
	s := newTestScanner(state, 0.5)

	got := s.Scan(context.Background(), "m", 1)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestScanLargeAmounts(t *testing.T) {
	now := NowNanos(fixedClock)
	// Beyond uint64
	p := position("kujira1whale", "100000000000000000000000", "90000000000000000000000", "0", now)
	state := &fakeState{resp: &kujira.ContractStateResponse{Models: []kujira.ContractModel{entry(t, p)}}}
	s := newTestScanner(state, 0.5)

	liq, ok := s.LiquidationPrice(p, now)
	require.True(t, ok)
	require.InDelta(t, 1.8, liq, 1e-9)
	require.Len(t, s.Scan(context.Background(), "m", 1.5), 1)
}
