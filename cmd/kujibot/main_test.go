package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kujibot/internal/config"
	"github.com/web3guy0/kujibot/internal/database"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testConfig(t *testing.T, rest, rpc string) *config.Config {
	t.Helper()
	return &config.Config{
		RESTEndpoint:  rest,
		RPCEndpoint:   rpc,
		Mnemonic:      testMnemonic,
		AddressPrefix: "kujira",
		MarketAddress: "kujira1market",
		OracleDenom:   "ATOM",
		MaxLTV:        0.6,
		GasPrice:      config.DefaultGasPrice,
		PollInterval:  time.Millisecond,
		DatabasePath:  filepath.Join(t.TempDir(), "journal.db"),
	}
}

func TestRunReturnsOracleFailureAfterReleasingJournal(t *testing.T) {
	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"node_info":{"network":"kaiyo-1"},"sync_info":{"latest_block_height":"1"}}}`))
	}))
	defer rpc.Close()

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"code":13,"message":"oracle unavailable"}`))
	}))
	defer rest.Close()

	cfg := testConfig(t, rest.URL, rpc.URL)
	err := run(context.Background(), cfg)
	require.ErrorContains(t, err, "fetch oracle price")
	require.ErrorContains(t, err, "oracle unavailable")

	db, err := database.New(cfg.DatabasePath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestRunRejectsBadGasPrice(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0", "http://127.0.0.1:0")
	cfg.GasPrice = "ukuji"

	require.ErrorContains(t, run(context.Background(), cfg), "parse gas price")
}

func TestRunStopsOnCancel(t *testing.T) {
	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"node_info":{"network":"kaiyo-1"}}}`))
	}))
	defer rpc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oracle/denoms/ATOM/exchange_rate":
			_, _ = w.Write([]byte(`{"exchange_rate":"10"}`))
		default:
			cancel()
			_, _ = w.Write([]byte(`{"models":[],"pagination":{"next_key":null,"total":"0"}}`))
		}
	}))
	defer rest.Close()

	require.NoError(t, run(ctx, testConfig(t, rest.URL, rpc.URL)))
}
