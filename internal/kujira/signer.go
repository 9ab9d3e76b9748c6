package kujira

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SIGNING CLIENT
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow per tx:
//   account → simulate → gas × multiplier → fee → SignDoc → sign → broadcast_tx_sync
//
// No inclusion wait: the tx hash is returned once CheckTx accepts it.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Signer produces cosmos signatures for one account
type Signer interface {
	Address() string
	PubKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// SigningClient signs and broadcasts txs for a single wallet
type SigningClient struct {
	signer        Signer
	rest          *Client
	rpc           *RPCClient
	gasPrice      GasPrice
	gasMultiplier decimal.Decimal
	chainID       string
}

// NewSigningClient creates a signing client. Call Connect before use.
func NewSigningClient(signer Signer, rest *Client, rpc *RPCClient, gasPrice GasPrice) *SigningClient {
	return &SigningClient{
		signer:        signer,
		rest:          rest,
		rpc:           rpc,
		gasPrice:      gasPrice,
		gasMultiplier: DefaultGasMultiplier,
	}
}

// Connect resolves the chain id from the RPC node
func (c *SigningClient) Connect(ctx context.Context) error {
	status, err := c.rpc.Status(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if status.Network == "" {
		return errors.New("connect: node reported empty chain id")
	}
	c.chainID = status.Network

	log.Info().
		Str("chain_id", c.chainID).
		Str("height", status.LatestBlockHeight).
		Str("address", c.signer.Address()).
		Str("gas_price", c.gasPrice.String()).
		Msg("⛓️ Signing client connected")
	return nil
}

// Address returns the signer address
func (c *SigningClient) Address() string {
	return c.signer.Address()
}

// ChainID returns the chain id resolved by Connect
func (c *SigningClient) ChainID() string {
	return c.chainID
}

// SignAndBroadcast builds, signs and submits msgs with an auto-estimated fee
func (c *SigningClient) SignAndBroadcast(ctx context.Context, msgs ...Msg) (*BroadcastResult, error) {
	if c.chainID == "" {
		return nil, errors.New("signing client not connected")
	}
	if len(msgs) == 0 {
		return nil, errors.New("no messages to broadcast")
	}

	acc, err := c.rest.Account(ctx, c.signer.Address())
	if err != nil {
		return nil, err
	}

	body := marshalTxBody(msgs, "")

	// Simulate with an empty signature and zero-amount fee
	simAuth := marshalAuthInfo(c.signer.PubKey(), acc.Sequence, Fee{})
	gasUsed, err := c.rest.Simulate(ctx, marshalTxRaw(body, simAuth, []byte{}))
	if err != nil {
		return nil, err
	}

	gasLimit := uint64(decimal.NewFromInt(int64(gasUsed)).Mul(c.gasMultiplier).Round(0).IntPart())
	fee := c.gasPrice.Fee(gasLimit)

	authInfo := marshalAuthInfo(c.signer.PubKey(), acc.Sequence, fee)
	signDoc := marshalSignDoc(body, authInfo, c.chainID, acc.AccountNumber)
	sig, err := c.signer.Sign(signDoc)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	log.Debug().
		Uint64("gas_used", gasUsed).
		Uint64("gas_limit", gasLimit).
		Str("fee", fee.Amount[0].Amount+fee.Amount[0].Denom).
		Uint64("sequence", acc.Sequence).
		Msg("Broadcasting tx")

	return c.rpc.BroadcastTxSync(ctx, marshalTxRaw(body, authInfo, sig))
}
