package kujira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// PageRequest mirrors cosmos.base.query.v1beta1.PageRequest query params
type PageRequest struct {
	Key     string
	Limit   uint64
	Reverse bool
}

func (p PageRequest) values() url.Values {
	v := url.Values{}
	if p.Key != "" {
		v.Set("pagination.key", p.Key)
	}
	if p.Limit > 0 {
		v.Set("pagination.limit", strconv.FormatUint(p.Limit, 10))
	}
	if p.Reverse {
		v.Set("pagination.reverse", "true")
	}
	return v
}

// PageResponse carries the cursor for the next page
type PageResponse struct {
	NextKey string `json:"next_key"`
	Total   string `json:"total"`
}

// ContractModel is one raw key/value entry of contract storage
type ContractModel struct {
	Key   string `json:"key"`   // hex
	Value string `json:"value"` // base64
}

// DecodeValue returns the base64-decoded value bytes
func (m ContractModel) DecodeValue() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Value)
}

// ContractStateResponse is the body of the AllContractState query
type ContractStateResponse struct {
	Models     []ContractModel `json:"models"`
	Pagination *PageResponse   `json:"pagination"`
}

// AllContractState lists the raw storage of a CosmWasm contract
func (c *Client) AllContractState(ctx context.Context, contract string, page PageRequest) (*ContractStateResponse, error) {
	path := "/cosmwasm/wasm/v1/contract/" + url.PathEscape(contract) + "/state"
	if q := page.values().Encode(); q != "" {
		path += "?" + q
	}

	var resp ContractStateResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("query contract state %s: %w", contract, err)
	}
	return &resp, nil
}

// ExchangeRate returns the oracle exchange rate for a denom. A missing rate
// reads as zero.
func (c *Client) ExchangeRate(ctx context.Context, denom string) (decimal.Decimal, error) {
	var resp struct {
		ExchangeRate string `json:"exchange_rate"`
	}
	if err := c.get(ctx, "/oracle/denoms/"+url.PathEscape(denom)+"/exchange_rate", &resp); err != nil {
		return decimal.Zero, fmt.Errorf("query exchange rate %s: %w", denom, err)
	}
	if resp.ExchangeRate == "" {
		return decimal.Zero, nil
	}

	rate, err := decimal.NewFromString(resp.ExchangeRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse exchange rate %q: %w", resp.ExchangeRate, err)
	}
	return rate, nil
}

// BaseAccount holds the fields needed to sign for an account
type BaseAccount struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// Account fetches the account number and sequence of an address
func (c *Client) Account(ctx context.Context, address string) (*BaseAccount, error) {
	var resp struct {
		Account json.RawMessage `json:"account"`
	}
	if err := c.get(ctx, "/cosmos/auth/v1beta1/accounts/"+url.PathEscape(address), &resp); err != nil {
		return nil, fmt.Errorf("query account %s: %w", address, err)
	}

	var acc struct {
		Address       string `json:"address"`
		AccountNumber string `json:"account_number"`
		Sequence      string `json:"sequence"`
		// Vesting and module accounts nest the base account
		BaseAccount *struct {
			Address       string `json:"address"`
			AccountNumber string `json:"account_number"`
			Sequence      string `json:"sequence"`
		} `json:"base_account"`
	}
	if err := json.Unmarshal(resp.Account, &acc); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	if acc.BaseAccount != nil && acc.AccountNumber == "" {
		acc.Address = acc.BaseAccount.Address
		acc.AccountNumber = acc.BaseAccount.AccountNumber
		acc.Sequence = acc.BaseAccount.Sequence
	}

	out := &BaseAccount{Address: acc.Address}
	var err error
	if out.AccountNumber, err = parseUint(acc.AccountNumber); err != nil {
		return nil, fmt.Errorf("account_number: %w", err)
	}
	if out.Sequence, err = parseUint(acc.Sequence); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	return out, nil
}

// Simulate dry-runs a signed-shape tx and returns the gas it used
func (c *Client) Simulate(ctx context.Context, txBytes []byte) (uint64, error) {
	req := map[string]string{
		"tx_bytes": base64.StdEncoding.EncodeToString(txBytes),
	}
	var resp struct {
		GasInfo struct {
			GasUsed string `json:"gas_used"`
		} `json:"gas_info"`
	}
	if err := c.post(ctx, "/cosmos/tx/v1beta1/simulate", req, &resp); err != nil {
		return 0, fmt.Errorf("simulate: %w", err)
	}

	gas, err := parseUint(resp.GasInfo.GasUsed)
	if err != nil {
		return 0, fmt.Errorf("simulate gas_used: %w", err)
	}
	return gas, nil
}

// parseUint treats an empty string as zero, as proto3 JSON omits defaults
func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
