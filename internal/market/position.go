package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrNotPosition marks a state entry of some other record shape
var ErrNotPosition = errors.New("not a position record")

// ErrMalformedPosition marks an entry that is not valid JSON or has
// mistyped fields
var ErrMalformedPosition = errors.New("malformed position record")

// Position is a borrower's record in the market contract
type Position struct {
	Owner                 string `json:"owner"`
	DepositAmount         string `json:"deposit_amount"`
	MintAmount            string `json:"mint_amount"`
	InterestAmount        string `json:"interest_amount"`
	UpdatedAt             string `json:"updated_at"`
	LiquidationPriceCache string `json:"liquidation_price_cache"`
}

// positionRecord lets decoding tell a missing deposit_amount from an empty one
type positionRecord struct {
	Owner                 string  `json:"owner"`
	DepositAmount         *string `json:"deposit_amount"`
	MintAmount            string  `json:"mint_amount"`
	InterestAmount        string  `json:"interest_amount"`
	UpdatedAt             string  `json:"updated_at"`
	LiquidationPriceCache string  `json:"liquidation_price_cache"`
}

// DecodePosition parses a contract state value. JSON values that are not
// objects carrying deposit_amount return ErrNotPosition; broken JSON and
// mistyped fields return ErrMalformedPosition.
func DecodePosition(value []byte) (Position, error) {
	var rec positionRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return Position{}, fmt.Errorf("%w: %v", ErrNotPosition, err)
		}
		return Position{}, fmt.Errorf("%w: %w", ErrMalformedPosition, err)
	}
	if rec.DepositAmount == nil {
		return Position{}, ErrNotPosition
	}
	return Position{
		Owner:                 rec.Owner,
		DepositAmount:         *rec.DepositAmount,
		MintAmount:            rec.MintAmount,
		InterestAmount:        rec.InterestAmount,
		UpdatedAt:             rec.UpdatedAt,
		LiquidationPriceCache: rec.LiquidationPriceCache,
	}, nil
}

// Amounts are the numeric fields of a position
type Amounts struct {
	Deposit   float64
	Mint      float64
	Interest  float64
	UpdatedAt int64
}

// ParseAmounts parses the string-encoded integer fields. Amounts can exceed
// 64 bits so they go through decimal before becoming float64.
func (p Position) ParseAmounts() (Amounts, error) {
	var a Amounts
	var err error
	if a.Deposit, err = parseAmount(p.DepositAmount); err != nil {
		return a, fmt.Errorf("deposit_amount: %w", err)
	}
	if a.Mint, err = parseAmount(p.MintAmount); err != nil {
		return a, fmt.Errorf("mint_amount: %w", err)
	}
	if a.Interest, err = parseAmount(p.InterestAmount); err != nil {
		return a, fmt.Errorf("interest_amount: %w", err)
	}
	if a.UpdatedAt, err = strconv.ParseInt(p.UpdatedAt, 10, 64); err != nil {
		return a, fmt.Errorf("updated_at: %w", err)
	}
	return a, nil
}

func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Truncate(0).InexactFloat64(), nil
}
