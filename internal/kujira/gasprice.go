package kujira

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// DefaultGasMultiplier pads simulated gas for "auto" fees
var DefaultGasMultiplier = decimal.NewFromFloat(1.4)

var gasPriceRe = regexp.MustCompile(`^([0-9.]+)([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)

// GasPrice is a per-unit fee like "0.00125ukuji"
type GasPrice struct {
	Amount decimal.Decimal
	Denom  string
}

// ParseGasPrice parses "<amount><denom>"
func ParseGasPrice(s string) (GasPrice, error) {
	m := gasPriceRe.FindStringSubmatch(s)
	if m == nil {
		return GasPrice{}, fmt.Errorf("invalid gas price %q: expected <amount><denom>", s)
	}

	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return GasPrice{}, fmt.Errorf("invalid gas price amount %q: %w", m[1], err)
	}

	return GasPrice{Amount: amount, Denom: m[2]}, nil
}

func (g GasPrice) String() string {
	return g.Amount.String() + g.Denom
}

// Fee returns the fee for gasLimit units, rounded up to a whole coin
func (g GasPrice) Fee(gasLimit uint64) Fee {
	amount := g.Amount.Mul(decimal.NewFromInt(int64(gasLimit))).Ceil()
	return Fee{
		Amount:   []Coin{{Denom: g.Denom, Amount: amount.String()}},
		GasLimit: gasLimit,
	}
}
