package kujira

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PROTOBUF WIRE ENCODING
// ═══════════════════════════════════════════════════════════════════════════════
//
// Hand-rolled proto3 encoders for the few cosmos-sdk / wasmd messages a
// liquidation tx needs. Fields are written in field-number order with zero
// values omitted, which is the canonical encoding the chain verifies
// signatures against.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	TypeURLMsgExecuteContract = "/cosmwasm.wasm.v1.MsgExecuteContract"
	TypeURLSecp256k1PubKey    = "/cosmos.crypto.secp256k1.PubKey"

	// SignModeDirect is cosmos.tx.signing.v1beta1.SignMode SIGN_MODE_DIRECT
	SignModeDirect = 1
)

// Msg is anything that can be packed into a TxBody
type Msg interface {
	TypeURL() string
	Marshal() []byte
}

// Coin is cosmos.base.v1beta1.Coin
type Coin struct {
	Denom  string
	Amount string
}

// MsgExecuteContract is cosmwasm.wasm.v1.MsgExecuteContract
type MsgExecuteContract struct {
	Sender   string
	Contract string
	Msg      []byte // JSON
	Funds    []Coin
}

func (m *MsgExecuteContract) TypeURL() string { return TypeURLMsgExecuteContract }

func (m *MsgExecuteContract) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Sender)
	b = appendString(b, 2, m.Contract)
	b = appendBytes(b, 3, m.Msg)
	for _, c := range m.Funds {
		b = appendMessage(b, 5, c.marshal())
	}
	return b
}

func (c Coin) marshal() []byte {
	var b []byte
	b = appendString(b, 1, c.Denom)
	b = appendString(b, 2, c.Amount)
	return b
}

// marshalAny encodes google.protobuf.Any
func marshalAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	b = appendBytes(b, 2, value)
	return b
}

// Fee is cosmos.tx.v1beta1.Fee
type Fee struct {
	Amount   []Coin
	GasLimit uint64
}

func (f Fee) marshal() []byte {
	var b []byte
	for _, c := range f.Amount {
		b = appendMessage(b, 1, c.marshal())
	}
	b = appendUint(b, 2, f.GasLimit)
	return b
}

// marshalTxBody encodes cosmos.tx.v1beta1.TxBody
func marshalTxBody(msgs []Msg, memo string) []byte {
	var b []byte
	for _, m := range msgs {
		b = appendMessage(b, 1, marshalAny(m.TypeURL(), m.Marshal()))
	}
	b = appendString(b, 2, memo)
	return b
}

// marshalAuthInfo encodes cosmos.tx.v1beta1.AuthInfo with a single
// SIGN_MODE_DIRECT secp256k1 signer.
func marshalAuthInfo(pubKey []byte, sequence uint64, fee Fee) []byte {
	pk := appendBytes(nil, 1, pubKey)

	// ModeInfo{single: ModeInfo.Single{mode: DIRECT}}
	single := appendUint(nil, 1, SignModeDirect)
	modeInfo := appendMessage(nil, 1, single)

	var signer []byte
	signer = appendMessage(signer, 1, marshalAny(TypeURLSecp256k1PubKey, pk))
	signer = appendMessage(signer, 2, modeInfo)
	signer = appendUint(signer, 3, sequence)

	var b []byte
	b = appendMessage(b, 1, signer)
	b = appendMessage(b, 2, fee.marshal())
	return b
}

// marshalSignDoc encodes cosmos.tx.v1beta1.SignDoc
func marshalSignDoc(bodyBytes, authInfoBytes []byte, chainID string, accountNumber uint64) []byte {
	var b []byte
	b = appendBytes(b, 1, bodyBytes)
	b = appendBytes(b, 2, authInfoBytes)
	b = appendString(b, 3, chainID)
	b = appendUint(b, 4, accountNumber)
	return b
}

// marshalTxRaw encodes cosmos.tx.v1beta1.TxRaw
func marshalTxRaw(bodyBytes, authInfoBytes []byte, signatures ...[]byte) []byte {
	var b []byte
	b = appendBytes(b, 1, bodyBytes)
	b = appendBytes(b, 2, authInfoBytes)
	for _, sig := range signatures {
		// repeated bytes keeps empty elements
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, sig)
	}
	return b
}

// Helpers

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always writes the field, even for an empty submessage
func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
