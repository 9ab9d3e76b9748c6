package kujira

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos addresses are ripemd160(sha256(pubkey))
)

// DefaultPrefix is the bech32 human-readable part of Kujira accounts
const DefaultPrefix = "kujira"

// CoinType 118 is the cosmos hub slip-44 coin type used by Kujira
const CoinType = 118

// Wallet is a single secp256k1 account derived from a mnemonic
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	pubKey     []byte // 33-byte compressed
	address    string
}

// NewWalletFromMnemonic derives m/44'/118'/0'/0/0 from a BIP39 mnemonic with
// no passphrase.
func NewWalletFromMnemonic(mnemonic, prefix string) (*Wallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + CoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}
	for _, idx := range path {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
	}

	ecPriv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extract private key: %w", err)
	}

	return NewWalletFromKey(ecPriv.Serialize(), prefix)
}

// NewWalletFromKey wraps a raw 32-byte secp256k1 private key
func NewWalletFromKey(raw []byte, prefix string) (*Wallet, error) {
	pk, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	pub := crypto.CompressPubkey(&pk.PublicKey)
	addr, err := AddressFromPubKey(prefix, pub)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		privateKey: pk,
		pubKey:     pub,
		address:    addr,
	}, nil
}

// Address returns the bech32 account address
func (w *Wallet) Address() string {
	return w.address
}

// PubKey returns the compressed public key
func (w *Wallet) PubKey() []byte {
	return w.pubKey
}

// Sign signs sha256(msg) and returns the 64-byte r||s signature cosmos expects
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	sig, err := crypto.Sign(hash[:], w.privateKey)
	if err != nil {
		return nil, err
	}
	// Drop the recovery id
	return sig[:64], nil
}

// AddressFromPubKey encodes bech32(prefix, ripemd160(sha256(pub)))
func AddressFromPubKey(prefix string, pub []byte) (string, error) {
	sha := sha256.Sum256(pub)
	hasher := ripemd160.New()
	hasher.Write(sha[:])

	conv, err := bech32.ConvertBits(hasher.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	encoded, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("encode bech32 address: %w", err)
	}
	return encoded, nil
}
