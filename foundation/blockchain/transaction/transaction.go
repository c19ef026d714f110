// Package transaction implements the transaction model: the canonical byte
// serialization every node must agree on, the signing rules, and the engine
// that moves transactions through their lifecycle against the account ledger.
package transaction

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
)

// Transaction types supported by the chain.
const (
	TypeTransfer        byte = 0
	TypeSecondSignature byte = 1
	TypeDelegate        byte = 2
	TypeVote            byte = 3
	TypeDapp            byte = 4
	TypeCompany         byte = 5
)

// Dapp categories.
const (
	DappCategoryCommon = iota
	DappCategoryBusiness
	DappCategorySocial
	DappCategoryEducation
	DappCategoryEntertainment
	DappCategoryTools
)

// =============================================================================

// SecondSignatureAsset carries the public key an account registers as its
// second signing key.
type SecondSignatureAsset struct {
	PublicKey string `json:"publicKey" validate:"required"`
}

// DelegateAsset carries a delegate registration.
type DelegateAsset struct {
	Username string `json:"username" validate:"required,max=20"`
}

// DappAsset carries a decentralized application registration. Exactly one of
// Git, Link and Nickname locates the application.
type DappAsset struct {
	Name        string `json:"name" validate:"required,min=1,max=32"`
	Description string `json:"description" validate:"max=160"`
	Tags        string `json:"tags" validate:"max=160"`
	Type        int32  `json:"type"`
	Category    int32  `json:"category"`
	Nickname    string `json:"nickname"`
	Git         string `json:"git"`
	Link        string `json:"link" validate:"omitempty,uri"`
}

// CompanyAsset carries a company registration.
type CompanyAsset struct {
	Name        string `json:"name" validate:"required,min=1,max=32"`
	Description string `json:"description" validate:"max=160"`
	Domain      string `json:"domain" validate:"required,fqdn"`
	Email       string `json:"email" validate:"required,email"`
}

// Asset is the union of per-type payloads. At most one member is set,
// matching the transaction type.
type Asset struct {
	Signature *SecondSignatureAsset `json:"signature,omitempty"`
	Delegate  *DelegateAsset        `json:"delegate,omitempty"`
	Votes     []string              `json:"votes,omitempty"`
	Dapp      *DappAsset            `json:"dapp,omitempty"`
	Company   *CompanyAsset         `json:"company,omitempty"`
}

// =============================================================================

// Transaction is a single signed operation against the ledger. The hex string
// fields hold lowercase hex and round-trip unchanged through the API.
type Transaction struct {
	ID              string   `json:"id"`
	Type            byte     `json:"type"`
	Timestamp       int64    `json:"timestamp"`
	SenderPublicKey string   `json:"senderPublicKey"`
	SenderID        string   `json:"senderId"`
	RecipientID     string   `json:"recipientId,omitempty"`
	Amount          int64    `json:"amount"`
	Fee             int64    `json:"fee"`
	Signature       string   `json:"signature"`
	SignSignature   string   `json:"signSignature,omitempty"`
	Signatures      []string `json:"signatures,omitempty"` // Co-signatures collected for multisignature accounts.
	Asset           Asset    `json:"asset"`
}

// AssetBytes returns the canonical serialization of the per-type payload.
// These bytes feed the transaction id and the signatures, so their layout is
// part of the consensus contract.
func (tx Transaction) AssetBytes() ([]byte, error) {
	switch tx.Type {
	case TypeTransfer:
		return nil, nil

	case TypeSecondSignature:
		if tx.Asset.Signature == nil {
			return nil, errors.New("missing signature asset")
		}
		pk, err := signature.DecodePublicKey(tx.Asset.Signature.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("signature asset: %w", err)
		}
		return pk, nil

	case TypeDelegate:
		if tx.Asset.Delegate == nil {
			return nil, errors.New("missing delegate asset")
		}
		return []byte(tx.Asset.Delegate.Username), nil

	case TypeVote:
		return []byte(strings.Join(tx.Asset.Votes, "")), nil

	case TypeDapp:
		dapp := tx.Asset.Dapp
		if dapp == nil {
			return nil, errors.New("missing dapp asset")
		}
		buf := new(bytes.Buffer)
		buf.WriteString(dapp.Name)
		buf.WriteString(dapp.Description)
		buf.WriteString(dapp.Tags)
		buf.WriteString(dapp.Nickname)
		buf.WriteString(dapp.Git)
		buf.WriteString(dapp.Link)
		binary.Write(buf, binary.LittleEndian, dapp.Type)
		binary.Write(buf, binary.LittleEndian, dapp.Category)
		return buf.Bytes(), nil

	case TypeCompany:
		company := tx.Asset.Company
		if company == nil {
			return nil, errors.New("missing company asset")
		}
		buf := new(bytes.Buffer)
		buf.WriteString(company.Name)
		buf.WriteString(company.Description)
		buf.WriteString(company.Domain)
		buf.WriteString(company.Email)
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("unknown transaction type %d", tx.Type)
}

// bytes builds the canonical serialization. The signatures are appended only
// when requested: the first signature signs the bytes without any signature,
// the second signs the bytes including the first.
func (tx Transaction) bytes(includeSignature bool, includeSignSignature bool) ([]byte, error) {
	assetBytes, err := tx.AssetBytes()
	if err != nil {
		return nil, err
	}

	senderPK, err := signature.DecodePublicKey(tx.SenderPublicKey)
	if err != nil {
		return nil, fmt.Errorf("sender public key: %w", err)
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(tx.Type)
	binary.Write(buf, binary.LittleEndian, uint32(tx.Timestamp))
	buf.Write(senderPK)
	binary.Write(buf, binary.BigEndian, signature.AddressNumber(tx.RecipientID))
	binary.Write(buf, binary.LittleEndian, uint64(tx.Amount))
	buf.Write(assetBytes)

	if includeSignature && tx.Signature != "" {
		sig, err := hex.DecodeString(tx.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		buf.Write(sig)
	}

	if includeSignSignature && tx.SignSignature != "" {
		sig, err := hex.DecodeString(tx.SignSignature)
		if err != nil {
			return nil, fmt.Errorf("sign signature: %w", err)
		}
		buf.Write(sig)
	}

	return buf.Bytes(), nil
}

// Bytes returns the full canonical serialization including any signatures.
func (tx Transaction) Bytes() ([]byte, error) {
	return tx.bytes(true, true)
}

// HashID derives the transaction id from the full canonical bytes.
func (tx Transaction) HashID() (string, error) {
	data, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	return signature.ContentID(data), nil
}

// =============================================================================

// Sign signs the transaction with the sender keypair and stamps the sender
// fields derived from it.
func (tx *Transaction) Sign(kp signature.Keypair) error {
	tx.SenderPublicKey = kp.PublicKeyString()
	tx.SenderID = signature.AddressFromPublicKey(kp.PublicKey)

	data, err := tx.bytes(false, false)
	if err != nil {
		return err
	}
	tx.Signature = hex.EncodeToString(kp.Sign(data))

	return tx.stampID()
}

// SecondSign adds the second signature over the bytes that include the first
// signature and recomputes the id.
func (tx *Transaction) SecondSign(kp signature.Keypair) error {
	data, err := tx.bytes(true, false)
	if err != nil {
		return err
	}
	tx.SignSignature = hex.EncodeToString(kp.Sign(data))

	return tx.stampID()
}

func (tx *Transaction) stampID() error {
	id, err := tx.HashID()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

// VerifySignature checks the first signature against the sender public key.
func (tx Transaction) VerifySignature() bool {
	data, err := tx.bytes(false, false)
	if err != nil {
		return false
	}
	return signature.VerifyHex(tx.SenderPublicKey, data, tx.Signature)
}

// VerifySecondSignature checks the second signature against the specified
// second public key.
func (tx Transaction) VerifySecondSignature(publicKey string) bool {
	data, err := tx.bytes(true, false)
	if err != nil {
		return false
	}
	return signature.VerifyHex(publicKey, data, tx.SignSignature)
}
