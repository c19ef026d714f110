package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Block represents a group of transactions forged together. The hex string
// fields hold lowercase hex and round-trip unchanged through the API.
type Block struct {
	ID                   string                    `json:"id"`
	Version              uint32                    `json:"version"`
	Timestamp            int64                     `json:"timestamp"`
	Height               uint64                    `json:"height"`
	PreviousBlock        string                    `json:"previousBlock,omitempty"`
	NumberOfTransactions int                       `json:"numberOfTransactions"`
	TotalAmount          int64                     `json:"totalAmount"`
	TotalFee             int64                     `json:"totalFee"`
	PayloadLength        int                       `json:"payloadLength"`
	DelegateCount        int                       `json:"delegateCount"`
	PayloadHash          string                    `json:"payloadHash"`
	GeneratorPublicKey   string                    `json:"generatorPublicKey"`
	BlockSignature       string                    `json:"blockSignature"`
	Transactions         []transaction.Transaction `json:"transactions"`
}

// Payload computes the payload hash and length over the canonical bytes of
// the block's transactions, in block order.
func Payload(txs []transaction.Transaction) (hash string, length int, err error) {
	var payload []byte
	for _, tx := range txs {
		data, err := tx.Bytes()
		if err != nil {
			return "", 0, fmt.Errorf("transaction %q: %w", tx.ID, err)
		}
		payload = append(payload, data...)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), len(payload), nil
}

// bytes builds the canonical block serialization, optionally including the
// generator's signature.
func (b Block) bytes(includeSignature bool) ([]byte, error) {
	payloadHash, err := hex.DecodeString(b.PayloadHash)
	if err != nil {
		return nil, fmt.Errorf("payload hash: %w", err)
	}
	if len(payloadHash) != sha256.Size {
		return nil, errors.New("invalid length for payload hash")
	}

	generatorPK, err := signature.DecodePublicKey(b.GeneratorPublicKey)
	if err != nil {
		return nil, fmt.Errorf("generator public key: %w", err)
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, b.Version)
	binary.Write(buf, binary.LittleEndian, uint32(b.Timestamp))
	binary.Write(buf, binary.BigEndian, signature.IDNumber(b.PreviousBlock))
	binary.Write(buf, binary.LittleEndian, uint32(b.NumberOfTransactions))
	binary.Write(buf, binary.LittleEndian, uint64(b.TotalAmount))
	binary.Write(buf, binary.LittleEndian, uint64(b.TotalFee))
	binary.Write(buf, binary.LittleEndian, uint32(b.PayloadLength))
	binary.Write(buf, binary.LittleEndian, uint16(b.DelegateCount))
	buf.Write(payloadHash)
	buf.Write(generatorPK)

	if includeSignature && b.BlockSignature != "" {
		sig, err := hex.DecodeString(b.BlockSignature)
		if err != nil {
			return nil, fmt.Errorf("block signature: %w", err)
		}
		buf.Write(sig)
	}

	return buf.Bytes(), nil
}

// Bytes returns the full canonical serialization including the signature.
func (b Block) Bytes() ([]byte, error) {
	return b.bytes(true)
}

// HashID derives the block id from the full canonical bytes.
func (b Block) HashID() (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	return signature.ContentID(data), nil
}

// Sign signs the block with the generator keypair and stamps the id.
func (b *Block) Sign(kp signature.Keypair) error {
	data, err := b.bytes(false)
	if err != nil {
		return err
	}
	b.BlockSignature = hex.EncodeToString(kp.Sign(data))

	id, err := b.HashID()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// VerifySignature checks the block signature against the generator's public
// key.
func (b Block) VerifySignature() bool {
	data, err := b.bytes(false)
	if err != nil {
		return false
	}
	return signature.VerifyHex(b.GeneratorPublicKey, data, b.BlockSignature)
}

// =============================================================================

// ValidateBlock checks a candidate block against the current chain head. The
// slot ownership check runs separately because it needs the delegate list.
func ValidateBlock(previous Block, block Block) error {
	if block.Height != previous.Height+1 {
		return &ChainError{
			Msg: fmt.Sprintf("block height %d does not follow chain head %d", block.Height, previous.Height),
		}
	}

	if block.PreviousBlock != previous.ID {
		return &ChainError{
			Msg: fmt.Sprintf("block links to %q, chain head is %q", block.PreviousBlock, previous.ID),
		}
	}

	if slots.SlotNumber(block.Timestamp) <= slots.SlotNumber(previous.Timestamp) {
		return &ChainError{Msg: "block slot does not advance past the chain head"}
	}
	if slots.SlotNumber(block.Timestamp) > slots.CurrentSlot() {
		return &ChainError{Msg: "block slot is in the future"}
	}

	id, err := block.HashID()
	if err != nil {
		return &ChainError{Msg: fmt.Sprintf("unable to serialize block: %s", err)}
	}
	if block.ID != id {
		return &ChainError{Msg: fmt.Sprintf("block id mismatch, expected %q", id)}
	}

	if block.NumberOfTransactions != len(block.Transactions) {
		return &ChainError{Msg: "block transaction count does not match its payload"}
	}

	payloadHash, payloadLength, err := Payload(block.Transactions)
	if err != nil {
		return &ChainError{Msg: fmt.Sprintf("unable to serialize payload: %s", err)}
	}
	if block.PayloadHash != payloadHash || block.PayloadLength != payloadLength {
		return &ChainError{Msg: "block payload hash does not match its transactions"}
	}

	var totalAmount, totalFee int64
	for _, tx := range block.Transactions {
		totalAmount += tx.Amount
		totalFee += tx.Fee
	}
	if block.TotalAmount != totalAmount || block.TotalFee != totalFee {
		return &ChainError{Msg: "block totals do not match its transactions"}
	}

	if !block.VerifySignature() {
		return &ChainError{Msg: "block signature does not verify"}
	}

	return nil
}
