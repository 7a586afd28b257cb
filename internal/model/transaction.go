package model

import (
	"crypto/sha256"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is one general-ledger line for a property. Immutable once
// loaded; amounts that fail to parse upstream arrive as zero and are
// dropped during classification.
type Transaction struct {
	PropertyID  string
	Account     Account
	Description string
	Period      string // YYYYMM
	NetAmount   decimal.Decimal
}

// GenerateHash produces a deduplication key so re-importing the same GL
// feed never doubles a line.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.PropertyID,
		t.Account,
		t.Period,
		t.NetAmount.String(),
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ClassifiedSet groups a property's transactions by rule bucket. A
// transaction may sit in several buckets at once (cam and base, say) but
// never in both cam and ret.
type ClassifiedSet struct {
	CAM   []Transaction
	RET   []Transaction
	Base  []Transaction
	Cap   []Transaction
	Other []Transaction
}

// Bucket returns the bucket slice for a recovery category.
func (s *ClassifiedSet) Bucket(c Category) []Transaction {
	switch c {
	case CategoryCAM:
		return s.CAM
	case CategoryRET:
		return s.RET
	case CategoryBase:
		return s.Base
	case CategoryCap:
		return s.Cap
	default:
		return s.Other
	}
}

// SumBucket totals the net amounts in one bucket.
func (s *ClassifiedSet) SumBucket(c Category) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range s.Bucket(c) {
		total = total.Add(txn.NetAmount)
	}
	return total
}
