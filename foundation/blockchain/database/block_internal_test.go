package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

func Test_isHashSolved(t *testing.T) {
	type table struct {
		difficulty uint16
		hash       string
		solved     bool
	}

	tt := []table{
		{0, "0xffff000000000000000000000000000000000000000000000000000000000000", true},
		{2, "0x00ff000000000000000000000000000000000000000000000000000000000000", true},
		{3, "0x00ff000000000000000000000000000000000000000000000000000000000000", false},
		{64, signature.ZeroHash, true},
		{65, signature.ZeroHash, false},
		{1, "0x00", false},
	}

	for i, tst := range tt {
		if got := isHashSolved(tst.difficulty, tst.hash); got != tst.solved {
			t.Errorf("case %d: difficulty %d: got %v, exp %v", i, tst.difficulty, got, tst.solved)
		}
	}
}

func Test_NonceExhausted(t *testing.T) {
	fn, err := signature.Retrieve(signature.StrategySHA256)
	if err != nil {
		t.Fatalf("Should be able to retrieve the hash strategy: %s", err)
	}

	// Start the search on the last nonce with a puzzle that can't be solved.
	b := Block{
		Header: BlockHeader{
			PrevBlockHash: signature.ZeroHash,
			Nonce:         math.MaxUint64,
			Difficulty:    64,
		},
	}

	err = b.performPOW(context.Background(), fn, func(v string, args ...any) {})
	if !errors.Is(err, ErrNonceExhausted) {
		t.Fatalf("Should get back a nonce exhausted error, got %v", err)
	}

	if b.Hash != "" {
		t.Fatalf("Should not set a hash when the search fails.")
	}
}
