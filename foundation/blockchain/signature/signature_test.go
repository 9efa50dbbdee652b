package signature_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	hash := "0xa665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3"

	fn, err := signature.Retrieve(signature.StrategySHA256)
	if err != nil {
		t.Fatalf("Should be able to retrieve the sha256 strategy: %s", err)
	}

	h := signature.Hash(fn, 123)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(fn, 123)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}

func Test_HashKeccak(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := crypto.Keccak256Hash([]byte(`{"Name":"Bill"}`)).Hex()

	fn, err := signature.Retrieve(signature.StrategyKeccak256)
	if err != nil {
		t.Fatalf("Should be able to retrieve the keccak256 strategy: %s", err)
	}

	h := signature.Hash(fn, value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	sha, _ := signature.Retrieve(signature.StrategySHA256)
	if signature.Hash(sha, value) == h {
		t.Fatalf("Should get a different hash for a different strategy.")
	}
}

func Test_HashLength(t *testing.T) {
	if len(signature.ZeroHash) != 66 {
		t.Fatalf("Should have a zero hash of 66 characters, got %d.", len(signature.ZeroHash))
	}

	fn, _ := signature.Retrieve(signature.StrategySHA256)
	if h := signature.Hash(fn, []string{"a", "b"}); len(h) != len(signature.ZeroHash) {
		t.Fatalf("Should get back a hash the same length as the zero hash, got %d.", len(h))
	}
}

func Test_UnknownStrategy(t *testing.T) {
	if _, err := signature.Retrieve("md5"); err == nil {
		t.Fatalf("Should not be able to retrieve an unknown strategy.")
	}
}

func Test_HashUnmarshalable(t *testing.T) {
	fn, _ := signature.Retrieve(signature.StrategySHA256)

	defer func() {
		if recover() == nil {
			t.Fatalf("Should panic when the value can't be marshaled.")
		}
	}()

	h := signature.Hash(fn, make(chan int))
	t.Fatalf("Should not get back a hash for a channel, got %s", h)
}
