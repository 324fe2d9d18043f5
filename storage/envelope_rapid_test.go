package storage

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/vaulterr"
)

func genKey(t *rapid.T, label string) []byte {
	return rapid.SliceOfN(rapid.Byte(), util.AESKeySize, util.AESKeySize).Draw(t, label)
}

func TestEnvelopeProperties(t *testing.T) {
	t.Run("round trip", rapid.MakeCheck(func(t *rapid.T) {
		key := genKey(t, "key")
		plaintext := rapid.String().Draw(t, "plaintext")

		data, err := Encrypt(plaintext, key, "salt")
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		got, err := Decrypt(data, key)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}))

	t.Run("any flipped ciphertext bit is rejected", rapid.MakeCheck(func(t *rapid.T) {
		key := genKey(t, "key")
		plaintext := rapid.String().Draw(t, "plaintext")

		env, err := SealRecord(plaintext, key, "salt")
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		ct, err := util.Base64Decode(env.Ciphertext)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		i := rapid.IntRange(0, len(ct)-1).Draw(t, "index")
		bit := rapid.IntRange(0, 7).Draw(t, "bit")
		ct[i] ^= 1 << bit
		env.Ciphertext = util.Base64Encode(ct)

		_, err = OpenRecord(key, env)
		if vaulterr.KindOf(err) != vaulterr.AuthenticationFailed {
			t.Fatalf("tampered ciphertext: got %v, want authentication failure", err)
		}
	}))

	t.Run("a different key is rejected", rapid.MakeCheck(func(t *rapid.T) {
		key := genKey(t, "key")
		other := genKey(t, "other")
		if string(key) == string(other) {
			t.Skip("keys collided")
		}

		data, err := Encrypt(rapid.String().Draw(t, "plaintext"), key, "salt")
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		_, err = Decrypt(data, other)
		if vaulterr.KindOf(err) != vaulterr.AuthenticationFailed {
			t.Fatalf("wrong key: got %v, want authentication failure", err)
		}
	}))
}
