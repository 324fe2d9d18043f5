package storage

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/vaulterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSalt = "c2FsdHNhbHRzYWx0c2FsdA"

func TestEnvelope(t *testing.T) {
	key, _ := util.NewAESKey()
	plain := `["a","b"]`

	env, err := SealRecord(plain, key, testSalt)
	require.NoError(t, err)
	assert.Equal(t, testSalt, env.Salt)

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	require.NoError(t, err)
	assert.Len(t, nonce, 12)

	decrypted, err := OpenRecord(key, env)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)

	t.Run("WrongKey", func(t *testing.T) {
		wrongKey, _ := util.NewAESKey()
		_, err := OpenRecord(wrongKey, env)
		require.ErrorIs(t, err, vaulterr.ErrAuthenticationFailed)
	})

	t.Run("WrongKeySize", func(t *testing.T) {
		_, err := OpenRecord(key[:16], env)
		require.ErrorIs(t, err, vaulterr.ErrAuthenticationFailed)
	})

	t.Run("TamperedCiphertext", func(t *testing.T) {
		ct, _ := base64.StdEncoding.DecodeString(env.Ciphertext)
		ct[0] ^= 0x01
		bad := *env
		bad.Ciphertext = base64.StdEncoding.EncodeToString(ct)

		out, err := OpenRecord(key, &bad)
		require.ErrorIs(t, err, vaulterr.ErrAuthenticationFailed)
		assert.Empty(t, out)
	})

	t.Run("BadNonceEncoding", func(t *testing.T) {
		bad := *env
		bad.Nonce = "***"
		_, err := OpenRecord(key, &bad)
		require.ErrorIs(t, err, vaulterr.ErrInvalidEnvelope)
	})

	t.Run("BadNonceLength", func(t *testing.T) {
		bad := *env
		bad.Nonce = base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := OpenRecord(key, &bad)
		require.ErrorIs(t, err, vaulterr.ErrInvalidEnvelope)
	})

	t.Run("BadCiphertextEncoding", func(t *testing.T) {
		bad := *env
		bad.Ciphertext = "not base64!"
		_, err := OpenRecord(key, &bad)
		require.ErrorIs(t, err, vaulterr.ErrInvalidEnvelope)
	})
}

func TestSealRecord_FreshNonceEachCall(t *testing.T) {
	key, _ := util.NewAESKey()

	seen := make(map[string]bool)
	for range 32 {
		env, err := SealRecord("[]", key, testSalt)
		require.NoError(t, err)
		require.False(t, seen[env.Nonce], "nonce reused")
		seen[env.Nonce] = true
	}
}

// NIST GCM test cases 13 and 14 (AES-256, all-zero key and nonce), laid out
// in the on-disk envelope: ciphertext followed by the 16-byte tag.
func TestOpenRecord_KnownAnswer(t *testing.T) {
	key := make([]byte, 32)
	nonce := base64.StdEncoding.EncodeToString(make([]byte, 12))

	tests := []struct {
		name      string
		sealed    string
		plaintext string
	}{
		{"EmptyPlaintext", "530f8afbc74536b9a963b4f1c4cb738b", ""},
		{"OneBlock", "cea7403d4d606b6e074ec5d3baf39d18" + "d0d1c8a799996bf0265b98b5d48ab919", strings.Repeat("\x00", 16)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := hex.DecodeString(tc.sealed)
			require.NoError(t, err)
			body, err := json.Marshal(map[string]string{
				"ciphertext": base64.StdEncoding.EncodeToString(raw),
				"nonce":      nonce,
				"salt":       testSalt,
			})
			require.NoError(t, err)

			got, err := Decrypt(body, key)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestOpenRecord_InvalidUTF8(t *testing.T) {
	key, _ := util.NewAESKey()
	sealed, err := util.EncryptAES([]byte{0xff, 0xfe, 0xfd}, key)
	require.NoError(t, err)

	env := &Envelope{
		Nonce:      base64.StdEncoding.EncodeToString(sealed[:12]),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[12:]),
		Salt:       testSalt,
	}
	_, err = OpenRecord(key, env)
	require.ErrorIs(t, err, vaulterr.ErrDecodedTextInvalid)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, _ := util.NewAESKey()

	for _, plain := range []string{"", "[]", `[{"title":"mail","password":"hunter2"}]`, "unicode ✓ ünïcödé"} {
		data, err := Encrypt(plain, key, testSalt)
		require.NoError(t, err)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.ElementsMatch(t, []string{"ciphertext", "nonce", "salt"}, keys(fields))

		got, err := Decrypt(data, key)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestParseEnvelope_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"NotJSON", "not json"},
		{"Array", "[]"},
		{"MissingCiphertext", `{"nonce":"AAAA","salt":"x"}`},
		{"MissingNonce", `{"ciphertext":"AAAA","salt":"x"}`},
		{"MissingSalt", `{"ciphertext":"AAAA","nonce":"AAAA"}`},
		{"WrongFieldType", `{"ciphertext":1,"nonce":"AAAA","salt":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEnvelope([]byte(tc.data))
			require.ErrorIs(t, err, vaulterr.ErrInvalidEnvelope)
		})
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
