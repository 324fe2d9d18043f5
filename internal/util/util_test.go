package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAES(t *testing.T) {
	key, _ := NewAESKey()
	plainText := []byte("hello world")

	t.Run("EncryptDecrypt", func(t *testing.T) {
		cipherText, err := EncryptAES(plainText, key)
		if err != nil {
			t.Fatalf("EncryptAES failed: %v", err)
		}
		if len(cipherText) != AESNonceSize+len(plainText)+16 {
			t.Errorf("unexpected ciphertext length %d", len(cipherText))
		}

		decrypted, err := DecryptAES(cipherText, key)
		if err != nil {
			t.Fatalf("DecryptAES failed: %v", err)
		}
		if !bytes.Equal(plainText, decrypted) {
			t.Errorf("expected %s, got %s", plainText, decrypted)
		}
	})

	t.Run("FreshNonce", func(t *testing.T) {
		a, _ := EncryptAES(plainText, key)
		b, _ := EncryptAES(plainText, key)
		if bytes.Equal(a[:AESNonceSize], b[:AESNonceSize]) {
			t.Error("nonce reused across encryptions")
		}
	})

	t.Run("TamperCipherText", func(t *testing.T) {
		cipherText, _ := EncryptAES(plainText, key)
		cipherText[len(cipherText)-1] ^= 0xFF
		if _, err := DecryptAES(cipherText, key); err == nil {
			t.Error("expected error with tampered ciphertext, got nil")
		}
	})

	t.Run("WrongKey", func(t *testing.T) {
		cipherText, _ := EncryptAES(plainText, key)
		other, _ := NewAESKey()
		if _, err := DecryptAES(cipherText, other); err == nil {
			t.Error("expected error with wrong key, got nil")
		}
	})

	t.Run("ShortCipherText", func(t *testing.T) {
		if _, err := DecryptAES([]byte{1, 2, 3}, key); err == nil {
			t.Error("expected error for ciphertext shorter than nonce")
		}
	})

	t.Run("RejectBadKeySize", func(t *testing.T) {
		if _, err := EncryptAES(plainText, []byte("too short")); err == nil {
			t.Error("expected error with wrong key size, got nil")
		}
	})
}

func TestArgon2id(t *testing.T) {
	params := DefaultArgon2idParams()
	salt := []byte("0123456789abcdef")

	key, err := DeriveArgon2idKey([]byte("correct horse battery staple"), salt, params)
	if err != nil {
		t.Fatalf("DeriveArgon2idKey failed: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("expected key length 32, got %d", len(key))
	}

	again, _ := DeriveArgon2idKey([]byte("correct horse battery staple"), salt, params)
	if !bytes.Equal(key, again) {
		t.Error("argon2id should be deterministic")
	}

	other, _ := DeriveArgon2idKey([]byte("wrong passphrase"), salt, params)
	if bytes.Equal(key, other) {
		t.Error("different passphrases should derive different keys")
	}
}

func TestDefaultArgon2idParams_MatchesInteractiveProfile(t *testing.T) {
	p := DefaultArgon2idParams()
	if p != (Argon2idParams{Time: 2, MemoryKiB: 19 * 1024, Parallelism: 1, KeyLen: 32}) {
		t.Errorf("default params changed: %+v", p)
	}
}

func TestArgon2idProfile_AllProfiles(t *testing.T) {
	for _, name := range []string{KDFProfileInteractive, KDFProfileModerate, KDFProfileSensitive} {
		t.Run(name, func(t *testing.T) {
			p, err := Argon2idProfile(name)
			if err != nil {
				t.Fatalf("Argon2idProfile(%q) failed: %v", name, err)
			}
			if err := ValidateArgon2idParams(p); err != nil {
				t.Errorf("profile %q failed validation: %v", name, err)
			}
		})
	}

	if _, err := Argon2idProfile("nonexistent"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestValidateArgon2idParams(t *testing.T) {
	cases := map[string]Argon2idParams{
		"short key":      {Time: 1, MemoryKiB: 64, Parallelism: 1, KeyLen: 16},
		"zero time":      {Time: 0, MemoryKiB: 64, Parallelism: 1, KeyLen: 32},
		"zero threads":   {Time: 1, MemoryKiB: 64, Parallelism: 0, KeyLen: 32},
		"too little mem": {Time: 1, MemoryKiB: 8, Parallelism: 4, KeyLen: 32},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateArgon2idParams(p); err == nil {
				t.Errorf("expected %+v to be rejected", p)
			}
			if _, err := DeriveArgon2idKey([]byte("x"), []byte("saltsalt"), p); err == nil {
				t.Errorf("expected derivation with %+v to fail", p)
			}
		})
	}
}

func TestBytes(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03}
	copied := CopyBytes(a)
	if !bytes.Equal(copied, a) {
		t.Error("CopyBytes failed")
	}
	copied[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("CopyBytes should return a new slice")
	}

	WipeBytes(copied)
	if !bytes.Equal(copied, []byte{0, 0, 0}) {
		t.Errorf("WipeBytes left %v", copied)
	}
}

func TestEncoding(t *testing.T) {
	encoded := Base64Encode([]byte("test string"))
	decoded, err := Base64Decode(encoded)
	if err != nil {
		t.Fatalf("Base64Decode failed: %v", err)
	}
	if string(decoded) != "test string" {
		t.Errorf("expected %q, got %q", "test string", decoded)
	}

}

func TestHasAmbiguousEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"correct-horse", false},
		{"", false},
		{"caf\u00e9", true},
		{"cafe\u0301", true},
		{"\ufb01le-secret", true},
		{"\u65e5\u672c\u8a9e", false},
	}
	for _, tc := range tests {
		if got := HasAmbiguousEncoding(tc.in); got != tc.want {
			t.Errorf("HasAmbiguousEncoding(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRandomBytes(t *testing.T) {
	b1, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes failed: %v", err)
	}
	b2, _ := RandomBytes(32)
	if len(b1) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(b1))
	}
	if bytes.Equal(b1, b2) {
		t.Error("RandomBytes should produce different outputs")
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "vault.json")

	if err := AtomicWriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
