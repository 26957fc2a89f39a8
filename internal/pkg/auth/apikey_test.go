package auth

import "testing"

func TestVerifyKey(t *testing.T) {
	hash, err := HashKey("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := VerifyKey(hash, "s3cret"); err != nil {
		t.Fatalf("expected matching key to verify: %v", err)
	}
	if err := VerifyKey(hash, "wrong"); err != ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestVerifyKeyRejectsMalformedHash(t *testing.T) {
	if err := VerifyKey("not-a-bcrypt-hash", "anything"); err != ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
