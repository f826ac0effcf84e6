package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass", 4) // minimum cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical, salt missing")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash verified as valid")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("empty hash verified as valid")
	}
}
