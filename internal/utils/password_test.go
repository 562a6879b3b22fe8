package utils

import "testing"

func TestAdminPasswordRoundTrip(t *testing.T) {
	hash, err := HashAdminPassword("s3cret")
	if err != nil {
		t.Fatalf("HashAdminPassword: %v", err)
	}
	if hash == "s3cret" || hash == "" {
		t.Fatalf("hash %q is not a digest", hash)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
	if VerifyPassword("not-a-bcrypt-hash", "s3cret") {
		t.Fatal("malformed hash accepted")
	}
}
