package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Error("hash equals the plain text password")
	}
	if !ComparePassword(hash, "correct horse battery staple") {
		t.Error("correct password did not verify")
	}
	if ComparePassword(hash, "wrong password") {
		t.Error("wrong password verified")
	}
}
