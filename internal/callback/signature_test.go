package callback

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"status":200,"body":"e30="}`)
	sig := Sign("shared-secret", body)
	if !Verify("shared-secret", body, sig) {
		t.Fatalf("valid signature rejected")
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"status":200,"body":"e30="}`)
	sig := Sign("shared-secret", body)
	tampered := []byte(`{"status":500,"body":"e30="}`)
	if Verify("shared-secret", tampered, sig) {
		t.Fatalf("tampered body accepted")
	}
}

func TestVerifyRejectsWrongSecretAndEmptyInputs(t *testing.T) {
	body := []byte("payload")
	sig := Sign("secret-a", body)
	if Verify("secret-b", body, sig) {
		t.Fatalf("signature verified under the wrong secret")
	}
	if Verify("", body, sig) {
		t.Fatalf("empty secret accepted")
	}
	if Verify("secret-a", body, "") {
		t.Fatalf("empty signature accepted")
	}
}
