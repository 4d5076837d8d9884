package auth

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeBase64_RFC4648Vectors(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"f", "Zg=="},
		{"fo", "Zm8="},
		{"foo", "Zm9v"},
		{"foob", "Zm9vYg=="},
		{"fooba", "Zm9vYmE="},
		{"foobar", "Zm9vYmFy"},
	}
	for _, tc := range tests {
		if got := EncodeBase64([]byte(tc.in)); got != tc.want {
			t.Errorf("EncodeBase64(%q) = %q, want %q", tc.in, got, tc.want)
		}
		got, err := DecodeBase64(tc.want)
		if err != nil {
			t.Errorf("DecodeBase64(%q) failed: %v", tc.want, err)
			continue
		}
		if string(got) != tc.in {
			t.Errorf("DecodeBase64(%q) = %q, want %q", tc.want, got, tc.in)
		}
	}
}

func TestBase64_RoundTripAllBytes(t *testing.T) {
	src := make([]byte, 256)
	for i := range src {
		src[i] = byte(i)
	}
	for n := 0; n <= len(src); n += 37 {
		enc := EncodeBase64(src[:n])
		if len(enc)%4 != 0 {
			t.Errorf("encoded length %d is not a multiple of 4", len(enc))
		}
		dec, err := DecodeBase64(enc)
		if err != nil {
			t.Fatalf("decode failed for n=%d: %v", n, err)
		}
		if !bytes.Equal(dec, src[:n]) {
			t.Errorf("round trip mismatch for n=%d", n)
		}
	}
	if got := EncodeBase64([]byte{0xfb, 0xff}); got != "+/8=" {
		t.Errorf("expected '+/8=', got %q", got)
	}
}

func TestDecodeBase64_Invalid(t *testing.T) {
	for _, in := range []string{"Zg=", "Z===", "Zg==Zg==", "Zm9*", "Zg=a"} {
		if _, err := DecodeBase64(in); err == nil {
			t.Errorf("expected error decoding %q", in)
		}
	}
}

func TestBasic(t *testing.T) {
	name, value, err := Basic("Aladdin", "open sesame").Header()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Authorization" {
		t.Errorf("expected Authorization, got %q", name)
	}
	if value != "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==" {
		t.Errorf("unexpected value %q", value)
	}
}

func TestBearerAndAPIKey(t *testing.T) {
	name, value, _ := Bearer("tok").Header()
	if name != "Authorization" || value != "Bearer tok" {
		t.Errorf("unexpected bearer header %s: %s", name, value)
	}
	name, value, _ = APIKey("", "k1").Header()
	if name != DefaultAPIKeyHeader || value != "k1" {
		t.Errorf("unexpected api key header %s: %s", name, value)
	}
	name, _, _ = APIKey("X-Token", "k2").Header()
	if name != "X-Token" {
		t.Errorf("expected custom header name, got %q", name)
	}
}

func TestFunc(t *testing.T) {
	boom := errors.New("boom")
	f := Func(func() (string, string, error) { return "", "", boom })
	if _, _, err := f.Header(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestIdentity(t *testing.T) {
	if Identity(nil) != "" {
		t.Error("expected empty identity for nil strategy")
	}
	if Identity(Basic("a", "b")) != Identity(Basic("a", "b")) {
		t.Error("expected equal basic strategies to share an identity")
	}
	if Identity(Basic("a", "b")) == Identity(Basic("a", "c")) {
		t.Error("expected different passwords to change identity")
	}
	if Identity(Bearer("x")) == Identity(APIKey("Authorization", "x")) {
		t.Error("expected bearer and raw key identities to differ")
	}
	f := Func(func() (string, string, error) { return "A", "B", nil })
	if !strings.HasPrefix(Identity(f), "auth.Func@") {
		t.Errorf("unexpected func identity %q", Identity(f))
	}
}
