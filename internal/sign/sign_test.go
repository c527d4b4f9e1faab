package sign

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestCanonicalString_FixedOrder(t *testing.T) {
	// Input order deliberately scrambled; output order must follow the
	// fixed parameter list.
	q := url.Values{}
	q.Set("identity", "audience")
	q.Set("aid", "6383")
	q.Set("room_id", "123")
	q.Set("live_id", "1")

	got := CanonicalString(q)
	want := "live_id=1,aid=6383,version_code=,webcast_sdk_version=," +
		"room_id=123,sub_room_id=,sub_channel_id=,did_rule=," +
		"user_unique_id=,device_platform=,device_type=,ac=," +
		"identity=audience"
	if got != want {
		t.Errorf("canonical string mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestCanonicalString_MissingKeysRenderEmpty(t *testing.T) {
	got := CanonicalString(url.Values{})
	if strings.Count(got, ",") != 12 {
		t.Fatalf("expected 13 comma-joined pairs, got %q", got)
	}
	for _, part := range strings.Split(got, ",") {
		if !strings.HasSuffix(part, "=") {
			t.Errorf("expected empty value for %q", part)
		}
	}
}

func TestCanonicalString_InputOrderIrrelevant(t *testing.T) {
	a, _ := url.ParseQuery("aid=6383&room_id=9&identity=audience")
	b, _ := url.ParseQuery("identity=audience&room_id=9&aid=6383")
	if CanonicalString(a) != CanonicalString(b) {
		t.Error("canonical string depends on input query order")
	}
}

func TestDigest_Deterministic(t *testing.T) {
	s := "live_id=1,aid=6383"
	if Digest(s) != Digest(s) {
		t.Error("same input produced different digests")
	}
	// Known md5 vector.
	if got := Digest(""); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Digest(\"\") = %q", got)
	}
	if got := Digest(s); len(got) != 32 || got != strings.ToLower(got) {
		t.Errorf("digest not 32-char lowercase hex: %q", got)
	}
}

func TestSignURL_AppendsSignature(t *testing.T) {
	var seen string
	signer := SignerFunc(func(hexDigest string) (string, error) {
		seen = hexDigest
		return "SIG123", nil
	})

	wss := "wss://example.com/push/?aid=6383&room_id=42&identity=audience"
	got, err := SignURL(wss, signer)
	if err != nil {
		t.Fatalf("SignURL: %v", err)
	}
	if !strings.HasSuffix(got, "&signature=SIG123") {
		t.Errorf("signature not appended: %q", got)
	}

	u, _ := url.Parse(wss)
	if want := Digest(CanonicalString(u.Query())); seen != want {
		t.Errorf("signer received %q, want %q", seen, want)
	}
}

func TestSignURL_SignerFailureAborts(t *testing.T) {
	signer := SignerFunc(func(string) (string, error) {
		return "", errors.New("backend down")
	})
	got, err := SignURL("wss://example.com/push/?aid=6383", signer)
	if err == nil {
		t.Fatal("expected error from failing signer")
	}
	if got != "" {
		t.Errorf("no URL may be returned on signer failure, got %q", got)
	}
}
