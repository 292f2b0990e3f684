package encoding

import (
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty string", ""},
		{"plain javascript", "console.log('hello')"},
		{"multi-byte characters", "const greeting = 'こんにちは 🌍'"},
		{"contains commas", "a,b,c,,"},
		{"contains data url prefix", "data:text/plain;base64,AAAA"},
		{"contains semicolons and colons", "a:b;c:d; base64,"},
		{"newlines and tabs", "line1\n\tline2\r\n"},
		{"nul byte", "before\x00after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := Encode(tt.content)
			got, err := Decode(blob)
			if err != nil {
				t.Fatalf("Decode(Encode(%q)) returned error: %v", tt.content, err)
			}
			if got != tt.content {
				t.Errorf("round trip mismatch: got %q, want %q", got, tt.content)
			}
		})
	}
}

func TestEncodeAs_MediaType(t *testing.T) {
	blob := EncodeAs("body {}", "text/css")
	if got := blob.MediaType(); got != "text/css" {
		t.Errorf("MediaType() = %q, want %q", got, "text/css")
	}

	blob = EncodeAs("x", "  ")
	if got := blob.MediaType(); got != DefaultMediaType {
		t.Errorf("blank media type should fall back to default, got %q", got)
	}
}

func TestEncode_Format(t *testing.T) {
	blob := EncodeAs("hi", "text/javascript")
	expected := EncodedBlob("data:text/javascript;base64,aGk=")
	if blob != expected {
		t.Errorf("Encode = %q, want %q", blob, expected)
	}
}

func TestDecode_EmptyBlob(t *testing.T) {
	got, err := Decode("")
	if err != nil {
		t.Fatalf("empty blob should not fail, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []EncodedBlob{
		"no comma here",
		"http://example.com,abc",
		"data:text/plain,notbase64marker",
		"data:text/plain;base64,***",
	}

	for _, blob := range tests {
		if _, err := Decode(blob); !errors.Is(err, ErrMalformedBlob) {
			t.Errorf("Decode(%q) expected ErrMalformedBlob, got %v", blob, err)
		}
	}
}
