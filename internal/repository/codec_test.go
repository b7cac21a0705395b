package repository

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_Unversioned(t *testing.T) {
	raw := `{"items":[{"product":{"id":7,"title":"Phone","price":549,"discountPercentage":12.96},"quantity":2}],"isCartOpen":true}`
	s, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(s.Items) != 1 || s.Items[0].Product.ID != 7 || s.Items[0].Quantity != 2 || !s.IsCartOpen {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestDecode_FutureVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":99,"items":[],"isCartOpen":false}`))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected corrupt, got %v", err)
	}
}

func TestDecode_Normalizes(t *testing.T) {
	raw := `{"version":1,"items":[
		{"product":{"id":1},"quantity":2},
		{"product":{"id":2},"quantity":0},
		{"product":{"id":3},"quantity":1},
		{"product":{"id":1},"quantity":3}
	]}`
	s, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", s.Items)
	}
	if s.Items[0].Product.ID != 1 || s.Items[0].Quantity != 5 {
		t.Fatalf("duplicate not merged: %+v", s.Items[0])
	}
	if s.Items[1].Product.ID != 3 {
		t.Fatalf("order not kept: %+v", s.Items)
	}
}

func TestEncode_NoTotalsVersionTagged(t *testing.T) {
	b, err := Encode(sampleState())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"version":1`) {
		t.Fatalf("missing version tag: %s", out)
	}
	if strings.Contains(out, "total") {
		t.Fatalf("derived totals persisted: %s", out)
	}
}
