package esi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestOrder_UnmarshalJSON(t *testing.T) {
	raw := `{"order_id":1,"type_id":34,"location_id":60003760,"system_id":30000142,"price":4.5,"volume_remain":100000,"is_buy_order":false,"issued":"2026-08-01T12:00:00Z"}`
	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if o.OrderID != 1 || o.TypeID != 34 || o.LocationID != 60003760 || o.SystemID != 30000142 {
		t.Errorf("Order = %+v", o)
	}
	if o.Price != 4.5 || o.VolumeRemain != 100000 {
		t.Errorf("Price/VolumeRemain = %v/%v", o.Price, o.VolumeRemain)
	}
	if o.IsBuyOrder {
		t.Error("IsBuyOrder want false")
	}
	if o.Issued.IsZero() {
		t.Error("Issued not parsed")
	}
}

func TestParseExpires_Header(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Expires", "Mon, 31 Aug 2026 12:05:00 GMT")
	got := parseExpires(resp)
	want := time.Date(2026, 8, 31, 12, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseExpires = %v, want %v", got, want)
	}
}

func TestParseExpires_MissingHeaderFallsBack(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	got := parseExpires(resp)
	if until := time.Until(got); until < 4*time.Minute || until > 6*time.Minute {
		t.Errorf("fallback expiry %v from now, want ~5m", until)
	}
}

func TestParsePages(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if n := parsePages(resp); n != 1 {
		t.Errorf("parsePages without header = %d, want 1", n)
	}
	resp.Header.Set("X-Pages", "7")
	if n := parsePages(resp); n != 7 {
		t.Errorf("parsePages = %d, want 7", n)
	}
	resp.Header.Set("X-Pages", "junk")
	if n := parsePages(resp); n != 1 {
		t.Errorf("parsePages with junk header = %d, want 1", n)
	}
}

func TestNewClient_NonNil(t *testing.T) {
	c := NewClient("", 0)
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
}

func TestAuthedCalls_RequireToken(t *testing.T) {
	c := NewClient("", 0)
	if _, err := c.CharacterLocation(); err == nil {
		t.Error("CharacterLocation without token should fail")
	}
	if err := c.SetWaypoints([]int64{60003760}); err == nil {
		t.Error("SetWaypoints without token should fail")
	}
}
