package payway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func testConfig() *Config {
	cfg := &Config{
		MerchantID:  "ec001",
		HashKey:     "secret-hash-key",
		BaseURL:     "https://checkout-sandbox.payway.com.kh",
		CallbackURL: "https://example.com/api/v1/payments/qr/callback",
		Currency:    "USD",
	}
	cfg.Normalize()
	return cfg
}

func hmacSHA512Base64(key, payload string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSignQRFieldOrder(t *testing.T) {
	cfg := testConfig()

	reqTime := "20260828120000"
	tranID := "20260828120000123"
	amount := "12.34"
	items := "aXRlbXM="
	callbackURL := "Y2FsbGJhY2s="
	returnDeeplink := "ZGVlcGxpbms="

	got := SignQR(cfg, reqTime, tranID, amount, items,
		"Sok", "San", "sok@example.com", "012345678",
		callbackURL, returnDeeplink, "6")

	// 网关要求的拼接顺序，顺序错误会导致签名校验失败
	payload := reqTime + cfg.MerchantID + tranID + amount + items +
		"Sok" + "San" + "sok@example.com" + "012345678" +
		PurchaseType + PaymentOption +
		callbackURL + returnDeeplink +
		cfg.Currency + "6" + QRTemplate
	want := hmacSHA512Base64(cfg.HashKey, payload)

	if got != want {
		t.Fatalf("SignQR = %q, want %q", got, want)
	}
}

func TestSignQRSensitiveToFields(t *testing.T) {
	cfg := testConfig()
	base := SignQR(cfg, "20260828120000", "t1", "1.00", "", "", "", "", "", "cb", "dl", "6")
	changed := SignQR(cfg, "20260828120000", "t1", "1.01", "", "", "", "", "", "cb", "dl", "6")
	if base == changed {
		t.Fatalf("signature must change when amount changes")
	}
}

func TestSignCheck(t *testing.T) {
	cfg := testConfig()
	got := SignCheck(cfg, "20260828120000", "t1")
	want := hmacSHA512Base64(cfg.HashKey, "20260828120000"+cfg.MerchantID+"t1")
	if got != want {
		t.Fatalf("SignCheck = %q, want %q", got, want)
	}
}

func TestNewTranID(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	id := NewTranID(now)
	if len(id) != 17 {
		t.Fatalf("tran_id length = %d, want 17", len(id))
	}
	if !strings.HasPrefix(id, "20260828120000") {
		t.Fatalf("tran_id = %q, want timestamp prefix", id)
	}
}

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback([]byte(`{"tran_id":"t1","apv":123456,"status":"00","merchant_ref_no":"REF_1"}`))
	if err != nil {
		t.Fatalf("ParseCallback error: %v", err)
	}
	if data.TranID != "t1" || data.Status != "00" {
		t.Fatalf("unexpected callback data: %+v", data)
	}
	if data.APV != "123456" {
		t.Fatalf("apv = %q, want 123456", data.APV)
	}

	if _, err := ParseCallback([]byte(`{"status":"00"}`)); err == nil {
		t.Fatalf("expected error when tran_id missing")
	}
	if _, err := ParseCallback(nil); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := testConfig()
	bad.HashKey = ""
	if err := ValidateConfig(bad); err == nil {
		t.Fatalf("expected error for missing hash_key")
	}
}
