package stripe

import (
	"fmt"
	"testing"
	"time"
)

func webhookConfig() *Config {
	cfg := &Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
	}
	cfg.Normalize()
	return cfg
}

func signedHeaders(secret string, at time.Time, body []byte) map[string]string {
	ts := at.Unix()
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(secret, ts, body)),
	}
}

func TestVerifyAndParseWebhookPaymentIntentSucceeded(t *testing.T) {
	cfg := webhookConfig()
	now := time.Now()
	body := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"object": "payment_intent",
			"id": "pi_123",
			"status": "succeeded",
			"amount": 1234,
			"amount_received": 1234,
			"currency": "usd",
			"created": ` + fmt.Sprintf("%d", now.Unix()) + `,
			"metadata": {"payment_id": "7", "order_id": "42"}
		}}
	}`)

	result, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, now, body), body, now)
	if err != nil {
		t.Fatalf("verify webhook failed: %v", err)
	}
	if result.Status != "paid" {
		t.Fatalf("status = %q, want paid", result.Status)
	}
	if result.ProviderRef != "pi_123" {
		t.Fatalf("provider_ref = %q, want pi_123", result.ProviderRef)
	}
	if result.PaymentID != 7 || result.OrderID != 42 {
		t.Fatalf("metadata ids = %d/%d, want 7/42", result.PaymentID, result.OrderID)
	}
	if result.AmountCents != 1234 {
		t.Fatalf("amount = %d, want 1234", result.AmountCents)
	}
	if result.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", result.Currency)
	}
}

func TestVerifyAndParseWebhookBadSignature(t *testing.T) {
	cfg := webhookConfig()
	now := time.Now()
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123"}}}`)

	headers := map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=deadbeef", now.Unix()),
	}
	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); err == nil {
		t.Fatalf("expected signature error")
	}

	// 缺头
	if _, err := VerifyAndParseWebhook(cfg, map[string]string{}, body, now); err == nil {
		t.Fatalf("expected error for missing header")
	}

	// 签了另一份 body
	headers = signedHeaders(cfg.WebhookSecret, now, []byte(`{"tampered":true}`))
	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); err == nil {
		t.Fatalf("expected error for tampered body")
	}
}

func TestVerifyAndParseWebhookTimestampTolerance(t *testing.T) {
	cfg := webhookConfig()
	now := time.Now()
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123"}}}`)

	stale := now.Add(-time.Duration(cfg.WebhookToleranceSeconds+60) * time.Second)
	if _, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, stale, body), body, now); err == nil {
		t.Fatalf("expected error for stale timestamp")
	}
}

func TestMapEventTypeStatus(t *testing.T) {
	cases := map[string]string{
		"payment_intent.succeeded":       "paid",
		"checkout.session.completed":     "paid",
		"payment_intent.payment_failed":  "failed",
		"checkout.session.expired":       "failed",
		"payment_intent.processing":      "pending",
	}
	for eventType, want := range cases {
		got, ok := mapEventTypeStatus(eventType)
		if !ok || got != want {
			t.Fatalf("mapEventTypeStatus(%q) = %q/%v, want %q", eventType, got, ok, want)
		}
	}
	if _, ok := mapEventTypeStatus("customer.created"); ok {
		t.Fatalf("unexpected mapping for unrelated event")
	}
}

func TestMinorAmountConversion(t *testing.T) {
	if got := toMinorAmount(1234, "USD"); got != 1234 {
		t.Fatalf("toMinorAmount USD = %d, want 1234", got)
	}
	// JPY 无最小单位，1234 分 = 12.34 美元等值下取整为 12
	if got := toMinorAmount(1234, "JPY"); got != 12 {
		t.Fatalf("toMinorAmount JPY = %d, want 12", got)
	}
	if got := fromMinorAmount(12, "JPY"); got != 1200 {
		t.Fatalf("fromMinorAmount JPY = %d, want 1200", got)
	}
}
