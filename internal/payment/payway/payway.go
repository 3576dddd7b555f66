package payway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("payway config invalid")
	ErrRequestFailed    = errors.New("payway request failed")
	ErrResponseInvalid  = errors.New("payway response invalid")
	ErrSignatureInvalid = errors.New("payway signature invalid")
)

// PayWay 固定参数
const (
	PaymentOption  = "abapay_khqr"
	PurchaseType   = "purchase"
	QRTemplate     = "template3_color"
	DefaultLife    = 6 // 二维码有效期（分钟）
	StatusSuccess  = "00"
	generateQRPath = "/api/payment-gateway/v1/payments/generate-qr"
	checkTranPath  = "/api/payment-gateway/v1/payments/check-transaction-2"
)

// Config ABA PayWay 配置
type Config struct {
	MerchantID    string `json:"merchant_id"`    // 商户号
	HashKey       string `json:"hash_key"`       // HMAC 密钥
	BaseURL       string `json:"base_url"`       // 网关地址
	CallbackURL   string `json:"callback_url"`   // 异步回调地址
	AndroidScheme string `json:"android_scheme"` // 支付完成后的 Android 深链
	IOSScheme     string `json:"ios_scheme"`     // 支付完成后的 iOS 深链
	Currency      string `json:"currency"`       // 币种，默认 USD
	Lifetime      int    `json:"lifetime"`       // 二维码有效期（分钟）
	TimeoutSec    int    `json:"timeout_sec"`    // HTTP 超时（秒）
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.Normalize()
	return &cfg, nil
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return fmt.Errorf("%w: merchant_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashKey) == "" {
		return fmt.Errorf("%w: hash_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.CallbackURL) == "" {
		return fmt.Errorf("%w: callback_url is required", ErrConfigInvalid)
	}
	return nil
}

// Normalize 规范化配置并填充默认值
func (c *Config) Normalize() {
	c.MerchantID = strings.TrimSpace(c.MerchantID)
	c.HashKey = strings.TrimSpace(c.HashKey)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.CallbackURL = strings.TrimSpace(c.CallbackURL)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLife
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 15
	}
}

// QRInput 生成二维码输入
type QRInput struct {
	Amount    string // "12.34" 形式
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Items     []map[string]interface{} // 可选商品明细
}

// QRResult 生成二维码结果
type QRResult struct {
	TranID   string                 // 网关交易号
	QRString string                 // KHQR 内容
	QRImage  string                 // 二维码图片（base64）
	Deeplink string                 // ABA App 深链
	Raw      map[string]interface{} // 原始响应
}

// CheckResult 交易查询结果
type CheckResult struct {
	Status string                 // 网关状态码，"00" 表示已支付
	Raw    map[string]interface{} // 原始响应
}

// CallbackData 回调数据
type CallbackData struct {
	TranID        string `json:"tran_id"`
	APV           string `json:"apv"`
	Status        string `json:"status"`
	MerchantRefNo string `json:"merchant_ref_no"`
}

// NewTranID 生成交易号：UTC 时间戳 + 3 位随机数
func NewTranID(now time.Time) string {
	return now.UTC().Format("20060102150405") + fmt.Sprintf("%03d", rand.Intn(900)+100)
}

// GenerateQR 请求生成 KHQR 二维码
func GenerateQR(ctx context.Context, cfg *Config, tranID string, input QRInput) (*QRResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(tranID) == "" || strings.TrimSpace(input.Amount) == "" {
		return nil, fmt.Errorf("%w: tran_id and amount are required", ErrConfigInvalid)
	}

	reqTime := time.Now().UTC().Format("20060102150405")

	items := ""
	if len(input.Items) > 0 {
		data, err := json.Marshal(input.Items)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal items failed", ErrConfigInvalid)
		}
		items = base64.StdEncoding.EncodeToString(data)
	}

	callbackURL := base64.StdEncoding.EncodeToString([]byte(cfg.CallbackURL))

	deeplink, err := json.Marshal(map[string]string{
		"android_scheme": cfg.AndroidScheme,
		"ios_scheme":     cfg.IOSScheme,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal deeplink failed", ErrConfigInvalid)
	}
	returnDeeplink := base64.StdEncoding.EncodeToString(deeplink)

	lifetime := fmt.Sprintf("%d", cfg.Lifetime)
	hash := SignQR(cfg, reqTime, tranID, input.Amount, items,
		input.FirstName, input.LastName, input.Email, input.Phone,
		callbackURL, returnDeeplink, lifetime)

	payload := map[string]interface{}{
		"req_time":          reqTime,
		"merchant_id":       cfg.MerchantID,
		"tran_id":           tranID,
		"first_name":        emptyToNil(input.FirstName),
		"last_name":         emptyToNil(input.LastName),
		"email":             emptyToNil(input.Email),
		"phone":             emptyToNil(input.Phone),
		"amount":            input.Amount,
		"currency":          cfg.Currency,
		"purchase_type":     PurchaseType,
		"payment_option":    PaymentOption,
		"items":             emptyToNil(items),
		"callback_url":      callbackURL,
		"return_deeplink":   returnDeeplink,
		"lifetime":          cfg.Lifetime,
		"qr_image_template": QRTemplate,
		"hash":              hash,
	}

	respBytes, err := postJSON(ctx, cfg, cfg.BaseURL+generateQRPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBytes, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return &QRResult{
		TranID:   tranID,
		QRString: readString(raw, "qrString"),
		QRImage:  readString(raw, "qrImage"),
		Deeplink: readString(raw, "abapay_deeplink"),
		Raw:      raw,
	}, nil
}

// SignQR 生成下单签名：字段按网关约定顺序拼接后做 HMAC-SHA512，base64 输出
func SignQR(cfg *Config, reqTime, tranID, amount, items, firstName, lastName, email, phone, callbackURL, returnDeeplink, lifetime string) string {
	payload := reqTime +
		cfg.MerchantID +
		tranID +
		amount +
		items +
		firstName +
		lastName +
		email +
		phone +
		PurchaseType +
		PaymentOption +
		callbackURL +
		returnDeeplink +
		cfg.Currency +
		lifetime +
		QRTemplate
	return sign(cfg.HashKey, payload)
}

// SignCheck 生成查询签名
func SignCheck(cfg *Config, reqTime, tranID string) string {
	return sign(cfg.HashKey, reqTime+cfg.MerchantID+tranID)
}

// CheckTransaction 调用交易查询接口，回调后必须以此为准
func CheckTransaction(ctx context.Context, cfg *Config, tranID string) (*CheckResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(tranID) == "" {
		return nil, fmt.Errorf("%w: tran_id is required", ErrConfigInvalid)
	}

	reqTime := time.Now().UTC().Format("20060102150405")
	payload := map[string]interface{}{
		"req_time":    reqTime,
		"merchant_id": cfg.MerchantID,
		"tran_id":     tranID,
		"hash":        SignCheck(cfg, reqTime, tranID),
	}

	respBytes, err := postJSON(ctx, cfg, cfg.BaseURL+checkTranPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBytes, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return &CheckResult{
		Status: readString(raw, "status"),
		Raw:    raw,
	}, nil
}

// ParseCallback 解析回调数据
func ParseCallback(body []byte) (*CallbackData, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty callback body", ErrResponseInvalid)
	}
	// 字段值可能是数字或字符串，先解到通用 map 再取值
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	data := &CallbackData{
		TranID:        readString(raw, "tran_id"),
		APV:           readString(raw, "apv"),
		Status:        readString(raw, "status"),
		MerchantRefNo: readString(raw, "merchant_ref_no"),
	}
	if data.TranID == "" {
		return nil, fmt.Errorf("%w: tran_id missing", ErrResponseInvalid)
	}
	return data, nil
}

func sign(key, payload string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func emptyToNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func readString(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func postJSON(ctx context.Context, cfg *Config, url string, payload map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBytes))
	}
	return respBytes, nil
}
