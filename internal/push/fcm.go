package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid = errors.New("push config invalid")
	ErrSendFailed    = errors.New("push send failed")
)

// Config FCM 推送配置
type Config struct {
	Endpoint   string
	ServerKey  string
	TimeoutSec int
}

// Message 推送消息
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result 批量发送结果
type Result struct {
	Success       int
	Failure       int
	InvalidTokens []string // 已失效、应从库中清理的令牌
}

// Sender FCM 推送发送器
type Sender struct {
	cfg    Config
	client *http.Client
}

// NewSender 创建发送器
func NewSender(cfg Config) (*Sender, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.ServerKey = strings.TrimSpace(cfg.ServerKey)
	if cfg.Endpoint == "" || cfg.ServerKey == "" {
		return nil, fmt.Errorf("%w: endpoint and server_key are required", ErrConfigInvalid)
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 10
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}, nil
}

// SendToTokens 向多个设备令牌发送同一条通知
func (s *Sender) SendToTokens(ctx context.Context, tokens []string, message Message) (*Result, error) {
	if len(tokens) == 0 {
		return &Result{}, nil
	}

	payload := map[string]interface{}{
		"registration_ids": tokens,
		"notification": map[string]string{
			"title": message.Title,
			"body":  message.Body,
		},
	}
	if len(message.Data) > 0 {
		payload["data"] = message.Data
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d: %s", ErrSendFailed, resp.StatusCode, string(respBytes))
	}

	return parseResult(tokens, respBytes), nil
}

func parseResult(tokens []string, respBytes []byte) *Result {
	var parsed struct {
		Success int `json:"success"`
		Failure int `json:"failure"`
		Results []struct {
			Error string `json:"error"`
		} `json:"results"`
	}
	result := &Result{}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		// 响应结构变化时按全部成功处理，避免误删令牌
		result.Success = len(tokens)
		return result
	}
	result.Success = parsed.Success
	result.Failure = parsed.Failure
	for i, r := range parsed.Results {
		if i >= len(tokens) {
			break
		}
		switch r.Error {
		case "NotRegistered", "InvalidRegistration":
			result.InvalidTokens = append(result.InvalidTokens, tokens[i])
		}
	}
	return result
}
