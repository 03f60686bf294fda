package notification

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yanryp/servicedesk-sub002/pkg/config"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"go.uber.org/zap"
)

// Event 推送给下游通知/SLA服务的事件信封
type Event struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Manager 事件通知管理器
// 异步推送，失败只记日志不影响主流程
type Manager struct {
	enabled    bool
	webhookURL string
	secret     string
	client     *http.Client
}

// NewManager 根据配置创建通知管理器，未启用时Publish为空操作
func NewManager(cfg *config.NotifyConfig) *Manager {
	return &Manager{
		enabled:    cfg.Enabled && cfg.WebhookURL != "",
		webhookURL: cfg.WebhookURL,
		secret:     cfg.Secret,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Publish 异步推送事件
func (m *Manager) Publish(event string, payload interface{}) {
	if !m.enabled {
		return
	}
	go m.send(event, payload)
}

func (m *Manager) send(event string, payload interface{}) {
	now := time.Now().Unix()
	body, err := json.Marshal(Event{
		Event:     event,
		Timestamp: now,
		Payload:   payload,
	})
	if err != nil {
		logger.Error("事件序列化失败", zap.String("event", event), zap.Error(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, m.webhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Error("构建通知请求失败", zap.String("event", event), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Notify-Timestamp", strconv.FormatInt(now, 10))
	if m.secret != "" {
		req.Header.Set("X-Notify-Signature", Sign(m.secret, now, body))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		logger.Warn("事件推送失败", zap.String("event", event), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("事件推送被下游拒绝",
			zap.String("event", event),
			zap.Int("status", resp.StatusCode))
		return
	}
	logger.Debug("事件推送成功", zap.String("event", event))
}

// Sign 计算事件签名
// HMAC-SHA256(secret, "<timestamp>\n<body>") 后base64编码，下游按同样算法验签
func Sign(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d\n", timestamp)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
