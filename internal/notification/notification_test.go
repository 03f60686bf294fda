package notification

import (
	"testing"

	"github.com/yanryp/servicedesk-sub002/pkg/config"
)

func TestSignDeterministic(t *testing.T) {
	body := []byte(`{"event":"ticket.created","payload":{"id":1}}`)

	sig1 := Sign("secret-key", 1756444800, body)
	sig2 := Sign("secret-key", 1756444800, body)
	if sig1 != sig2 {
		t.Errorf("相同输入应产生相同签名: %q != %q", sig1, sig2)
	}
	if sig1 == "" {
		t.Error("签名不应为空")
	}

	if Sign("other-key", 1756444800, body) == sig1 {
		t.Error("不同密钥应产生不同签名")
	}
	if Sign("secret-key", 1756444801, body) == sig1 {
		t.Error("不同时间戳应产生不同签名")
	}
	if Sign("secret-key", 1756444800, []byte(`{}`)) == sig1 {
		t.Error("不同payload应产生不同签名")
	}
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(&config.NotifyConfig{Enabled: false, Timeout: 5})
	// 未启用时Publish为空操作，不应panic
	m.Publish("ticket.created", map[string]int{"id": 1})

	m = NewManager(&config.NotifyConfig{Enabled: true, WebhookURL: "", Timeout: 5})
	if m.enabled {
		t.Error("缺少webhook地址时不应启用通知")
	}
}
