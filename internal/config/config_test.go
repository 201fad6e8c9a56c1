package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyURL(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8080}}
	assert.Equal(t, "http://127.0.0.1:8080/api/start-call", cfg.ProxyURL())

	cfg.CallProxy.URL = "https://proxy.example.com/api/start-call/"
	assert.Equal(t, "https://proxy.example.com/api/start-call", cfg.ProxyURL())
}

func TestCallbackUnreachable(t *testing.T) {
	tests := []struct {
		name     string
		provider CallProviderConfig
		proxyURL string
		public   string
		want     bool
	}{
		{name: "provider off", want: false},
		{name: "in-process proxy without public url", provider: CallProviderConfig{URL: "https://vf", APIKey: "k"}, want: true},
		{name: "public url set", provider: CallProviderConfig{URL: "https://vf", APIKey: "k"}, public: "https://stock.example.com", want: false},
		{name: "external proxy", provider: CallProviderConfig{URL: "https://vf", APIKey: "k"}, proxyURL: "https://proxy.example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:       ServerConfig{Port: 8080, PublicBaseURL: tt.public},
				CallProvider: tt.provider,
				CallProxy:    CallProxyConfig{URL: tt.proxyURL},
			}
			assert.Equal(t, tt.want, cfg.CallbackUnreachable())
		})
	}
}
