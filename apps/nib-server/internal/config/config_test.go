package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if !cfg.UseStdio() {
		t.Error("UseStdio() = false, want true when ENGINE_ADDR is empty")
	}
	if cfg.EngineRole != "global" {
		t.Errorf("EngineRole = %q, want %q", cfg.EngineRole, "global")
	}
	if cfg.EngineDispatchTimeout != 10*time.Second {
		t.Errorf("EngineDispatchTimeout = %v, want %v", cfg.EngineDispatchTimeout, 10*time.Second)
	}
	if cfg.SubscriberSource != SourceValkey {
		t.Errorf("SubscriberSource = %q, want %q", cfg.SubscriberSource, SourceValkey)
	}
	if cfg.AuthBackend != AuthBackendEngine {
		t.Errorf("AuthBackend = %q, want %q", cfg.AuthBackend, AuthBackendEngine)
	}
	if cfg.AuthMaxRetries != 3 {
		t.Errorf("AuthMaxRetries = %d, want %d", cfg.AuthMaxRetries, 3)
	}
	if cfg.SMSCNumber != "12345" {
		t.Errorf("SMSCNumber = %q, want %q", cfg.SMSCNumber, "12345")
	}
	if cfg.ChatNumber != "35492" {
		t.Errorf("ChatNumber = %q, want %q", cfg.ChatNumber, "35492")
	}
	if cfg.ConferenceNumber != "333" {
		t.Errorf("ConferenceNumber = %q, want %q", cfg.ConferenceNumber, "333")
	}
	if cfg.SMSAttempts != 3 {
		t.Errorf("SMSAttempts = %d, want %d", cfg.SMSAttempts, 3)
	}
	if !cfg.GreetingEnabled {
		t.Error("GreetingEnabled = false, want true")
	}
	if !cfg.LogMaskIMSI {
		t.Error("LogMaskIMSI = false, want true")
	}
	if cfg.ValkeyAddr() != "localhost:6379" {
		t.Errorf("ValkeyAddr() = %q, want %q", cfg.ValkeyAddr(), "localhost:6379")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ENGINE_ADDR", "127.0.0.1:5039")
	t.Setenv("SUBSCRIBER_SOURCE", "file")
	t.Setenv("SUBSCRIBERS_FILE", "/etc/nib/subscribers.yaml")
	t.Setenv("AUTH_BACKEND", "http")
	t.Setenv("AUTH_API_URL", "http://auth-helper:8080")
	t.Setenv("AUTH_MAX_RETRIES", "5")
	t.Setenv("SMS_ATTEMPTS", "1")
	t.Setenv("LOG_MASK_IMSI", "false")
	t.Setenv("ENGINE_DISPATCH_TIMEOUT", "2500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.UseStdio() {
		t.Error("UseStdio() = true, want false")
	}
	if cfg.SubscribersFile != "/etc/nib/subscribers.yaml" {
		t.Errorf("SubscribersFile = %q", cfg.SubscribersFile)
	}
	if cfg.AuthAPIURL != "http://auth-helper:8080" {
		t.Errorf("AuthAPIURL = %q", cfg.AuthAPIURL)
	}
	if cfg.AuthMaxRetries != 5 {
		t.Errorf("AuthMaxRetries = %d, want 5", cfg.AuthMaxRetries)
	}
	if cfg.SMSAttempts != 1 {
		t.Errorf("SMSAttempts = %d, want 1", cfg.SMSAttempts)
	}
	if cfg.LogMaskIMSI {
		t.Error("LogMaskIMSI = true, want false")
	}
	if cfg.EngineDispatchTimeout != 2500*time.Millisecond {
		t.Errorf("EngineDispatchTimeout = %v, want 2.5s", cfg.EngineDispatchTimeout)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"不明なSUBSCRIBER_SOURCE", map[string]string{"SUBSCRIBER_SOURCE": "csv"}},
		{"fileでパス空", map[string]string{"SUBSCRIBER_SOURCE": "file", "SUBSCRIBERS_FILE": " "}},
		{"不明なAUTH_BACKEND", map[string]string{"AUTH_BACKEND": "hsm"}},
		{"httpでURL不正", map[string]string{"AUTH_BACKEND": "http", "AUTH_API_URL": "auth-helper:8080"}},
		{"負のAUTH_MAX_RETRIES", map[string]string{"AUTH_MAX_RETRIES": "-1"}},
		{"負のSMS_ATTEMPTS", map[string]string{"SMS_ATTEMPTS": "-2"}},
		{"応答待ち上限が0", map[string]string{"ENGINE_DISPATCH_TIMEOUT": "0s"}},
		{"数字以外のSMSC番号", map[string]string{"SMSC_NUMBER": "smsc"}},
		{"SMSC番号が空", map[string]string{"SMSC_NUMBER": ""}},
		{"数字以外の会議番号", map[string]string{"CONFERENCE_NUMBER": "+333"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}
