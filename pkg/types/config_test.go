package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name: "remote base url with scheme and host",
			config: Config{
				Backend: "sqlite",
				Remote:  RemoteConfig{BaseURL: "https://folio.example.com"},
			},
			wantErr: nil,
		},
		{
			name: "relative base url rejected",
			config: Config{
				Backend: "sqlite",
				Remote:  RemoteConfig{BaseURL: "/holding_api"},
			},
			wantErr: ErrBaseURLInvalid,
		},
		{
			name: "ftp base url rejected",
			config: Config{
				Backend: "sqlite",
				Remote:  RemoteConfig{BaseURL: "ftp://folio.example.com"},
			},
			wantErr: ErrBaseURLInvalid,
		},
		{
			name: "negative timeout rejected",
			config: Config{
				Backend: "sqlite",
				Remote:  RemoteConfig{Timeout: -time.Second},
			},
			wantErr: ErrTimeoutInvalid,
		},
		{
			name: "negative rate limit rejected",
			config: Config{
				Backend: "sqlite",
				Remote:  RemoteConfig{RateLimit: -1},
			},
			wantErr: ErrRateLimitInvalid,
		},
		{
			name:    "negative freshness rejected",
			config:  Config{Backend: "sqlite", Session: SessionConfig{Freshness: -time.Minute}},
			wantErr: ErrFreshnessInvalid,
		},
		{
			name:    "negative settle rejected",
			config:  Config{Backend: "sqlite", Edit: EditConfig{Settle: -time.Millisecond}},
			wantErr: ErrSettleInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigRemoteEnabled(t *testing.T) {
	if (Config{}).RemoteEnabled() {
		t.Fatal("empty base url should disable remote")
	}
	if !(Config{Remote: RemoteConfig{BaseURL: "http://localhost:8080"}}).RemoteEnabled() {
		t.Fatal("base url should enable remote")
	}
}
