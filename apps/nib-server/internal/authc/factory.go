package authc

import (
	"fmt"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/config"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/milenage"
)

// New は設定に応じたバックエンドを生成する。
func New(cfg *config.Config, d Dispatcher) (Authenticator, error) {
	switch cfg.AuthBackend {
	case config.AuthBackendEngine:
		return NewEngineBackend(d), nil
	case config.AuthBackendLocal:
		return NewLocalBackend(milenage.NewCalculator(0)), nil
	case config.AuthBackendHTTP:
		return NewHTTPBackend(cfg.AuthAPIURL), nil
	}
	return nil, fmt.Errorf("unknown auth backend: %q", cfg.AuthBackend)
}
