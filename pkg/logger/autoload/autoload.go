// Package autoload configures the global logger from LOG_* variables on import.
package autoload

import (
	configx "github.com/tanpawarit/hcp-interaction-logger/pkg/config"
	logx "github.com/tanpawarit/hcp-interaction-logger/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
