// Package autoload initializes the process logger from LOG_* environment
// variables on import.
package autoload

import (
	configx "github.com/finsightai/finsight/pkg/config"
	logx "github.com/finsightai/finsight/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
