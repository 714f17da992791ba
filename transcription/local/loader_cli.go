//go:build !whisper

package local

import "github.com/kbukum/scribe/process"

func defaultLoader(cfg Config) EngineLoader {
	return NewCLILoader(cfg.Binary, process.NewRunner(cfg.Timeout, 0, cfg.Logger))
}
