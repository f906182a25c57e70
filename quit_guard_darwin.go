//go:build darwin

package main

import (
	"go.uber.org/zap"
	"golang.design/x/hotkey"
)

// quitGuard swallows Cmd+Q while the alarm is showing
type quitGuard struct {
	hk *hotkey.Hotkey
}

func newQuitGuard(logger *zap.Logger) *quitGuard {
	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCmd}, hotkey.KeyQ)
	if err := hk.Register(); err != nil {
		logger.Warn("Cannot block Cmd+Q during alarm", zap.Error(err))
		return &quitGuard{}
	}
	go func() {
		for range hk.Keydown() {
			logger.Info("Cmd+Q blocked during alarm")
		}
	}()
	return &quitGuard{hk: hk}
}

func (g *quitGuard) release() {
	if g == nil || g.hk == nil {
		return
	}
	if err := g.hk.Unregister(); err != nil {
		return
	}
	g.hk = nil
}
