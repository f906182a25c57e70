//go:build !darwin

package main

import "go.uber.org/zap"

// quitGuard is a no-op where the window manager owns quit shortcuts
type quitGuard struct{}

func newQuitGuard(*zap.Logger) *quitGuard { return &quitGuard{} }

func (g *quitGuard) release() {}
