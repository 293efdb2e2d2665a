package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger. Debug mode uses the development
// config (console encoding, debug level); otherwise the production
// config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
