// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

package graph

// Logger is the minimal logging capability GraphManager needs: callers can
// wire in *logrus.Logger, a test recorder, or anything else without the
// engine depending on a concrete logging library.
type Logger interface {
	Noticef(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// nopLogger discards everything. It is the default when no Logger is
// supplied to NewGraphManager.
type nopLogger struct{}

func (nopLogger) Noticef(format string, args ...interface{}) {}
func (nopLogger) Errorf(format string, args ...interface{})  {}
