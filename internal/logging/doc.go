// Package logging provides structured logging for dispatchd.
//
// It wraps logrus with a small Logger type so call sites get a
// WithField/WithFields/WithError API without depending on logrus
// directly, plus a global factory (GetLogger) so every component picks up
// the same level/format/output configuration once SetupLogging has run.
package logging
