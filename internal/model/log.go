package model

// Logf receives diagnostics for ignored, malformed, or overwritten data.
// Consuming constructors replace a nil Logf with a discard sink.
type Logf func(format string, args ...interface{})
