// Package notify carries brief user-facing notifications ("toasts") from the
// stores to the UI. Delivery is non-blocking: Buffer drops the oldest pending
// entry instead of waiting for a slow reader.
package notify
