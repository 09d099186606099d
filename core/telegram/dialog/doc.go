// Package dialog provides a step-driven conversation engine for Telegram
// bots. Steps consume typed inputs and return replies, so flows can be
// exercised without a live transport.
package dialog
