// Package main runs one catalog prompt over stdio.
//
// The parent process writes host events to stdin and reads render frames
// from stdout, one JSON object per line. The last frame is VALUE or ERROR.
// Logs go to stderr.
//
// Usage:
//
//	kit -prompts ./prompts fruit
//	kit new "My Script"          # queued argument, resolves without input
//	kit new --input draft        # flags become kit flags
//
// Exit status is 0 when a value was chosen, 130 when the prompt was
// dismissed and 1 on failure.
package main
