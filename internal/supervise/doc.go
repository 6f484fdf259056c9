// Package supervise runs external tools under a watchdog: stderr captured
// to a file, liveness polled, and a termination escalation (SIGTERM, grace
// period, SIGKILL) when the deadline passes.
package supervise
