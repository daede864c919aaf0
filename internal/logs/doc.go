// Package logs reads the proxymill log file for the `logs` command: the last
// N lines on demand, then new lines as they are appended when following.
package logs
