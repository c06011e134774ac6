// Package logging builds the node's structured logger on log/slog.
//
// On a headless board the log is the only console, so output can go to a
// serial device as well as stdout or stderr:
//
//	logging:
//	  level: "info"        # debug, info, warn, error
//	  format: "text"       # json, text
//	  output: "/dev/ttyS0" # stdout, stderr, or a path
//
// Never log network passphrases or broker passwords.
package logging
