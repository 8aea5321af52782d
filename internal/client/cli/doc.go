// Package cli provides the drive mirror command-line client.
//
// It wires configuration, the local index store, the secret store and the
// drive API into a cobra command tree:
//
//	mirror sync            sync every configured drive once
//	mirror status          index counts and the saved cursor per drive
//	mirror cursor reset    forget a drive's cursor to force a full resync
//	mirror login           save the bearer token and shared secret
//	mirror watch           sync periodically and print events until interrupted
//
// Configuration flags (see package config) go after the subcommand; cobra
// ignores them.
package cli
