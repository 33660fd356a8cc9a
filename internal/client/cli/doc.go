// Package cli implements the interactive TuneKeeper client: a small REPL
// with session commands (register, login, whoami, refresh, logout) and
// library commands (songs, add, show, play, fav, rate, delete). Passwords
// are read without echo and never printed or stored.
package cli
