/*
main.go - Offline command line for the production store

PURPOSE:
  Reads the SQLite store the server writes and prints reports, stock and
  accounts views, or writes the same exports the web screens offer.

USAGE:
  printctl [-db tracker.db] <command> [flags]

  printctl report -start 2025-03-01 -end 2025-03-31
  printctl stock -low
  printctl jobs -filter unbilled
  printctl export -screen daily -start 2025-03-05 -o day.pdf

ENVIRONMENT:
  DB_DSN (or a .env file) sets the default -db path.
*/
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander)

	dbPath = flag.String("db", envOr("DB_DSN", "tracker.db"), "Path to the SQLite store")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
