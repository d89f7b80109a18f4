/*
sourcer is a console utility tokenizing files with token syntax defined in YAML.
Usage is

	sourcer tokenize --syntax <yaml> [--format table|json] [--stats] <file>
	sourcer version

--log-level sets logging level (error, warn, info, debug, trace), trace level logs every rule call.

Flags may also be set with environment variables: SOURCER_LOG_LEVEL for global flags,
SOURCER_TOKENIZE_SYNTAX, SOURCER_TOKENIZE_FORMAT and so on for command flags.
*/
package main

import (
	"os"
)

func main() {
	if e := newRootCommand().Execute(); e != nil {
		os.Exit(1)
	}
}
