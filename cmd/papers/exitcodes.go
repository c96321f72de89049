package main

// Exit codes shared by all subcommands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, I/O failure)
	ExitConfigError = 2 // Configuration error (missing credentials, bad config file)
	ExitDataError   = 3 // Data error (malformed input file)
)
