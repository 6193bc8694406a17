// Package config loads runtime configuration for the school admin client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. SCHOOL_API_URL from the environment or a .env file.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   path of the local state database
//	-t int      request timeout (seconds)
//	-v          verbose (debug) logging
//
// # JSON schema
//
// Durations accept strings like "5s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://127.0.0.1:5000",
//	  "state_db": "schooladmin.db",
//	  "timeout": "10s",
//	  "log_level": "info"
//	}
package config
