// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Every component of the application declares its own Config struct with
// `env` tags and loads it through config.Load or config.MustLoad at startup.
// Values are parsed once per type and cached for the process lifetime.
package config
