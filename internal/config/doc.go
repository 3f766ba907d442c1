// Package config handles configuration loading and validation from an
// optional YAML file and DECKGEN_-prefixed environment variables, with the
// environment taking precedence. It provides type-safe access to the
// settings the server, stage, task runner, and provider clients need while
// keeping configuration details separate from business logic.
package config
