// Package config loads typed configuration structs from environment
// variables using caarlos0/env tags, with optional .env file support via
// godotenv. Configs are cached per type so every package sees the same
// values regardless of load order.
package config
