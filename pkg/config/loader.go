package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	loaded = make(map[string]any)

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into the provided configuration struct
// based on `env` field tags. The default .env file is loaded once per
// process before the first parse; a missing .env file is not an error.
// Each config type is parsed once and cached, so repeated calls across
// packages are cheap and see identical values.
//
// Example:
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	mu.RLock()
	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
		mu.RUnlock()
		return nil
	}
	mu.RUnlock()

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	// A concurrent loader may have won the race; keep the first result so
	// all callers observe one value.
	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
	} else {
		loaded[key] = *v
	}
	mu.Unlock()

	return nil
}

// MustLoad works like Load but panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// LoadEnv loads one or more env files before any config parsing. Earlier
// files take precedence over later ones, and real environment variables win
// over all files.
func LoadEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// ResetCache clears cached configs. Intended for tests that mutate the
// environment between loads.
func ResetCache() {
	mu.Lock()
	loaded = make(map[string]any)
	mu.Unlock()
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
