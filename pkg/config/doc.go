// Package config loads application configuration from environment
// variables into tagged structs.
//
// It wraps `github.com/joho/godotenv` for .env files and
// `github.com/caarlos0/env/v11` for struct parsing. Each configuration type
// is parsed once per prefix and cached for the lifetime of the process;
// WithoutCache and ResetCache bypass or clear the cache, which is handy in
// tests.
//
// # Usage
//
//	type HTTPConfig struct {
//		Addr string `env:"ADDR" envDefault:":8080"`
//	}
//
//	var cfg HTTPConfig
//	config.MustLoad(&cfg, config.WithPrefix("SCANKIT_HTTP_"))
//
// Additional .env files can be loaded explicitly before the first Load:
//
//	if err := config.LoadEnv(".env.local"); err != nil {
//		return err
//	}
//
// # Error Handling
//
// Parsing failures wrap ErrParsingConfig and keep the underlying error from
// env, so errors.As works with its typed errors.
package config
