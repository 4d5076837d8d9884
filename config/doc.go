// Package config loads fetchkit configuration from YAML files, .env files and
// environment variables.
//
// Viper reads the YAML file first, then every environment variable is bound
// under its nested key variants (HTTP_MAX_REDIRECTS sets http.max_redirects),
// and finally the result is unmarshalled into the caller's struct. When the
// target implements Defaulter or Validator, ApplyDefaults and Validate run
// after unmarshalling.
//
//	var cfg struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    HTTP httpclient.Config `mapstructure:"http"`
//	}
//	err := config.LoadConfig("fetchkit", &cfg)
package config
