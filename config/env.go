package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// bindEnv sets every environment variable on v under each nested key variant.
func bindEnv(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment variable name onto the viper keys it
// may address. Every split point between a dotted prefix and an underscored
// suffix is produced, so HTTP_MAX_REDIRECTS yields http_max_redirects,
// http.max.redirects and http.max_redirects.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]bool, len(parts)+1)
	variants := make([]string, 0, len(parts)+1)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
