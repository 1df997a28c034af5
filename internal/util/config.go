package util

import (
	"errors"

	"github.com/mxcd/go-config/config"
)

// ErrMissingAPIKey is returned when production mode starts without an upstream credential.
var ErrMissingAPIKey = errors.New("NASA_API_KEY must be set when DEV is false")

func InitConfig() error {
	err := config.LoadConfig([]config.Value{
		// version info
		config.String("DEPLOYMENT_IMAGE_TAG").NotEmpty().Default("development"),

		// logging config
		config.String("LOG_LEVEL").NotEmpty().Default("info"),

		// server config
		config.Bool("DEV").Default(false),
		config.Int("PORT").Default(5000),
		config.String("BASE_URL").NotEmpty().Default("http://localhost:5000"),

		// upstream APOD API; the key has no built-in fallback
		config.String("APOD_API_URL").NotEmpty().Default("https://api.nasa.gov/planetary/apod"),
		config.String("NASA_API_KEY").Default("").Sensitive(),

		// storage directory for saved media
		config.String("DOWNLOADS_DIR").NotEmpty().Default("downloads"),
	})
	if err != nil {
		return err
	}
	return ValidateAPIKey(config.Get().String("NASA_API_KEY"), config.Get().Bool("DEV"))
}

// ValidateAPIKey fails when no key is configured outside of dev mode.
func ValidateAPIKey(key string, devMode bool) error {
	if key == "" && !devMode {
		return ErrMissingAPIKey
	}
	return nil
}
