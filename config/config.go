package config

import (
	"log"

	"github.com/caarlos0/env/v11"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                int     `env:"PORT" envDefault:"8080"`
	Dsn                 string  `env:"DSN" envDefault:"postgres://localhost:5432/reportit"`
	JwtSecret           string  `env:"JWT_SECRET"`
	JwtExpires          string  `env:"JWT_EXPIRES"`
	RefreshSecret       string  `env:"REFRESH_SECRET"`
	RefreshExpiry       string  `env:"REFRESH_EXPIRY"`
	RedisAddr           string  `env:"REDIS_ADDR"`
	RedisPassword       string  `env:"REDIS_PASS"`
	FCMProjectID        string  `env:"FCM_PROJECT_ID"`
	FCMCredentialsFile  string  `env:"FCM_CREDENTIALS_FILE"`
	NominatimBaseURL    string  `env:"NOMINATIM_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	CloudinaryCloudName string  `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string  `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string  `env:"CLOUDINARY_API_SECRET"`
	DuplicateRadiusM    float64 `env:"DUPLICATE_RADIUS_M" envDefault:"100"`
	NearbyAlertRadiusM  float64 `env:"NEARBY_ALERT_RADIUS_M" envDefault:"500"`
	NearbyCacheTTL      int     `env:"NEARBY_CACHE_TTL_SECONDS" envDefault:"300"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Printf("[Env]: unable to load .env file %v", loadErr)
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Printf("[Env]: failed to parse environment variables: %v", parseErr)
	}

	return &cfg
}
