package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	FirebaseProject            string `envconfig:"FIREBASE_PROJECT_ID" required:"true"`
	FirebaseApiKey             string `envconfig:"FIREBASE_API_KEY"`
	FirebaseServiceAccountJSON string `envconfig:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH" default:"./firebase-adminsdk.json"`

	// Empty bucket keeps photos inline on the grievance document.
	StorageBucket string `envconfig:"STORAGE_BUCKET"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-flash-latest"`

	PincodeAPIBaseURL string        `envconfig:"PINCODE_API_BASE_URL" default:"https://api.postalpincode.in"`
	PincodeTimeout    time.Duration `envconfig:"PINCODE_TIMEOUT" default:"5s"`

	AdminEmails []string `envconfig:"ADMIN_EMAILS" default:"admin@municipality.com"`

	TrendingInterval  time.Duration `envconfig:"TRENDING_INTERVAL" default:"60s"`
	TrendingThreshold int           `envconfig:"TRENDING_THRESHOLD" default:"3"`
	TrendingPriority  string        `envconfig:"TRENDING_PRIORITY"`

	SocialAutoPost  bool          `envconfig:"SOCIAL_AUTO_POST" default:"true"`
	AnalysisTimeout time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"45s"`
	MaxPhotoBytes   int           `envconfig:"MAX_PHOTO_BYTES" default:"700000"`

	SubmitRatePerHour   int `envconfig:"SUBMIT_RATE_PER_HOUR" default:"10"`
	InsightsRatePerHour int `envconfig:"INSIGHTS_RATE_PER_HOUR" default:"20"`
}

func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)
	if cfg.TrendingThreshold < 1 {
		cfg.TrendingThreshold = 1
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
