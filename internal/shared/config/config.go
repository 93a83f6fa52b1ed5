package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	LogLevel        string

	AWSRegion       string
	ObjectStoreType string
	LocalStoreDir   string
	SSEKMSKeyID     string

	ProjectName        string
	ProjectStage       string
	ProjectDescription string
	ProfileName        string
	SchemaDir          string
	Blueprints         []string

	DocumentBucket string
	InputPrefix    string
	InputSuffixes  []string
	OutputPrefix   string
	MaxPDFPages    int

	WaitForCompletion bool
	PollInterval      time.Duration
	PollTimeout       time.Duration
	PollMaxAttempts   int
	PollQueryRetries  int

	TrackingQueueURL string
	ResultFields     []string
	ResultsPrefix    string
	DatabaseURL      string
}

const (
	defaultProjectName  = "energy-well-reports-bda"
	defaultProfileName  = "us.data-automation-v1"
	defaultInputSuffix  = ".pdf,.docx,.doc,.txt,.png,.jpg,.jpeg"
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 4 * time.Minute
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is empty in production; extracted tables will not be persisted")
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "s3")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/objects"),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		ProjectName:        getEnv("BDA_PROJECT_NAME", defaultProjectName),
		ProjectStage:       NormalizeStage(getEnv("BDA_PROJECT_STAGE", "LIVE")),
		ProjectDescription: getEnv("BDA_PROJECT_DESCRIPTION", "BDA Project for Well Report Extraction"),
		ProfileName:        getEnv("BDA_PROFILE_NAME", defaultProfileName),
		SchemaDir:          getEnv("BDA_SCHEMA_DIR", "data/blueprints"),
		Blueprints:         splitAndTrim(getEnv("BDA_BLUEPRINTS", "")),

		DocumentBucket: getEnv("BUCKET_NAME", ""),
		InputPrefix:    getEnv("INPUT_PREFIX", "reports/"),
		InputSuffixes:  splitAndTrim(strings.ToLower(getEnv("INPUT_SUFFIXES", defaultInputSuffix))),
		OutputPrefix:   getEnv("OUTPUT_PREFIX", "output"),
		MaxPDFPages:    getEnvInt("MAX_PDF_PAGES", 3000),

		WaitForCompletion: getEnvBool("BDA_WAIT_FOR_COMPLETION", false),
		PollInterval:      getEnvDuration("BDA_POLL_INTERVAL", defaultPollInterval),
		PollTimeout:       getEnvDuration("BDA_POLL_TIMEOUT", defaultPollTimeout),
		PollMaxAttempts:   getEnvInt("BDA_POLL_MAX_ATTEMPTS", 0),
		PollQueryRetries:  getEnvInt("BDA_POLL_QUERY_RETRIES", 3),

		TrackingQueueURL: getEnv("BDA_TRACKING_QUEUE_URL", ""),
		ResultFields:     splitAndTrim(getEnv("RESULT_FIELDS", "")),
		ResultsPrefix:    getEnv("RESULTS_PREFIX", "results"),
		DatabaseURL:      dbURL,
	}
}

// NormalizeStage maps user input onto the two stages the remote service accepts.
func NormalizeStage(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEVELOPMENT", "DEV":
		return "DEVELOPMENT"
	default:
		return "LIVE"
	}
}

// IsDevLike reports whether env is a local development environment.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config env %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config env %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local":
		return "local"
	default:
		return "s3"
	}
}
