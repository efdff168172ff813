package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LLM provider (OpenAI-compatible chat completions)
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// ElevenLabs speech synthesis
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsBaseURL string

	// Clinic scheduling defaults
	DefaultTimezone        string
	DoctorName             string
	OfficeHoursStart       string
	OfficeHoursEnd         string
	AppointmentSlotMinutes int

	// Appointment store backend: file, redis or postgres
	StoreBackend  string
	DataFile      string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	DatabaseURL   string

	// HTTP boundary
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "Rachel"),
		ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", ""),

		DefaultTimezone:        getEnv("DEFAULT_TIMEZONE", "Europe/Berlin"),
		DoctorName:             getEnv("DOCTOR_NAME", "Doctor"),
		OfficeHoursStart:       getEnv("OFFICE_HOURS_START", "09:00"),
		OfficeHoursEnd:         getEnv("OFFICE_HOURS_END", "17:00"),
		AppointmentSlotMinutes: getEnvAsInt("APPOINTMENT_SLOT_MINUTES", 30),

		StoreBackend:  strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "file"))),
		DataFile:      getEnv("DATA_FILE", "data/appointments.json"),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable or returns a default value
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
