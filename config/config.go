package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	BackendScripted  = "scripted"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

type Config struct {
	Port        string
	DatabaseURL string

	LLMBackend      string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	// PromptDir overrides the embedded bias dictionaries when set.
	PromptDir string

	Simulation SimulationConfig
}

type SimulationConfig struct {
	MaxTurns             int
	MaxInferences        int
	VolunteerProbability float64
	Seed                 int64
	WordSample           int
	TopKDiagnosis        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file loaded: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DB_URL", ""),
		LLMBackend:      getEnv("LLM_BACKEND", BackendScripted),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		PromptDir:       getEnv("PROMPT_DIR", ""),
		Simulation: SimulationConfig{
			MaxTurns:             getEnvInt("SIM_MAX_TURNS", 10),
			MaxInferences:        getEnvInt("SIM_MAX_INFERENCES", 15),
			VolunteerProbability: getEnvFloat("SIM_VOLUNTEER_PROB", 0.5),
			Seed:                 getEnvInt64("SIM_SEED", 0),
			WordSample:           getEnvInt("SIM_WORD_SAMPLE", 3),
			TopKDiagnosis:        getEnvInt("SIM_TOP_K_DIAGNOSIS", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("[WARN] Ignoring invalid integer for %s: %q", key, value)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("[WARN] Ignoring invalid integer for %s: %q", key, value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("[WARN] Ignoring invalid number for %s: %q", key, value)
	}
	return defaultValue
}
