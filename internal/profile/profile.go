package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the supportflow server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	// All providers (openai, deepseek, siliconflow, ollama, zai) use the same config
	LLMProvider string // Provider identifier: openai, deepseek, siliconflow, openrouter, ollama, zai
	LLMAPIKey   string // Unified LLM API key
	LLMBaseURL  string // Unified LLM base URL (optional, has default per provider)
	LLMModel    string // Model name: gpt-4o, deepseek-chat, glm-4.7, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Embedding configuration for knowledge-base search
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingAPIKey   string
	EmbeddingBaseURL  string

	// Weather lookup configuration
	WeatherAPIKey  string
	WeatherBaseURL string

	// Routing configuration
	RoutingStrategy          string // "ladder" or "classifier"
	ComplexityMinWords       int    // planning-mode escalation: minimum word count (default: 10)
	ResponderTimeoutSeconds  int    // per-responder call timeout (default: 60)
	MaxParallelResponders    int    // fan-out concurrency cap (default: 4)

	// Server configuration
	Mode    string // demo, dev, prod
	Addr    string
	Port    int
	Data    string
	Driver  string // sqlite or postgres
	DSN     string
	Version string
}

// Provider default configurations for LLM.
// Used when SUPPORTFLOW_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
	"zai": {
		BaseURL: "https://open.bigmodel.cn/api/paas/v4",
		Model:   "glm-4.7",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// IsWeatherEnabled returns true if the weather lookup key is configured.
func (p *Profile) IsWeatherEnabled() bool {
	return p.WeatherAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	// Unified LLM configuration
	p.LLMProvider = getEnvOrDefault("SUPPORTFLOW_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("SUPPORTFLOW_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("SUPPORTFLOW_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("SUPPORTFLOW_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("SUPPORTFLOW_LLM_TIMEOUT_SECONDS", 120)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: openai", "provider", p.LLMProvider)
			p.LLMProvider = "openai"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	// Embedding configuration (defaults to the LLM credentials when unset)
	p.EmbeddingProvider = getEnvOrDefault("SUPPORTFLOW_EMBEDDING_PROVIDER", p.LLMProvider)
	p.EmbeddingModel = getEnvOrDefault("SUPPORTFLOW_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingAPIKey = getEnvOrDefault("SUPPORTFLOW_EMBEDDING_API_KEY", p.LLMAPIKey)
	p.EmbeddingBaseURL = getEnvOrDefault("SUPPORTFLOW_EMBEDDING_BASE_URL", p.LLMBaseURL)

	// Weather lookup
	p.WeatherAPIKey = getEnvOrDefault("SUPPORTFLOW_WEATHER_API_KEY", "")
	p.WeatherBaseURL = getEnvOrDefault("SUPPORTFLOW_WEATHER_BASE_URL", "https://api.weatherapi.com/v1")

	// Routing
	p.RoutingStrategy = getEnvOrDefault("SUPPORTFLOW_ROUTING_STRATEGY", "classifier")
	p.ComplexityMinWords = getEnvOrDefaultInt("SUPPORTFLOW_ROUTING_COMPLEXITY_MIN_WORDS", 10)
	p.ResponderTimeoutSeconds = getEnvOrDefaultInt("SUPPORTFLOW_RESPONDER_TIMEOUT_SECONDS", 60)
	p.MaxParallelResponders = getEnvOrDefaultInt("SUPPORTFLOW_MAX_PARALLEL_RESPONDERS", 4)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate checks the profile and applies derived defaults.
// Missing required credentials are fatal here, at construction time.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if !p.IsAIEnabled() {
		return errors.New("SUPPORTFLOW_LLM_API_KEY is required: the router cannot operate without a completion service")
	}

	if p.RoutingStrategy != "ladder" && p.RoutingStrategy != "classifier" {
		slog.Warn("unknown routing strategy, using classifier", "strategy", p.RoutingStrategy)
		p.RoutingStrategy = "classifier"
	}
	if p.ComplexityMinWords <= 0 {
		p.ComplexityMinWords = 10
	}
	if p.ResponderTimeoutSeconds <= 0 {
		p.ResponderTimeoutSeconds = 60
	}
	if p.MaxParallelResponders <= 0 {
		p.MaxParallelResponders = 4
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		dbFile := fmt.Sprintf("supportflow_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
