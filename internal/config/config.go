package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Auth   AuthConfig
	Ai     AIConfig
	Search SearchConfig
	Store  StoreConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type AuthConfig struct {
	Secret       string // plaintext login secret (dev); SecretHash wins when set
	SecretHash   string // bcrypt hash of the login secret
	JwtSecret    string
	CookieName   string
	SessionTTLs  int // seconds
	BindOriginIP bool
	MaxFailures  int
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKey         string
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
	JinaAPIKey        string
	ImageModel        string
	ContextBudget     int // serialized-bytes budget for the active window
}

type SearchConfig struct {
	SearxURL   string
	MaxResults int
}

type StoreConfig struct {
	HistoryFilePath string
	VectorstoreDir  string
	UploadDir       string
	DatabaseDSN     string // when set, history moves from the JSON file to the database
	IndexTopicName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			Secret:       getEnv("AUTH_SECRET", ""),
			SecretHash:   getEnv("AUTH_SECRET_HASH", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "minima_session"),
			SessionTTLs:  getEnvAsInt("SESSION_TTL_SECONDS", 3600),
			BindOriginIP: getEnvAsBool("AUTH_BIND_IP", true),
			MaxFailures:  getEnvAsInt("AUTH_MAX_FAILURES", 5),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "chatgpt-4o-latest"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			ImageModel:        getEnv("IMAGE_MODEL", "dall-e-3"),
			ContextBudget:     getEnvAsInt("LIMIT_CONTEXT_WINDOW", 50000),
		},
		Search: SearchConfig{
			SearxURL:   getEnv("SEARX_URL", "http://localhost:8888"),
			MaxResults: getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 3),
		},
		Store: StoreConfig{
			HistoryFilePath: getEnv("HISTORY_FILE_PATH", "chatHistory.json"),
			VectorstoreDir:  getEnv("VECTORSTORE_DIR", "data/vectorstore"),
			UploadDir:       getEnv("UPLOAD_DIR", "data/uploads"),
			DatabaseDSN:     getEnv("DB_CONNECTION_STRING", ""),
			IndexTopicName:  getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
