package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	Host string
	Port int

	// Forward proxy for outbound upstream calls. Empty disables proxying.
	Proxy string

	// Upstream call timeout in milliseconds.
	TimeoutMs int

	Debug string

	UploadDir string
	PromptDir string

	// Fernet key the API-key codec runs on. Base64, 32 bytes decoded.
	EncryptionKey string

	GeminiBaseURL string
	DoubaoBaseURL string

	SkipNetCheck bool
}

var (
	cfg  *Config
	once sync.Once
)

// DefaultEncryptionKey keeps tokens issued by the previous deployment valid.
// This is a usability shim, not key custody: anyone holding the binary holds
// the key. Override with ENCRYPTION_KEY for anything resembling secrecy.
const DefaultEncryptionKey = "zDqHdcnVYuuo6RLCfm7LZ-RQHBPHtW3P9B9JII4GjwM="

func Load() *Config {
	once.Do(func() {
		loadDotEnv()

		cfg = &Config{
			Host:          getEnv("HOST", "0.0.0.0"),
			Port:          getEnvInt("PORT", 5000),
			Proxy:         getEnv("PROXY", "http://127.0.0.1:7890"),
			TimeoutMs:     getEnvInt("TIMEOUT", 60000),
			Debug:         getEnv("DEBUG", "off"),
			UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
			PromptDir:     getEnv("PROMPT_DIR", "./prompts"),
			EncryptionKey: getEnv("ENCRYPTION_KEY", DefaultEncryptionKey),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			DoubaoBaseURL: getEnv("DOUBAO_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			SkipNetCheck:  getEnvBool("SKIP_NET_CHECK", false),
		}

		for i, arg := range os.Args[1:] {
			if arg == "-debug" && i+1 < len(os.Args[1:]) {
				cfg.Debug = os.Args[i+2]
			}
		}
	})

	return cfg
}

func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
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
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
