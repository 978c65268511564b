package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "HELPDESK_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	httpAddrEnv       = "HTTP_ADDR"
	jwtSecretEnv      = "JWT_SECRET"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	llmProviderEnv    = "LLM_PROVIDER"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"

	// DriverPostgres stores everything in Postgres.
	DriverPostgres = "postgres"
	// DriverMemory keeps everything in process memory.
	DriverMemory = "memory"

	// ProviderGemini answers chat turns with Google Gemini.
	ProviderGemini = "gemini"
	// ProviderChatGPT answers chat turns with an OpenAI-compatible API.
	ProviderChatGPT = "chatgpt"

	devJWTSecret = "dev_secret_key_change_me_in_prod"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Auth          AuthConfig         `yaml:"auth"`
	LLM           LLMConfig          `yaml:"llm"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Upload        UploadConfig       `yaml:"upload"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigin   string        `yaml:"allowedOrigin"`
}

// DatabaseConfig selects the storage driver and its connection details.
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// Persistent reports whether indexed data outlives the process.
func (d DatabaseConfig) Persistent() bool {
	return d.Driver != DriverMemory && d.Driver != ""
}

// AuthConfig controls token issuance and the optional bootstrap administrator.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwtSecret"`
	TokenTTL       time.Duration `yaml:"tokenTtl"`
	BootstrapAdmin AdminConfig   `yaml:"bootstrapAdmin"`
}

// AdminConfig is created at startup when Email is set and unknown.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LLMConfig picks the chat provider.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	MaxOutputTokens int           `yaml:"maxOutputTokens"`
	Gemini          GeminiConfig  `yaml:"gemini"`
	ChatGPT         ChatGPTConfig `yaml:"chatgpt"`
}

// GeminiConfig defines how to contact the Gemini API. APIKey is the process-wide fallback.
type GeminiConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"apiKey"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// CrawlerConfig bounds a crawl.
type CrawlerConfig struct {
	MaxPages     int           `yaml:"maxPages"`
	UserAgent    string        `yaml:"userAgent"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

// UploadConfig bounds PDF uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"maxBytes"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Endpoint string `yaml:"endpoint"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig sets the slog level and handler format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file named by HELPDESK_CONFIG (if any) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit file path; an empty path means defaults only.
func LoadFile(path string) Config {
	cfg := Default()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	if cfg.Auth.JWTSecret == devJWTSecret {
		log.Printf("config: using development jwt secret, set %s in production", jwtSecretEnv)
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
		c.Database.Driver = DriverPostgres
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.Auth.JWTSecret = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.LLM.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.LLM.Gemini.Model = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.LLM.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.LLM.ChatGPT.Model = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.AllowedOrigin != "" {
		base.Server.AllowedOrigin = override.Server.AllowedOrigin
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Migrate {
		base.Database.Migrate = true
	}

	if override.Auth.JWTSecret != "" {
		base.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Auth.TokenTTL > 0 {
		base.Auth.TokenTTL = override.Auth.TokenTTL
	}
	if override.Auth.BootstrapAdmin.Email != "" {
		base.Auth.BootstrapAdmin = override.Auth.BootstrapAdmin
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.MaxOutputTokens > 0 {
		base.LLM.MaxOutputTokens = override.LLM.MaxOutputTokens
	}
	if override.LLM.Gemini.Model != "" {
		base.LLM.Gemini.Model = override.LLM.Gemini.Model
	}
	if override.LLM.Gemini.APIKey != "" {
		base.LLM.Gemini.APIKey = override.LLM.Gemini.APIKey
	}
	if override.LLM.ChatGPT.Endpoint != "" {
		base.LLM.ChatGPT.Endpoint = override.LLM.ChatGPT.Endpoint
	}
	if override.LLM.ChatGPT.Model != "" {
		base.LLM.ChatGPT.Model = override.LLM.ChatGPT.Model
	}
	if override.LLM.ChatGPT.APIKey != "" {
		base.LLM.ChatGPT.APIKey = override.LLM.ChatGPT.APIKey
	}
	if override.LLM.ChatGPT.SystemPrompt != "" {
		base.LLM.ChatGPT.SystemPrompt = override.LLM.ChatGPT.SystemPrompt
	}

	if override.Crawler.MaxPages > 0 {
		base.Crawler.MaxPages = override.Crawler.MaxPages
	}
	if override.Crawler.UserAgent != "" {
		base.Crawler.UserAgent = override.Crawler.UserAgent
	}
	if override.Crawler.FetchTimeout > 0 {
		base.Crawler.FetchTimeout = override.Crawler.FetchTimeout
	}
	if override.Crawler.MaxBodyBytes > 0 {
		base.Crawler.MaxBodyBytes = override.Crawler.MaxBodyBytes
	}

	if override.Upload.MaxBytes > 0 {
		base.Upload.MaxBytes = override.Upload.MaxBytes
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.Endpoint != "" {
		base.Notifications.Telegram.Endpoint = override.Notifications.Telegram.Endpoint
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

// Default returns a configuration that runs locally on the memory driver.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigin:   "*",
		},
		Database: DatabaseConfig{Driver: DriverMemory},
		Auth: AuthConfig{
			JWTSecret: devJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:        ProviderGemini,
			MaxOutputTokens: 500,
			Gemini:          GeminiConfig{Model: "gemini-1.5-flash"},
			ChatGPT: ChatGPTConfig{
				Endpoint:     "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: "You are a helpdesk assistant. Answer briefly using the knowledge base when it is provided.",
			},
		},
		Crawler: CrawlerConfig{
			MaxPages:     10,
			FetchTimeout: 20 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
		Upload:  UploadConfig{MaxBytes: 20 << 20},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
