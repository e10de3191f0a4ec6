package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// 支持的补全服务提供方。
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Storage    StorageConfig
	Catalog    CatalogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	completion, err := loadCompletionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Completion: completion,
		Storage:    LoadStorageConfig(),
		Catalog:    loadCatalogConfig(),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// CompletionConfig 描述大模型补全服务配置。
type CompletionConfig struct {
	Provider      string
	Model         string
	APIKey        string
	BaseURL       string
	AccessKey     string
	SecretKey     string
	Region        string
	HistoryWindow int
}

// StorageConfig 描述会话记录的存放位置。
type StorageConfig struct {
	TranscriptDir string
}

// CatalogConfig 描述商品与订单数据文件。
type CatalogConfig struct {
	ProductsPath string
	OrdersPath   string
}

// Validate 检查所选提供方所需的凭证是否齐全。
func (c CompletionConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY or OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderArk:
		if c.APIKey == "" && (c.AccessKey == "" || c.SecretKey == "") {
			return fmt.Errorf("Ark 凭证缺失，至少提供 ARK_API_KEY 或 AK/SK 组合")
		}
	default:
		return fmt.Errorf("unsupported COMPLETION_PROVIDER %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model name is required for provider %q", c.Provider)
	}
	return nil
}

// NewChatModel 使用配置创建一个模型实例。采样参数随每次请求传入。
func (c CompletionConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Provider {
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:   c.BaseURL,
			Region:    c.Region,
			APIKey:    c.APIKey,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Model:     c.Model,
		})
	default:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: c.BaseURL,
			APIKey:  c.APIKey,
			Model:   c.Model,
		})
	}
}

func loadCompletionConfig() (CompletionConfig, error) {
	window := 9
	if override, err := parseOptionalIntEnv("HISTORY_WINDOW"); err != nil {
		return CompletionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return CompletionConfig{}, fmt.Errorf("invalid HISTORY_WINDOW value %d: must be at least 1", *override)
		}
		window = *override
	}

	provider := strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", ProviderOpenAI))

	switch provider {
	case ProviderArk:
		return CompletionConfig{
			Provider:      provider,
			Model:         firstNonEmpty(os.Getenv("COMPLETION_MODEL"), os.Getenv("Model")),
			APIKey:        strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:     strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:     strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			BaseURL:       getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:        getEnvOrDefault("ARK_REGION", "cn-beijing"),
			HistoryWindow: window,
		}, nil
	case ProviderOpenAI:
		return CompletionConfig{
			Provider:      provider,
			Model:         getEnvOrDefault("COMPLETION_MODEL", "llama3-8b-8192"),
			APIKey:        firstNonEmpty(os.Getenv("GROQ_API_KEY"), os.Getenv("OPENAI_API_KEY")),
			BaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.groq.com/openai/v1"),
			HistoryWindow: window,
		}, nil
	default:
		return CompletionConfig{}, fmt.Errorf("invalid COMPLETION_PROVIDER value %q", provider)
	}
}

// LoadStorageConfig 只读取存储相关配置，供命令行工具使用。
func LoadStorageConfig() StorageConfig {
	return StorageConfig{TranscriptDir: getEnvOrDefault("TRANSCRIPT_DIR", "chat_history")}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ProductsPath: getEnvOrDefault("CATALOG_PRODUCTS", "data/products.json"),
		OrdersPath:   getEnvOrDefault("CATALOG_ORDERS", "data/orders.json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
