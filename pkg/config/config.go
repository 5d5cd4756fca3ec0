package config

import (
	"bufio"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultAllowedOrigins 前端默认来源
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://base-tribe.vercel.app",
}

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 数据库配置
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	PostgresDSN     string
	UseLocalDB      bool
	LocalDataDir    string

	// 链配置
	RPCURL         string
	ChainID        *big.Int
	FactoryAddress string

	// JWT配置
	JWTSecret        string
	RequireOwnerAuth bool

	// Kafka配置
	KafkaBrokers []string
	KafkaTopic   string

	// CORS配置
	AllowedOrigins []string

	// 服务保护
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	MetricsEnabled     bool
	// 仅在反向代理之后开启，否则客户端可伪造 X-Forwarded-For
	TrustProxy bool

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:        getEnvWithDefault("ENVIRONMENT", "development"),
		Port:               getEnvWithDefault("PORT", "4000"),
		MongoDatabase:      getEnvWithDefault("MONGODB_DATABASE", "Tribe"),
		MongoCollection:    getEnvWithDefault("MONGODB_COLLECTION", "benefits"),
		UseLocalDB:         getEnvBool("USE_LOCAL_DB", false),
		LocalDataDir:       getEnvWithDefault("LOCAL_DATA_DIR", "./data"),
		RPCURL:             getEnvWithDefault("RPC_URL", "https://sepolia.base.org"),
		ChainID:            getEnvBigInt("CHAIN_ID", 84532),
		JWTSecret:          getEnvWithDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		RequireOwnerAuth:   getEnvBool("REQUIRE_OWNER_AUTH", false),
		KafkaTopic:         getEnvWithDefault("KAFKA_TOPIC", "tribe.benefits"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 25*time.Second),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
		Debug:              getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.MongoURI = strings.TrimSpace(os.Getenv("MONGODB_URI"))
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	config.FactoryAddress = strings.TrimSpace(os.Getenv("FACTORY_ADDRESS"))
	config.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))

	// CORS配置
	allowedOrigins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	switch allowedOrigins {
	case "":
		config.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	case "*":
		config.AllowedOrigins = []string{"*"}
	default:
		config.AllowedOrigins = splitList(allowedOrigins)
	}

	// 环境特定配置
	if config.Environment == "production" {
		if config.MongoURI == "" && config.PostgresDSN == "" {
			fmt.Println("⚠️  WARNING: Production environment using local file database. Please configure MONGODB_URI or POSTGRES_DSN")
			config.UseLocalDB = true
		}
		config.Debug = false
	}
	if config.MongoURI == "" && config.PostgresDSN == "" {
		config.UseLocalDB = true
	}

	return config
}

// Cached config (initialized once per process)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// 验证JWT密钥
	if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
		if c.Environment == "production" && c.RequireOwnerAuth {
			return fmt.Errorf("JWT_SECRET must be set in production when REQUIRE_OWNER_AUTH is enabled")
		}
	}

	// 验证链配置
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if c.ChainID == nil || c.ChainID.Sign() <= 0 {
		return fmt.Errorf("CHAIN_ID must be a positive integer")
	}
	if c.FactoryAddress != "" && !common.IsHexAddress(c.FactoryAddress) {
		return fmt.Errorf("FACTORY_ADDRESS is not a valid address: %q", c.FactoryAddress)
	}

	// 验证数据库配置
	if !c.UseLocalDB && c.MongoURI == "" && c.PostgresDSN == "" {
		return fmt.Errorf("数据库配置不完整：请配置 MONGODB_URI 或 POSTGRES_DSN")
	}
	if c.MongoURI != "" && (c.MongoDatabase == "" || c.MongoCollection == "") {
		return fmt.Errorf("MONGODB_DATABASE and MONGODB_COLLECTION are required with MONGODB_URI")
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// StoreType 返回将要使用的存储类型
func (c *Config) StoreType() string {
	switch {
	case c.MongoURI != "":
		return "mongodb"
	case c.PostgresDSN != "":
		return "postgresql"
	default:
		return "local_file"
	}
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBigInt(key string, defaultValue int64) *big.Int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, ok := new(big.Int).SetString(value, 10); ok {
			return parsed
		}
	}
	return big.NewInt(defaultValue)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile 加载 .env 文件到环境变量
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return // 文件不存在或无法打开，静默返回
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// 移除值两端的引号（如果有）
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		// 只有当环境变量不存在时才设置
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
