// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 服务配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// gRPC 健康检查服务配置
	GRPC GRPCConfig `mapstructure:"grpc"`
	// 投递日志数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 追踪配置
	Tracing TracingConfig `mapstructure:"tracing"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// Ninox 数据库配置
	Ninox NinoxConfig `mapstructure:"ninox"`
	// SMTP 配置
	SMTP SMTPConfig `mapstructure:"smtp"`
	// 联系表单配置
	Contact ContactConfig `mapstructure:"contact"`
	// 告警配置
	Alert AlertConfig `mapstructure:"alert"`
	// Twilio 短信配置
	Twilio TwilioConfig `mapstructure:"twilio"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host" default:"0.0.0.0"`
	// 监听端口
	Port int `mapstructure:"port" default:"8080"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout" default:"30"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout" default:"30"`
	// 允许跨域的来源，空表示 *
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// 可信反向代理（IP 或 CIDR），空表示不信任任何代理转发头
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// 管理接口（投递记录、指标）的 Bearer 令牌，空表示关闭管理接口
	AdminToken string `mapstructure:"admin_token"`
}

// GRPCConfig gRPC 服务配置，端口为 0 表示不启动
type GRPCConfig struct {
	Host string `mapstructure:"host" default:"0.0.0.0"`
	Port int    `mapstructure:"port" default:"0"`
}

// DatabaseConfig 数据库配置，driver 为空表示不记录投递日志
type DatabaseConfig struct {
	// 驱动：mysql, postgres, sqlite
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns" default:"10"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns" default:"2"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime" default:"300"`
	// 是否启用 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled" default:"false"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold" default:"1000"`
}

// Enabled 是否配置了数据库
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != ""
}

// RedisConfig Redis 配置，host 为空表示不使用 Redis
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port" default:"6379"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db" default:"0"`
	MaxPoolSize  int    `mapstructure:"max_pool_size" default:"10"`
	ConnTimeout  int    `mapstructure:"conn_timeout" default:"5"`
	ReadTimeout  int    `mapstructure:"read_timeout" default:"3"`
	WriteTimeout int    `mapstructure:"write_timeout" default:"3"`
}

// Enabled 是否配置了 Redis
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	// 日志级别
	Level string `mapstructure:"level" default:"info"`
	// 输出格式
	Format string `mapstructure:"format" default:"json"`
	// 输出目标：stdout, file, both
	Output string `mapstructure:"output" default:"stdout"`
	// 文件路径
	FilePath string `mapstructure:"file_path" default:"logs/app.log"`
	// 最大文件大小（MB）
	MaxSize int `mapstructure:"max_size" default:"10"`
	// 最大备份文件数
	MaxBackups int `mapstructure:"max_backups" default:"5"`
	// 最大保留天数
	MaxAge int `mapstructure:"max_age" default:"30"`
	// 是否压缩
	Compress bool `mapstructure:"compress" default:"true"`
	// 是否输出调用者信息
	WithCaller bool `mapstructure:"with_caller" default:"false"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled" default:"false"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint" default:"localhost:4317"`
	SamplingRate      float64 `mapstructure:"sampling_rate" default:"1.0"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" default:"true"`
	Path    string `mapstructure:"path" default:"/metrics"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
	// 每秒请求数
	QPS int `mapstructure:"qps" default:"2"`
	// 突发容量
	Burst int `mapstructure:"burst" default:"5"`
}

// NinoxConfig Ninox 数据库 API 配置
type NinoxConfig struct {
	BaseURL    string `mapstructure:"base_url" default:"https://api.ninox.com/v1"`
	APIKey     string `mapstructure:"api_key"`
	TeamID     string `mapstructure:"team_id"`
	DatabaseID string `mapstructure:"database_id"`
	TableID    string `mapstructure:"table_id"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout" default:"10"`
}

// Configured 是否具备写入记录所需的全部参数
func (n NinoxConfig) Configured() bool {
	return n.APIKey != "" && n.TeamID != "" && n.DatabaseID != "" && n.TableID != ""
}

// SMTPConfig 邮件发送配置
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" default:"587"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// 发件人，为空时使用 username
	From string `mapstructure:"from"`
	// 连接超时（秒）
	Timeout int `mapstructure:"timeout" default:"10"`
}

// Configured 是否具备发送邮件所需的参数
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

// Sender 返回发件人地址
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// ContactConfig 联系表单配置
type ContactConfig struct {
	// 通知收件人
	Recipient string `mapstructure:"recipient" default:"kontakt@suedwest-energie.de"`
	// 提交成功后的跳转地址
	ThankYouPath string `mapstructure:"thank_you_path" default:"/danke"`
	// 公司名称，用于邮件正文
	CompanyName string `mapstructure:"company_name" default:"Südwest-Energie"`
}

// AlertConfig 故障告警配置
type AlertConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
	// 告警邮件收件人
	Emails []string `mapstructure:"emails"`
	// 告警短信号码
	Phones []string `mapstructure:"phones"`
	// 同一告警的冷却时间（分钟）
	CooldownMinutes int `mapstructure:"cooldown_minutes" default:"5"`
}

// TwilioConfig Twilio 短信网关配置
type TwilioConfig struct {
	BaseURL    string `mapstructure:"base_url" default:"https://api.twilio.com/2010-04-01"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromPhone  string `mapstructure:"from_phone"`
}

// Configured 是否具备发送短信所需的参数
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromPhone != ""
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时仅使用默认值与环境变量
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		// 读取配置文件（如果不存在则忽略）
		_ = v.ReadInConfig()
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	// 设置环境变量前缀，APP_SMTP_HOST 覆盖 smtp.host
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	switch c.Database.Driver {
	case "":
	case "mysql", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for %s driver", c.Database.Driver)
		}
	case "sqlite":
		if c.Database.DSN == "" {
			c.Database.DSN = "contact.db"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Contact.Recipient == "" {
		return fmt.Errorf("contact.recipient is required")
	}
	if c.Contact.ThankYouPath == "" {
		return fmt.Errorf("contact.thank_you_path is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.QPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit qps and burst must be positive")
	}
	return nil
}

// IsProduction 是否运行在生产环境
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	}
	return false
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "contact")
	v.SetDefault("version", "dev")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("http.trusted_proxies", []string{})
	v.SetDefault("http.admin_token", "")

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 0)

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "localhost:4317")
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.qps", 2)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("ninox.base_url", "https://api.ninox.com/v1")
	v.SetDefault("ninox.api_key", "")
	v.SetDefault("ninox.team_id", "")
	v.SetDefault("ninox.database_id", "")
	v.SetDefault("ninox.table_id", "")
	v.SetDefault("ninox.timeout", 10)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", 10)

	v.SetDefault("contact.recipient", "kontakt@suedwest-energie.de")
	v.SetDefault("contact.thank_you_path", "/danke")
	v.SetDefault("contact.company_name", "Südwest-Energie")

	v.SetDefault("alert.enabled", true)
	v.SetDefault("alert.emails", []string{})
	v.SetDefault("alert.phones", []string{})
	v.SetDefault("alert.cooldown_minutes", 5)

	v.SetDefault("twilio.base_url", "https://api.twilio.com/2010-04-01")
	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from_phone", "")
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
