// =============================================================================
// 📦 ImageGate 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + .env 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("IMAGEGATE").
//	    WithDotEnv(".env.local", ".env").
//	    WithCredentialKeys("OPENAI_API_KEY", "FAL_API_KEY").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → .env 文件 → 进程环境变量
// =============================================================================
package config

import (
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 ImageGate 的完整配置结构
type Config struct {
	// Server 服务器配置
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Gateway 流水线配置
	Gateway GatewayConfig `yaml:"gateway" env:"GATEWAY"`

	// Quota 按客户端配额（可选钩子）
	Quota QuotaConfig `yaml:"quota" env:"QUOTA"`

	// Redis 配额计数存储
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Providers 按变体覆盖上游端点与超时，键为变体标签（openai、fal …）
	Providers map[string]ProviderConfig `yaml:"providers" env:"-"`

	// Credentials 凭据表，键为约定的环境变量名（OPENAI_API_KEY …）
	Credentials map[string]string `yaml:"credentials" env:"-"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Metrics 端口
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时，应大于 Gateway.RequestTimeout
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// 每个客户端 IP 的请求速率，0 表示关闭
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// 突发容量
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// 可信反向代理（IP 或 CIDR），只有来自这些地址的 X-Forwarded-For 才被采信
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

// GatewayConfig 网关流水线配置
type GatewayConfig struct {
	// 严格尺寸校验：true 拒绝模型不支持的尺寸，false 回退到模型默认尺寸
	StrictSizes bool `yaml:"strict_sizes" env:"STRICT_SIZES"`
	// 单次生成请求的执行预算
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	// 触发宽松 CORS 的 Referer 片段
	DevRefererMarkers []string `yaml:"dev_referer_markers" env:"DEV_REFERER_MARKERS"`
}

// QuotaConfig 配额钩子配置
type QuotaConfig struct {
	// 是否启用，默认关闭
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 每个窗口允许的请求数
	Limit int64 `yaml:"limit" env:"LIMIT"`
	// 计数窗口
	Window time.Duration `yaml:"window" env:"WINDOW"`
	// Redis 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// ProviderConfig 单个上游变体的覆盖项，空值保持默认
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath     string
	envPrefix      string
	dotEnvFiles    []string
	credentialKeys []string
	validators     []func(*Config) error

	dotEnv map[string]string
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "IMAGEGATE",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithDotEnv 设置 .env 文件，越靠前优先级越高；不存在的文件被忽略
func (l *Loader) WithDotEnv(files ...string) *Loader {
	l.dotEnvFiles = append(l.dotEnvFiles, files...)
	return l
}

// WithCredentialKeys 设置需要从环境中收集的凭据名
func (l *Loader) WithCredentialKeys(keys ...string) *Loader {
	l.credentialKeys = append(l.credentialKeys, keys...)
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// WatchPaths 返回参与加载的文件，供热重载监听
func (l *Loader) WatchPaths() []string {
	var paths []string
	if l.configPath != "" {
		paths = append(paths, l.configPath)
	}
	return append(paths, l.dotEnvFiles...)
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → .env 文件 → 进程环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 读取 .env 文件（不修改进程环境）
	if err := l.loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load dotenv files: %w", err)
	}

	// 4. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 5. 收集凭据
	l.loadCredentials(cfg)

	// 6. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadDotEnv 按优先级合并 .env 文件
func (l *Loader) loadDotEnv() error {
	l.dotEnv = make(map[string]string)
	for i := len(l.dotEnvFiles) - 1; i >= 0; i-- {
		path := l.dotEnvFiles[i]
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range values {
			l.dotEnv[k] = v
		}
	}
	return nil
}

// lookupEnv 先查进程环境，再查 .env 文件
func (l *Loader) lookupEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return l.dotEnv[key]
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// 获取 env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		// 获取环境变量值
		envValue := l.lookupEnv(envKey)
		if envValue == "" {
			continue
		}

		// 设置字段值
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// loadCredentials 环境中的凭据覆盖 YAML credentials 段
func (l *Loader) loadCredentials(cfg *Config) {
	if cfg.Credentials == nil {
		cfg.Credentials = make(map[string]string)
	}
	for _, key := range l.credentialKeys {
		if v := strings.TrimSpace(l.lookupEnv(key)); v != "" {
			cfg.Credentials[key] = v
		}
	}
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	// 验证服务器配置
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, "rate_limit_rps must not be negative")
	}
	for _, entry := range c.Server.TrustedProxies {
		if !validProxyEntry(entry) {
			errs = append(errs, fmt.Sprintf("invalid trusted proxy %q", entry))
		}
	}

	// 验证网关配置
	if c.Gateway.RequestTimeout <= 0 {
		errs = append(errs, "gateway request_timeout must be positive")
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < c.Gateway.RequestTimeout {
		errs = append(errs, "server write_timeout must not be shorter than gateway request_timeout")
	}

	// 验证配额配置
	if c.Quota.Enabled {
		if c.Quota.Limit <= 0 {
			errs = append(errs, "quota limit must be positive")
		}
		if c.Quota.Window <= 0 {
			errs = append(errs, "quota window must be positive")
		}
		if c.Redis.Addr == "" {
			errs = append(errs, "quota requires redis addr")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}

	for name, p := range c.Providers {
		if p.Timeout < 0 || p.PollInterval < 0 {
			errs = append(errs, fmt.Sprintf("provider %s: durations must not be negative", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validProxyEntry 接受单个 IP 或 CIDR
func validProxyEntry(entry string) bool {
	entry = strings.TrimSpace(entry)
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}
