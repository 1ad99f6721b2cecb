// =============================================================================
// ImageGate 主入口
// =============================================================================
// 图像生成网关服务入口，包含 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	imagegate serve                        # 启动服务
//	imagegate serve --config config.yaml   # 指定配置文件
//	imagegate generate -prompt "a cat" -model dall-e-3
//	imagegate models                       # 列出模型与尺寸
//	imagegate version                      # 显示版本信息
//	imagegate health                       # 健康检查
// =============================================================================

// @title ImageGate API
// @version 1.0
// @description 统一的多供应商图像生成网关
// @BasePath /
// @schemes http https

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/imagegate/config"
	"github.com/BaSui01/imagegate/gateway"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// dotEnvFiles 按优先级排列
var dotEnvFiles = []string{".env.local", ".env"}

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "generate":
		os.Exit(runGenerate(os.Args[2:], os.Stdout, os.Stderr))
	case "models":
		os.Exit(runModels(os.Args[2:], os.Stdout, os.Stderr))
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newLoader 构建统一的配置加载器：YAML → .env → IMAGEGATE_* → 凭据
func newLoader(configPath string) *config.Loader {
	loader := config.NewLoader().
		WithDotEnv(dotEnvFiles...).
		WithCredentialKeys(credentialKeys(gateway.DefaultModels())...)
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	return loader
}

// credentialKeys 去重后的凭据名，保持注册表顺序
func credentialKeys(models []gateway.ModelConfig) []string {
	seen := make(map[string]bool, len(models))
	keys := make([]string, 0, len(models))
	for _, m := range models {
		if seen[m.CredentialKey] {
			continue
		}
		seen[m.CredentialKey] = true
		keys = append(keys, m.CredentialKey)
	}
	return keys
}

func loadConfig(configPath string) (*config.Loader, *config.Config, error) {
	loader := newLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return loader, cfg, nil
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args)

	loader, cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ImageGate",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	srv := NewServer(cfg, loader, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	if err := srv.WaitForShutdown(); err != nil {
		logger.Error("ImageGate stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("ImageGate stopped")
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	path := fs.String("path", "/health", "Probe path (/health or /ready)")
	_ = fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + *path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("ImageGate %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`ImageGate - multi-provider image generation gateway

Usage:
  imagegate <command> [options]

Commands:
  serve     Start the HTTP gateway
  generate  Generate one image from the command line
  models    List registered models and their sizes
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Options for 'generate':
  -prompt <text>    Prompt (required)
  -model <id>       Model id (required)
  -size <WxH>       Requested size
  -out <file>       Write the PNG to file instead of printing JSON
  -config <path>    Path to configuration file (YAML)

Examples:
  imagegate serve
  imagegate serve --config /etc/imagegate/config.yaml
  imagegate generate -prompt "a red fox" -model dall-e-3 -out fox.png
  imagegate models
  imagegate health --addr http://localhost:8080 --path /ready
  imagegate version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
