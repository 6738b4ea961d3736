// =============================================================================
// VideoFlow 主入口
// =============================================================================
// 完整服务入口点，包含 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	videoflow serve                                  # 启动服务
//	videoflow serve --config config.yaml             # 指定配置文件
//	videoflow generate --model Sora --prompt "..."   # 命令行生成一次
//	videoflow models                                 # 列出可选模型
//	videoflow secret set --service openai --value sk # 写入密钥存储
//	videoflow secret disable --service openai        # 停用密钥
//	videoflow migrate                                # 创建密钥表
//	videoflow version                                # 显示版本信息
//	videoflow health                                 # 健康检查
// =============================================================================

// @title VideoFlow API
// @version 1.0.0
// @description VideoFlow dispatches text-to-video requests to Sora, Runway, Luma, Kling, Pika, Vidu and Replicate pipelines.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/videoflow/config"
	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/internal/tlsutil"
	"github.com/BaSui01/videoflow/types"
	"github.com/BaSui01/videoflow/video"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "serve":
		code = runServe(os.Args[2:])
	case "generate":
		code = runGenerate(os.Args[2:], os.Stdout, os.Stderr)
	case "models":
		code = runModels(os.Args[2:], os.Stdout)
	case "secret":
		code = runSecret(os.Args[2:])
	case "migrate":
		code = runMigrate(os.Args[2:])
	case "version":
		printVersion(os.Stdout)
	case "health":
		code = runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		code = 1
	}
	os.Exit(code)
}

// loadConfig 加载并验证配置
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// 初始化日志
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting VideoFlow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	srv := NewServer(cfg, logger)
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		srv.Shutdown()
		return 1
	}

	// 等待关闭信号
	srv.WaitForShutdown()

	logger.Info("VideoFlow stopped")
	return 0
}

// =============================================================================
// 🎬 generate 命令
// =============================================================================

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	model := fs.String("model", video.ModelSora, "Video model name (see 'videoflow models')")
	prompt := fs.String("prompt", "", "Text prompt")
	duration := fs.Int("duration", 10, "Duration in seconds (5-60)")
	resolution := fs.String("resolution", string(video.Resolution1080p), "Resolution (720p or 1080p)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	rt, err := buildRuntime(cfg, logger, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer rt.close(context.Background(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generateOnce(ctx, rt.dispatcher, video.GenerationRequest{
		Model:           *model,
		Prompt:          *prompt,
		DurationSeconds: *duration,
		Resolution:      video.Resolution(*resolution),
	}, stdout, stderr)
}

// generateOnce 执行一次生成并输出结果地址；失败时输出一行可读错误
func generateOnce(ctx context.Context, g interface {
	Generate(ctx context.Context, req video.GenerationRequest) (*video.Result, error)
}, req video.GenerationRequest, stdout, stderr io.Writer) int {
	fmt.Fprintf(stderr, "Generating with %s, this can take several minutes...\n", req.Model)

	start := time.Now()
	res, err := g.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", types.DisplayMessage(err))
		return 1
	}

	fmt.Fprintf(stderr, "Done in %s (provider %s, job %s)\n",
		time.Since(start).Round(time.Second), res.Provider, res.JobID)
	fmt.Fprintln(stdout, res.ResultURL)
	return 0
}

// =============================================================================
// 📋 models 命令
// =============================================================================

func runModels(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	_ = fs.Parse(args)

	// 仅列出路由，不需要密钥
	registry := video.NewDefaultRegistry(video.DefaultConfig(), credentials.StaticResolver{}, video.NewPoller(video.PollerConfig{}, nil, nil), nil)
	printModels(stdout, registry.Models())
	return 0
}

func printModels(w io.Writer, models []video.ModelInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPROVIDER\tKIND")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Provider, m.Kind)
	}
	_ = tw.Flush()
}

// =============================================================================
// 🔑 secret 命令
// =============================================================================

const secretUsage = "Usage: videoflow secret <set|disable> --service <name> [--value <secret>]"

func runSecret(args []string) int {
	if len(args) < 1 || (args[0] != "set" && args[0] != "disable") {
		fmt.Fprintln(os.Stderr, secretUsage)
		return 1
	}
	action := args[0]

	fs := flag.NewFlagSet("secret "+action, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	service := fs.String("service", "", "Logical service name")
	value := fs.String("value", "", "Secret value (set only)")
	_ = fs.Parse(args[1:])

	if !credentials.IsKnownService(*service) {
		fmt.Fprintf(os.Stderr, "Unknown service %q (known: %v)\n", *service, credentials.Services())
		return 1
	}
	if action == "set" && *value == "" {
		fmt.Fprintln(os.Stderr, "--value is required")
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	store, err := openSecretStore(cfg.Secrets, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open secret store: %v\n", err)
		return 1
	}
	if store == nil {
		fmt.Fprintln(os.Stderr, "No secrets backend configured (set secrets.backend to redis or database)")
		return 1
	}
	defer func() { _ = store.close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := applySecret(ctx, store, action, *service, *value, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// applySecret 对已打开的存储执行 set 或 disable，输出中的密钥已脱敏
func applySecret(ctx context.Context, store *secretStore, action, service, value string, stdout io.Writer) error {
	switch action {
	case "set":
		if err := store.store.Put(ctx, service, value); err != nil {
			return fmt.Errorf("failed to store secret: %w", err)
		}
		fmt.Fprintf(stdout, "Stored secret for %s (%s)\n", service, credentials.Mask(value))
	case "disable":
		if err := store.disable(ctx, service); err != nil {
			return fmt.Errorf("failed to disable secret: %w", err)
		}
		fmt.Fprintf(stdout, "Disabled secret for %s\n", service)
	default:
		return fmt.Errorf("unknown secret action %q", action)
	}
	return nil
}

// =============================================================================
// 🗄️ migrate 命令
// =============================================================================

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if cfg.Secrets.Backend != config.SecretsBackendDatabase {
		fmt.Fprintln(os.Stderr, "migrate requires secrets.backend=database")
		return 1
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	// openSecretStore 打开数据库时执行表迁移
	store, err := openSecretStore(cfg.Secrets, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		return 1
	}
	_ = store.close()

	fmt.Println("Secret table is up to date")
	return 0
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) int {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	_ = fs.Parse(args)

	client := tlsutil.SecureHTTPClient(5 * time.Second)
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		return 1
	}

	fmt.Println("OK")
	return 0
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "VideoFlow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `VideoFlow - AI video generation dispatcher

Usage:
  videoflow <command> [options]

Commands:
  serve     Start the VideoFlow server
  generate  Run one generation and print the result URL
  models    List selectable video models
  secret    Manage provider secrets (secret set|disable)
  migrate   Create the secrets table (database backend)
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Options for 'generate':
  --model <name>        Video model (default Sora)
  --prompt <text>       Text prompt
  --duration <seconds>  Duration 5-60 (default 10)
  --resolution <res>    720p or 1080p (default 1080p)

Examples:
  videoflow serve --config /etc/videoflow/config.yaml
  videoflow generate --model Runway --prompt "a red fox in snow" --duration 10
  videoflow secret set --service replicate --value r8_xxx
  videoflow secret disable --service replicate
  videoflow health --addr http://localhost:8080
  videoflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	// 配置编码器
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
		outputs = []string{"stderr"}
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
