package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BaSui01/imagegate/api/handlers"
	"github.com/BaSui01/imagegate/gateway"
	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

// =============================================================================
// 🎨 generate 命令
// =============================================================================

// generateOptions 命令行生成参数
type generateOptions struct {
	Prompt string
	Model  string
	Size   string
	Out    string
}

// requestBody 构造与 HTTP 接口相同的请求体，未指定尺寸时省略该字段
func (o generateOptions) requestBody() ([]byte, error) {
	body := map[string]string{"prompt": o.Prompt, "model": o.Model}
	if o.Size != "" {
		body["size"] = o.Size
	}
	return json.Marshal(body)
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts generateOptions
	fs.StringVar(&opts.Prompt, "prompt", "", "Prompt text")
	fs.StringVar(&opts.Model, "model", "", "Model id")
	fs.StringVar(&opts.Size, "size", "", "Requested size, e.g. 1024x1024")
	fs.StringVar(&opts.Out, "out", "", "Write the decoded image to this file")
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// 命令行模式日志只写 stderr，stdout 留给结果
	cfg.Log.OutputPaths = []string{"stderr"}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	svc := gateway.NewService(gateway.StaticCredentials(cfg.Credentials),
		gateway.WithFactory(provider.NewFactory(providerOverrides(cfg.Providers))),
		gateway.WithStrictSizes(cfg.Gateway.StrictSizes),
		gateway.WithLogger(logger),
	)

	ctx := context.Background()
	if cfg.Gateway.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Gateway.RequestTimeout)
		defer cancel()
	}
	return generate(ctx, svc, opts, stdout, stderr)
}

// generate 执行一次生成。成功时写文件或输出成功体 JSON，失败时把错误体写到 stderr。
func generate(ctx context.Context, svc *gateway.Service, opts generateOptions, stdout, stderr io.Writer) int {
	body, err := opts.requestBody()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	result, err := svc.Generate(ctx, gateway.Input{Body: body, ClientIP: "cli"})
	if err != nil {
		sig, ok := types.AsError(err)
		if !ok {
			sig = types.NewError(types.ErrInternalError, err.Error())
		}
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(handlers.ErrorBody(sig))
		return 1
	}

	if opts.Out == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	data, err := base64.StdEncoding.DecodeString(result.Images[0].Base64)
	if err != nil {
		fmt.Fprintf(stderr, "decode image: %v\n", err)
		return 1
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "write image: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", opts.Out, len(data))
	return 0
}

// =============================================================================
// 📋 models 命令
// =============================================================================

func runModels(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	creds := gateway.StaticCredentials{}
	if _, cfg, err := loadConfig(*configPath); err == nil {
		creds = gateway.StaticCredentials(cfg.Credentials)
	} else {
		fmt.Fprintf(stderr, "warning: %v; credential status unknown\n", err)
	}
	printModels(gateway.NewService(creds), *asJSON, stdout)
	return 0
}

func printModels(svc *gateway.Service, asJSON bool, w io.Writer) {
	models := handlers.ListModels(svc)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(handlers.ModelsResponse{Models: models})
		return
	}
	for _, m := range models {
		mark := " "
		if m.Configured {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-48s %-12s default=%-10s %s\n",
			mark, m.ID, m.Provider, m.DefaultSize, strings.Join(m.Sizes, ","))
	}
}
