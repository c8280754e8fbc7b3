package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/config"
	"github.com/mikey/llm-email-pipeline/internal/extractor"
	"github.com/mikey/llm-email-pipeline/internal/factory"
	"github.com/mikey/llm-email-pipeline/internal/logging"
	"github.com/mikey/llm-email-pipeline/internal/state"
)

var (
	// Input flags
	inputFile = flag.String("file", "", "Path to the email file (.msg or .eml)")
	inputB64  = flag.String("b64", "", "Base64-encoded email file content")

	// Pipeline flags
	runPipeline = flag.Bool("pipeline", false, "Run the full LLM pipeline instead of extraction only")

	// LLM provider flags
	provider    = flag.String("provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Pipeline behavior flags
	suppressDomains = flag.String("suppress", "", "Comma-separated list of domains that never get an auto-response")

	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	in := extractor.Input{
		FilePath: *inputFile,
		BytesB64: *inputB64,
	}

	if !*runPipeline {
		parsed, err := extractor.Extract(in)
		printJSON(extractor.ResultMap(parsed, err))
		if err != nil {
			os.Exit(1)
		}
		return
	}

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	llmClient, err := factory.NewLLMFactory(cfg, logger).CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	repo, err := factory.NewInvoiceDBFactory(cfg, logger).CreateInvoiceRepository()
	if err != nil {
		logger.Fatal("Failed to create invoice repository", zap.Error(err))
	}

	pipeline := factory.NewPipelineFactory(cfg, logger).CreatePipeline(llmClient, repo)

	st := state.NewStore()
	if in.FilePath != "" {
		st.Set(state.KeyEmailFilePath, in.FilePath)
	}
	if in.BytesB64 != "" {
		st.Set(state.KeyEmailFileBytesB64, in.BytesB64)
	}

	final, runErr := pipeline.Run(context.Background(), st)
	printJSON(final.Snapshot())

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if closer, ok := repo.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close invoice repository", zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("Pipeline halted", zap.Error(runErr))
		os.Exit(1)
	}
}

// printJSON writes a value to stdout as indented JSON
func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	}

	v.Set("pipeline.max_body_size", *maxBodySize)

	if *suppressDomains != "" {
		domains := strings.Split(*suppressDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("pipeline.suppressed_domains", domains)
	} else {
		v.Set("pipeline.suppressed_domains", []string{})
	}

	return config.NewFromViper(v)
}
