package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hanishkeloth/agentmemory/pkg/adapter"
	"github.com/hanishkeloth/agentmemory/pkg/usecase/memory"
	"github.com/hanishkeloth/agentmemory/pkg/utils/logging"
	"github.com/hanishkeloth/agentmemory/pkg/vector"
)

// config holds configuration values
type config struct {
	storePath  string
	configPath string
	logLevel   string

	// embedder
	embedderKind   string
	geminiProject  string
	geminiLocation string
	embeddingModel string

	// vector index
	vectorBackend string
	dimension     int64
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Aliases:     []string{"s"},
			Usage:       "Path to the snapshot file holding the memory state",
			Value:       "memory.json",
			Sources:     cli.EnvVars("AGENTMEMORY_STORE"),
			Destination: &cfg.storePath,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML file with tier settings",
			Sources:     cli.EnvVars("AGENTMEMORY_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("AGENTMEMORY_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "embedder",
			Usage:       "Embedding provider: mock, gemini or none",
			Value:       "mock",
			Sources:     cli.EnvVars("AGENTMEMORY_EMBEDDER"),
			Destination: &cfg.embedderKind,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini embedding model name",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("AGENTMEMORY_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.StringFlag{
			Name:        "vector-backend",
			Usage:       "Vector index backend: dense, chromem or none",
			Value:       "dense",
			Sources:     cli.EnvVars("AGENTMEMORY_VECTOR_BACKEND"),
			Destination: &cfg.vectorBackend,
		},
		&cli.IntFlag{
			Name:        "dimension",
			Aliases:     []string{"d"},
			Usage:       "Embedding dimension",
			Value:       vector.DefaultDimension,
			Sources:     cli.EnvVars("AGENTMEMORY_DIMENSION"),
			Destination: &cfg.dimension,
		},
	}
}

// loggerContext attaches a logger at the configured level to the context
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	return logging.With(ctx, logging.New(cfg.logLevel, os.Stderr))
}

// memoryConfig loads the tier settings from the YAML config file, if any
func (cfg *config) memoryConfig() (memory.Config, error) {
	var memCfg memory.Config
	if cfg.configPath == "" {
		return memCfg, nil
	}

	data, err := os.ReadFile(cfg.configPath)
	if err != nil {
		return memCfg, goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
	}
	if err := yaml.Unmarshal(data, &memCfg); err != nil {
		return memCfg, goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
	}
	return memCfg, nil
}

// newEmbedder creates the configured embedding provider
func (cfg *config) newEmbedder(ctx context.Context) (adapter.Embedder, error) {
	switch cfg.embedderKind {
	case "mock":
		return adapter.NewMock(int(cfg.dimension)), nil
	case "gemini":
		if cfg.geminiProject == "" {
			return nil, goerr.New("gemini-project is required")
		}
		return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
			adapter.WithEmbeddingModel(cfg.embeddingModel),
			adapter.WithDimensions(int(cfg.dimension)))
	case "none", "":
		return nil, nil
	default:
		return nil, goerr.New("unknown embedder", goerr.V("embedder", cfg.embedderKind))
	}
}

// newIndex creates the configured vector index backend
func (cfg *config) newIndex() (vector.Index, error) {
	switch cfg.vectorBackend {
	case "dense":
		return vector.NewDense(int(cfg.dimension)), nil
	case "chromem":
		return vector.NewChromem(int(cfg.dimension))
	case "none", "":
		return nil, nil
	default:
		return nil, goerr.New("unknown vector backend", goerr.V("backend", cfg.vectorBackend))
	}
}

// newUseCase builds a coordinator and seeds it from the store file when one
// exists
func (cfg *config) newUseCase(ctx context.Context) (*memory.UseCase, error) {
	memCfg, err := cfg.memoryConfig()
	if err != nil {
		return nil, err
	}

	var opts []memory.Option
	index, err := cfg.newIndex()
	if err != nil {
		return nil, err
	}
	if index != nil {
		opts = append(opts, memory.WithVectorIndex(index))
	}

	embedder, err := cfg.newEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	if embedder != nil {
		opts = append(opts, memory.WithEmbedder(embedder))
	}

	uc := memory.New(memCfg, opts...)

	f, err := os.Open(cfg.storePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return uc, nil
		}
		return nil, goerr.Wrap(err, "failed to open store file", goerr.V("path", cfg.storePath))
	}
	defer f.Close()

	if err := uc.Load(ctx, f); err != nil {
		return nil, goerr.Wrap(err, "failed to load store file", goerr.V("path", cfg.storePath))
	}
	return uc, nil
}

// persist writes the coordinator state back to the store file
func (cfg *config) persist(uc *memory.UseCase) error {
	f, err := os.Create(cfg.storePath)
	if err != nil {
		return goerr.Wrap(err, "failed to create store file", goerr.V("path", cfg.storePath))
	}
	defer f.Close()

	if err := uc.Save(f); err != nil {
		return err
	}
	return nil
}
