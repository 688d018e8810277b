package server

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/caselink/internal/arbiter"
	"github.com/agenthands/caselink/internal/config"
	"github.com/agenthands/caselink/internal/corpus"
	"github.com/agenthands/caselink/internal/graph"
	"github.com/agenthands/caselink/internal/pipeline"
	"github.com/agenthands/caselink/internal/resolver"
)

type Server struct {
	Store    *corpus.Store
	Pipeline *pipeline.Pipeline
	log      *zap.Logger
}

// New wires the service from configuration. The corpus store is required;
// the arbiter and graph store are optional collaborators — without an
// arbiter, ambiguous citations surface for human review instead.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	applyEnvOverrides(cfg)

	store, err := corpus.Open(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}

	var gw *arbiter.Gateway
	if cfg.LLM.Provider != "" {
		client, err := arbiter.NewClientFromConfig(context.Background(), cfg.LLM)
		if err != nil {
			return nil, err
		}
		gw = arbiter.NewGateway(client, cfg.Arbiter, log)
	} else {
		log.Warn("no arbiter provider configured, ambiguous citations will be flagged for review")
	}

	var rec *graph.Recorder
	if cfg.Graph.URI != "" {
		driver, err := graph.NewMemgraphDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, log)
		if err != nil {
			return nil, err
		}
		if err := driver.BuildIndices(context.Background()); err != nil {
			return nil, err
		}
		rec = graph.NewRecorder(driver)
	} else {
		log.Warn("no graph store configured, edges are persisted to the corpus store only")
	}

	res := resolver.New(cfg.Resolver)
	p := pipeline.New(store, res, gw, rec, cfg.Concurrency.Workers, log)

	return &Server{
		Store:    store,
		Pipeline: p,
		log:      log.With(zap.String("component", "server")),
	}, nil
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Graph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/documents", s.ListDocuments)
		v1.POST("/documents", s.RegisterDocument)
		v1.GET("/documents/:id", s.GetDocument)
		v1.POST("/documents/:id/mentions", s.SubmitMentions)
		v1.GET("/graph", s.GetGraph)
		v1.POST("/process", s.ProcessAll)
		v1.POST("/process/:id", s.ProcessDocument)
	}

	return r
}
