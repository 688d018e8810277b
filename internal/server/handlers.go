package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agenthands/caselink/internal/corpus"
	"github.com/agenthands/caselink/internal/model"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type RegisterDocumentRequest struct {
	Title       string `json:"title" binding:"required"`
	Fingerprint string `json:"fingerprint" binding:"required"`
	Reporter    string `json:"reporter"`
	Volume      int    `json:"volume"`
	Page        int    `json:"page"`
	Year        int    `json:"year"`
	Court       string `json:"court"`
	Docket      string `json:"docket"`
}

func (s *Server) RegisterDocument(c *gin.Context) {
	var req RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc, err := s.Store.RegisterDocument(corpus.Document{
		Title:       req.Title,
		Fingerprint: req.Fingerprint,
		Reporter:    req.Reporter,
		Volume:      req.Volume,
		Page:        req.Page,
		Year:        req.Year,
		Court:       req.Court,
		Docket:      req.Docket,
	})
	if err != nil {
		s.log.Error("failed to register document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_id": doc.ID})
}

func (s *Server) ListDocuments(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	docs, total, err := s.Store.Documents(skip, limit)
	if err != nil {
		s.log.Error("failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": docs, "total": total})
}

func (s *Server) GetDocument(c *gin.Context) {
	id := c.Param("id")

	doc, err := s.Store.Document(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		s.log.Error("failed to load document", zap.String("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	citations, err := s.Store.CitationsFrom(id)
	if err != nil {
		s.log.Error("failed to load citations", zap.String("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load citations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc, "citations": citations})
}

type SubmitMentionsRequest struct {
	Mentions []model.CitationMention `json:"mentions"`
}

// SubmitMentions stores the mention-parsing collaborator's output for a
// document and immediately runs a resolution pass over it.
func (s *Server) SubmitMentions(c *gin.Context) {
	id := c.Param("id")

	if _, err := s.Store.Document(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	var req SubmitMentionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	for i := range req.Mentions {
		req.Mentions[i].SourceDocumentID = id
	}

	if err := s.Store.SaveMentions(id, req.Mentions); err != nil {
		s.log.Error("failed to store mentions", zap.String("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store mentions"})
		return
	}

	result, err := s.Pipeline.ProcessDocument(c.Request.Context(), id)
	if err != nil {
		s.log.Error("resolution failed", zap.String("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ProcessAll(c *gin.Context) {
	results, err := s.Pipeline.ProcessAll(c.Request.Context())
	if err != nil {
		s.log.Error("batch processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch processing failed"})
		return
	}

	completed := 0
	failed := 0
	for _, r := range results {
		if r.Status == "completed" {
			completed++
		} else {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_documents": len(results),
		"processed":       completed,
		"failed":          failed,
		"results":         results,
	})
}

func (s *Server) ProcessDocument(c *gin.Context) {
	id := c.Param("id")

	if _, err := s.Store.Document(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	result, err := s.Pipeline.ProcessDocument(c.Request.Context(), id)
	if err != nil {
		s.log.Error("resolution failed", zap.String("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type graphNode struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Meta  map[string]interface{} `json:"meta"`
}

type graphEdge struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Key        string   `json:"normalized_key"`
	Confidence float64  `json:"confidence"`
	Path       string   `json:"resolution_path"`
	Notes      []string `json:"notes"`
}

// GetGraph returns the citation graph above a confidence threshold, in the
// node/edge shape the visualization frontend consumes.
func (s *Server) GetGraph(c *gin.Context) {
	minConfidence, err := strconv.ParseFloat(c.DefaultQuery("min_confidence", "0.7"), 64)
	if err != nil || minConfidence < 0 || minConfidence > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_confidence must be in [0,1]"})
		return
	}

	docs, _, err := s.Store.Documents(0, -1)
	if err != nil {
		s.log.Error("failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build graph"})
		return
	}

	nodes := make([]graphNode, 0, len(docs))
	for _, d := range docs {
		nodes = append(nodes, graphNode{
			ID:    d.ID,
			Label: d.Title,
			Meta: map[string]interface{}{
				"court":  d.Court,
				"year":   d.Year,
				"docket": d.Docket,
			},
		})
	}

	recs, err := s.Store.ResolvedEdges(minConfidence)
	if err != nil {
		s.log.Error("failed to load edges", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build graph"})
		return
	}

	edges := make([]graphEdge, 0, len(recs))
	for _, r := range recs {
		var notes []string
		if r.Notes != "" {
			_ = json.Unmarshal([]byte(r.Notes), &notes)
		}
		edges = append(edges, graphEdge{
			ID:         r.ID,
			Source:     r.FromDocumentID,
			Target:     r.ToDocumentID,
			Key:        r.NormalizedKey,
			Confidence: r.Confidence,
			Path:       r.ResolutionPath,
			Notes:      notes,
		})
	}

	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "edges": edges})
}
