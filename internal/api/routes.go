package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"claim-eval/internal/claims"
	"claim-eval/internal/policy"
	"claim-eval/internal/store"
	"claim-eval/internal/util"
)

// Config defines server dependencies.
type Config struct {
	DBPath           string
	SamplePolicyPath string
	AllowedOrigins   []string
	SilentDB         bool
	RateLimit        float64
	RateBurst        int
	MaxUploadBytes   int64
}

// Server wires HTTP handlers with policy storage and the claim evaluator.
type Server struct {
	db             *store.Database
	policies       *policy.Service
	evaluator      *claims.Evaluator
	samplePath     string
	allowedOrigins []string
	maxUpload      int64
	limiter        *clientLimiter
	metrics        *Metrics
}

const defaultMaxUploadBytes = 8 << 20

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:             db,
		policies:       policy.NewService(db),
		evaluator:      claims.NewEvaluator(),
		samplePath:     strings.TrimSpace(cfg.SamplePolicyPath),
		allowedOrigins: cfg.AllowedOrigins,
		maxUpload:      cfg.MaxUploadBytes,
		metrics:        NewMetrics(),
	}
	if server.maxUpload <= 0 {
		server.maxUpload = defaultMaxUploadBytes
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		server.limiter = newClientLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if server.samplePath != "" {
		if err := server.loadSample(); err != nil {
			logrus.WithError(err).Warn("load sample policy")
		}
	}

	return server, nil
}

// Close releases the database handle.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()
	r.MaxMultipartMemory = s.maxUpload

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))
	r.Use(requestID())

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	limited := r.Group("/", s.rateLimit())
	{
		limited.GET("/api/policies", s.handleListPolicies)
		limited.GET("/load-sample", s.handleLoadSample)
		limited.POST("/upload-policy", s.handleUploadPolicy)
		limited.POST("/process", s.handleProcess)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListPolicies(c *gin.Context) {
	docs, err := s.policies.Documents()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]PolicyDocumentDTO, 0, len(docs))
	for _, doc := range docs {
		items = append(items, FromPolicyDocument(doc))
	}
	c.JSON(http.StatusOK, PolicyListResponse{Items: items, Total: len(items)})
}

func (s *Server) handleLoadSample(c *gin.Context) {
	if err := s.loadSample(); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"path":       s.samplePath,
		}).WithError(err).Warn("sample policy unavailable")
		c.JSON(http.StatusOK, LoadSampleResponse{OK: false, Error: "sample missing"})
		return
	}
	c.JSON(http.StatusOK, LoadSampleResponse{OK: true, Indexed: "sample-policy"})
}

func (s *Server) handleUploadPolicy(c *gin.Context) {
	fileHeader, err := c.FormFile("policy")
	if err != nil {
		c.JSON(http.StatusBadRequest, UploadPolicyResponse{OK: false, Error: "no-file"})
		return
	}
	if fileHeader.Size > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, UploadPolicyResponse{OK: false, Error: "file too large"})
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, fmt.Errorf("open upload: %w", err))
		return
	}
	defer src.Close()

	count, err := s.policies.Load(policy.UploadedDocID, fileHeader.Filename, src)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.IncrementPolicyLoad(policy.UploadedDocID)
	c.JSON(http.StatusOK, UploadPolicyResponse{OK: true, DocID: policy.UploadedDocID, Clauses: count})
}

func (s *Server) handleProcess(c *gin.Context) {
	watch := util.StartStopwatch()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, claims.ErrBadJSON)
		return
	}

	req, err := claims.DecodeRequest(body)
	switch {
	case errors.Is(err, claims.ErrNoInput):
		req = claims.Request{Clauses: []string{}}
	case err != nil:
		logrus.WithField("request_id", requestIDFrom(c)).WithError(err).Warn("decode process request")
		s.renderError(c, http.StatusBadRequest, claims.ErrBadJSON)
		return
	}

	source := "request"
	if len(req.Clauses) == 0 {
		docID, clauses, err := s.policies.ActiveClauses()
		switch {
		case errors.Is(err, policy.ErrNoDocument):
			// Evaluated against no clauses, which rejects.
			source = "none"
			req.Clauses = []string{}
		case err != nil:
			s.renderError(c, http.StatusInternalServerError, err)
			return
		default:
			source = docID
			req.Clauses = clauses
		}
	}

	decision := s.evaluator.Decide(req)
	s.metrics.ObserveDecision(decision.Outcome, watch.Elapsed())

	logrus.WithFields(logrus.Fields{
		"request_id": requestIDFrom(c),
		"source":     source,
		"clauses":    len(req.Clauses),
		"decision":   decision.Outcome,
	}).Info("claim processed")

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	if err := claims.EncodeResponse(c.Writer, claims.NewResponse(decision)); err != nil {
		logrus.WithError(err).Warn("write process response")
	}
}

func (s *Server) loadSample() error {
	if s.samplePath == "" {
		return errors.New("sample policy path not configured")
	}
	if _, err := os.Stat(s.samplePath); err != nil {
		return err
	}
	if _, err := s.policies.LoadFromFile(policy.SampleDocID, s.samplePath); err != nil {
		return err
	}
	s.metrics.IncrementPolicyLoad(policy.SampleDocID)
	return nil
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
