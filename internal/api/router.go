package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/storage"
)

type Server struct {
	lister    storage.Lister
	indexPath string
	log       *zap.Logger
}

// NewServer indexPath 为流水线生成的 index.html
func NewServer(lister storage.Lister, indexPath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{lister: lister, indexPath: indexPath, log: log}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/", s.index)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/feedback", s.listFeedback)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	if _, err := os.Stat(s.indexPath); errors.Is(err, fs.ErrNotExist) {
		c.String(http.StatusNotFound, "no digest generated yet")
		return
	}
	c.File(s.indexPath)
}

func (s *Server) listFeedback(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	q := storage.Query{
		Source:   c.Query("source"),
		Product:  c.Query("product"),
		Category: c.Query("category"),
		Limit:    limit,
	}

	items, err := s.lister.ListFeedback(c.Request.Context(), q)
	if err != nil {
		s.log.Error("list feedback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}
