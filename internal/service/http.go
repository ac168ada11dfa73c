package service

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/johbar/docx-field-service/pkg/ooxmlzip"
	sloggin "github.com/samber/slog-gin"
)

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip  = "application/zip"
)

// Router returns the HTTP handlers of s, with access logging to logger.
func (s *Service) Router(logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = s.log
	}
	router := gin.New()
	router.Use(sloggin.New(logger), gin.Recovery())
	router.GET("/fields", s.ListFields)
	router.GET("/value", s.GetValue)
	router.GET("/report", s.GetReport)
	router.POST("/", s.PostReport)
	router.GET("/debug/vars", expvar.Handler())
	return router
}

// ListFields responds with the field table.
func (s *Service) ListFields(c *gin.Context) {
	c.JSON(http.StatusOK, fields.Descriptors())
}

// GetValue responds with a single field of a file.
func (s *Service) GetValue(c *gin.Context) {
	var p ValueParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fv, err := s.Value(p)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	if fv.Kind == fields.KindFileError.String() {
		c.JSON(http.StatusUnprocessableEntity, fv)
		return
	}
	c.JSON(http.StatusOK, fv)
}

// GetReport responds with all fields of a file.
func (s *Service) GetReport(c *gin.Context) {
	var p ReportParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.NoCache = p.NoCache || c.Query("nocache") != ""
	rep, err := s.Report(p)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// PostReport responds with all fields of the package sent as request body.
func (s *Service) PostReport(c *gin.Context) {
	var p UploadParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body := io.Reader(c.Request.Body)
	if limit := s.conf.MaxUploadSizeBytes; limit > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(limit))
	}
	data, err := io.ReadAll(body)
	if err != nil {
		s.log.Error("Error reading request body", "err", err)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	mt := mimetype.Detect(data)
	if !mt.Is(mimeDocx) && !mt.Is(mimeZip) {
		s.log.Info("Rejected upload", "mimetype", mt.String())
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "not a word-processing package: " + mt.String()})
		return
	}
	rep, err := s.ReportFromBytes("<POST req>", data, p)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSuchField), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fields.ErrUnsupportedExtension):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ooxmlzip.ErrNotAnArchive):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
