package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Farman-RT/QuickSaver/internal/delivery"
	"github.com/Farman-RT/QuickSaver/internal/fetch"
	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/services/ytdlp"
)

// Client-facing messages for each failure reason.
const (
	msgInvalidURL      = "Invalid URL"
	msgTimeout         = "Download timed out"
	msgProcessFailure  = "Server process error"
	msgArtifactMissing = "Failed to download. Try a different link."
	msgNotFound        = "File not found or expired"
)

func (s *Server) handleSubmit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBody)
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Unreadable bodies are treated as empty and fail URL validation below.
		req = SubmitRequest{}
	}

	result, err := s.fetcher.Fetch(c.Request.Context(), fetch.Request{
		URL:    req.URL,
		Format: ytdlp.ParseFormat(req.Format),
	})
	if err != nil {
		status, message := submitFailure(fetch.Reason(err))
		logging.WithContext(c.Request.Context(), s.logger).Debug("submission failed",
			logging.Int("status", status),
			logging.String("reason", string(fetch.Reason(err))),
			logging.Error(err),
		)
		c.JSON(status, SubmitResponse{OK: false, Error: message})
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{OK: true, Token: result.Token})
}

func submitFailure(reason fetch.FailureReason) (int, string) {
	switch reason {
	case fetch.InvalidURL:
		return http.StatusBadRequest, msgInvalidURL
	case fetch.Timeout:
		return http.StatusGatewayTimeout, msgTimeout
	case fetch.ArtifactMissing:
		return http.StatusInternalServerError, msgArtifactMissing
	default:
		return http.StatusInternalServerError, msgProcessFailure
	}
}

func (s *Server) handleRedeem(c *gin.Context) {
	token := strings.TrimPrefix(c.Param("token"), "/")
	dl, err := s.delivery.Open(token)
	if err != nil {
		if !errors.Is(err, delivery.ErrNotFound) {
			logging.WithContext(c.Request.Context(), s.logger).Warn("redeem failed", logging.Error(err))
		}
		c.String(http.StatusNotFound, msgNotFound)
		return
	}
	defer dl.Close()

	header := c.Writer.Header()
	header.Set("Content-Disposition", `attachment; filename="`+dl.Name+`"`)
	header.Set("Content-Type", dl.ContentType)
	header.Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	written, err := dl.WriteTo(c.Writer)
	logger := logging.WithContext(c.Request.Context(), s.logger)
	if err != nil {
		logger.Info("stream interrupted",
			logging.String(logging.FieldToken, dl.Name),
			logging.Int64("bytes_sent", written),
			logging.Int64("bytes_total", dl.Size),
			logging.Error(err),
		)
		return
	}
	logger.Info("artifact delivered",
		logging.String(logging.FieldToken, dl.Name),
		logging.Int64("bytes", written),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	health := Health{Status: "ok"}
	if s.health != nil {
		health = s.health.Health(c.Request.Context())
		if health.Status == "" {
			health.Status = "ok"
		}
	}
	c.JSON(http.StatusOK, health)
}

func (s *Server) handleRequests(c *gin.Context) {
	limit := s.adminLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	ctx := c.Request.Context()
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "ledger read failed", "ledger_read_failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "ledger unavailable"})
		return
	}
	total, err := s.history.Count(ctx)
	if err != nil {
		total = int64(len(entries))
	}
	out := make([]RequestEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, RequestEntry{
			ID:        entry.ID,
			URL:       entry.URL,
			Timestamp: entry.Timestamp,
			Time:      entry.Time(),
		})
	}
	c.JSON(http.StatusOK, RequestsResponse{Total: total, Limit: limit, Entries: out})
}
