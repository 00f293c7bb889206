package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/ocrweb/pkg/engine"
	"github.com/lehigh-university-libraries/ocrweb/pkg/imageproc"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

const engineUnavailableMessage = "OCR engine not available. Please check server configuration."

// HealthResponse is the /health body: the engine Status plus an overall verdict.
type HealthResponse struct {
	Health string `json:"status"`
	engine.Status
}

// DiagnosticsResponse is the /diagnostics body.
type DiagnosticsResponse struct {
	Health      string        `json:"status"`
	State       string        `json:"state"`
	Engine      engine.Status `json:"engine"`
	Recognizer  string        `json:"recognizer"`
	Version     string        `json:"recognizer_version,omitempty"`
	Recognizers []string      `json:"recognizers"`
	Config      string        `json:"recognition_config"`
	Fallback    string        `json:"fallback_config"`
	Recognition ocr.Config    `json:"recognition"`
	Candidates  []string      `json:"search_paths"`
	MaxUpload   int64         `json:"max_upload_bytes"`
	MaxPixels   int64         `json:"max_image_pixels"`
}

type engineUnavailableResponse struct {
	Error       string        `json:"error"`
	Diagnostics engine.Status `json:"diagnostics"`
}

func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := staticFiles.ReadFile(name)
		if err != nil {
			respondWithError(w, "Page not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadFailed(w, "too_large", "File too large (limit "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes)", http.StatusRequestEntityTooLarge)
			return
		}
		s.uploadFailed(w, "no_file", "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.uploadFailed(w, "read_error", "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		s.uploadFailed(w, "empty_file", "Empty file", http.StatusBadRequest)
		return
	}

	status := s.monitor.Current()
	if !status.Working {
		s.Metrics.uploadsTotal.WithLabelValues("engine_unavailable").Inc()
		respondJSON(w, http.StatusServiceUnavailable, engineUnavailableResponse{
			Error:       engineUnavailableMessage,
			Diagnostics: status,
		})
		return
	}

	img, info, err := imageproc.Normalize(data, s.maxImagePixels)
	if errors.Is(err, imageproc.ErrImageTooLarge) {
		slog.Warn("Rejected oversized image", "filename", header.Filename, "width", info.Width, "height", info.Height)
		s.uploadFailed(w, "image_too_large", "Image too large: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		slog.Warn("Failed to decode upload", "filename", header.Filename, "size", len(data), "err", err)
		s.uploadFailed(w, "decode_error", "Invalid image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := ocr.RecognizeWithFallback(r.Context(), s.recognizer, img, s.recognition)
	if err != nil {
		slog.Error("OCR Error", "filename", header.Filename, "engine", s.recognizer.Name(), "err", err)
		switch {
		case errors.Is(err, ocr.ErrRecognitionTimeout):
			s.uploadFailed(w, "timeout", "OCR processing timed out: "+err.Error(), http.StatusGatewayTimeout)
		default:
			s.uploadFailed(w, "recognition_error", "OCR processing failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.Metrics.uploadsTotal.WithLabelValues("success").Inc()
	s.Metrics.recognitionDuration.WithLabelValues(s.recognizer.Name()).Observe(result.Duration.Seconds())
	if result.Fallback {
		s.Metrics.fallbacksTotal.Inc()
	}
	slog.Info("Recognized upload",
		"filename", header.Filename,
		"format", info.Format,
		"color_model", info.ColorModel,
		"size", strconv.Itoa(info.Width)+"x"+strconv.Itoa(info.Height),
		"fallback", result.Fallback,
		"chars", len(result.Text),
		"duration", result.Duration)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) uploadFailed(w http.ResponseWriter, outcome, message string, statusCode int) {
	s.Metrics.uploadsTotal.WithLabelValues(outcome).Inc()
	respondWithError(w, message, statusCode)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var status engine.Status
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		status = s.refresh(r)
	} else {
		status = s.monitor.Current()
	}

	code := http.StatusOK
	if !status.Working {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, HealthResponse{Health: healthLabel(status), Status: status})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.diagnostics(s.monitor.Current()))
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.diagnostics(s.refresh(r)))
}

func (s *Server) refresh(r *http.Request) engine.Status {
	status := s.monitor.Refresh(r.Context())
	s.Metrics.probesTotal.WithLabelValues(healthLabel(status)).Inc()
	return status
}

func (s *Server) diagnostics(status engine.Status) DiagnosticsResponse {
	return DiagnosticsResponse{
		Health:      healthLabel(status),
		State:       s.monitor.State().String(),
		Engine:      status,
		Recognizer:  s.recognizer.Name(),
		Version:     ocr.Version(s.recognizer),
		Recognizers: s.registry.List(),
		Config:      s.recognition.String(),
		Fallback:    s.recognition.Fallback().String(),
		Recognition: s.recognition,
		Candidates:  s.monitor.Candidates(),
		MaxUpload:   s.maxUploadBytes,
		MaxPixels:   s.maxImagePixels,
	}
}

func healthLabel(status engine.Status) string {
	if status.Working {
		return "healthy"
	}
	return "unhealthy"
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "err", err)
	}
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
