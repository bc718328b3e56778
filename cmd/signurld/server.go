package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dshimy/gcstore/errs"
	"github.com/dshimy/gcstore/internal/logger"
	"github.com/dshimy/gcstore/storage/signer"
)

// signRequest is the JSON body accepted by POST /v1/sign.
type signRequest struct {
	Bucket      string              `json:"bucket"`
	Object      string              `json:"object"`
	Method      string              `json:"method,omitempty"`
	Expires     int64               `json:"expires,omitempty"` // seconds from now
	ContentMD5  string              `json:"content_md5,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	Headers     map[string][]string `json:"headers,omitempty"`
	Query       map[string]string   `json:"query,omitempty"`
}

// signResponse carries the issued URL back to the caller.
type signResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

type errorResponse struct {
	Error string `json:"error"`
}

// server holds the handler dependencies.
type server struct {
	signer    *signer.URLSigner
	maxExpiry time.Duration
	log       *logger.Logger
}

func newServer(s *signer.URLSigner, maxExpiry time.Duration, log *logger.Logger) *server {
	return &server{signer: s, maxExpiry: maxExpiry, log: log}
}

// routes assembles the chi router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/sign", s.handleSign)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSign(w http.ResponseWriter, r *http.Request) {
	var body signRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}

	expires := time.Duration(body.Expires) * time.Second
	if expires == 0 {
		expires = signer.DefaultExpiry
	}
	if s.maxExpiry > 0 && expires > s.maxExpiry {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "requested expiry exceeds the configured maximum"})
		return
	}

	var query url.Values
	if len(body.Query) > 0 {
		query = make(url.Values, len(body.Query))
		for k, v := range body.Query {
			query.Set(k, v)
		}
	}

	signedURL, err := s.signer.SignedURL(&signer.SignRequest{
		Bucket:      body.Bucket,
		Object:      body.Object,
		Method:      body.Method,
		Expires:     expires,
		ContentMD5:  body.ContentMD5,
		ContentType: body.ContentType,
		Headers:     body.Headers,
		Query:       query,
	})
	if err != nil {
		s.log.ErrorWith("signing failed", err, map[string]interface{}{
			"bucket": body.Bucket,
			"object": body.Object,
		})
		switch {
		case errs.IsInvalidInput(err):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errs.IsSigningUnavailable(err):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "signing credential unavailable"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, signResponse{
		URL:       signedURL,
		ExpiresIn: int64(expires / time.Second),
	})
}

// requestLogger logs method, path, status and duration for every request.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
