package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Serves scrape and summarize over HTTP, plus stored uptime history. Intended for local dashboards and automation, not public exposure.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		chain := newChain(false)
		engine := newEngine()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/scrape", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
				return
			}

			result, err := chain.Scrape(req.Context(), body.URL)
			if err != nil {
				zap.L().Error("api scrape failed", zap.String("url", body.URL), zap.Error(err))
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "scrape failed"})
				return
			}
			writeJSON(w, http.StatusOK, result.Page)
		})

		r.Post("/v1/summarize", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
				return
			}

			result, err := chain.Scrape(req.Context(), body.URL)
			if err != nil {
				zap.L().Error("api scrape failed", zap.String("url", body.URL), zap.Error(err))
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "scrape failed"})
				return
			}

			summary, err := engine.Summarize(req.Context(), result.Page)
			if err != nil {
				zap.L().Error("api summarize failed", zap.String("url", body.URL), zap.Error(err))
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "summarize failed"})
				return
			}
			writeJSON(w, http.StatusOK, summary)
		})

		r.Get("/v1/uptime/history", func(w http.ResponseWriter, req *http.Request) {
			url := req.URL.Query().Get("url")
			if url == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url query parameter is required"})
				return
			}

			checks, err := st.ListChecks(req.Context(), url, 100)
			if err != nil {
				zap.L().Error("api history failed", zap.String("url", url), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history lookup failed"})
				return
			}
			writeJSON(w, http.StatusOK, checks)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
