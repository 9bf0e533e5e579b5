package health

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/settlex-hq/settlex-settler/pkg/chainclient"
	"github.com/settlex-hq/settlex-settler/pkg/circuitbreaker"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// Server represents a health check HTTP server
type Server struct {
	port          string
	chain         *chainclient.Client
	breaker       *circuitbreaker.CircuitBreaker
	registry      *tokens.Registry
	metricsAPIKey string
}

// NewServer creates a new health check server
func NewServer(port string, chain *chainclient.Client, breaker *circuitbreaker.CircuitBreaker, registry *tokens.Registry) *Server {
	return &Server{
		port:          port,
		chain:         chain,
		breaker:       breaker,
		registry:      registry,
		metricsAPIKey: os.Getenv("METRICS_API_KEY"),
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server
func (s *Server) Start() {
	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness check
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if s.chain == nil || s.chain.Client == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Chain client not connected"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	// Chain status endpoint
	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		circuitStatus := "closed"
		if s.breaker != nil && s.breaker.IsOpen() {
			circuitStatus = "open"
		}

		status := map[string]interface{}{
			"rpc_url":         s.chain.RPCURL,
			"payroll_address": s.chain.PayrollAddress.Hex(),
			"employer":        s.chain.EmployerAddress().Hex(),
			"connected":       s.chain.Client != nil,
			"circuit":         circuitStatus,
		}

		if s.chain.Client != nil {
			if blockNumber, err := s.chain.GetLatestBlockNumber(r.Context()); err == nil {
				status["latest_block"] = blockNumber
			}

			// Employer balances for every registered token
			balances := make(map[string]interface{})
			for _, token := range s.registry.List() {
				if balance, err := s.chain.TokenBalance(r.Context(), token.Address); err == nil {
					balances[token.Symbol] = tokens.FormatAmount(balance)
				}
			}
			if len(balances) > 0 {
				status["token_balances"] = balances
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding status JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	http.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if s.breaker == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("No circuit breaker configured"))
			return
		}
		s.breaker.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Circuit breaker reset"))
	})

	// Expose Prometheus metrics with API key authentication
	http.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	log.Printf("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, nil); err != nil {
		log.Printf("Health server error: %v", err)
	}
}
