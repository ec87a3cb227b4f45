// Package api serves read-only JSON views of the ledger over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitter-dev/splitter/internal/calc"
	"github.com/splitter-dev/splitter/internal/ledger"
)

// Server exposes a ledger over HTTP. Handlers run concurrently; they share
// the ledger under a read lock and reload takes the write lock.
type Server struct {
	mu      sync.RWMutex
	ledger  *ledger.Ledger
	metrics *metrics
	router  chi.Router
}

// NewServer builds the router for l.
func NewServer(l *ledger.Ledger) *Server {
	s := &Server{ledger: l}
	s.metrics = newMetrics(s)
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.listUsers)
		r.Get("/users/{name}/summary", s.userSummary)
		r.Get("/tags", s.listTags)
		r.Get("/expenses", s.listExpenses)
		r.Get("/expenses/{id}", s.getExpense)
		r.Get("/expenses/{id}/breakdown/{name}", s.expenseBreakdown)
		r.Get("/costs", s.costs)
		r.Get("/settlements", s.settlements)
		r.Post("/reload", s.reload)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, "no such route")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// read runs fn under the read lock.
func (s *Server) read(fn func(l *ledger.Ledger)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.ledger)
}

func lookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound), errors.Is(err, ledger.ErrExpenseNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, ledger.ErrAmbiguousID):
		BadRequest(w, err.Error())
	default:
		InternalError(w, err.Error())
	}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	var out []userResponse
	s.read(func(l *ledger.Ledger) {
		for _, u := range l.Users() {
			out = append(out, userResponse{Name: u.Name, Tags: u.Tags})
		}
	})
	if out == nil {
		out = []userResponse{}
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	var out []tagResponse
	s.read(func(l *ledger.Ledger) {
		reg := l.Tags()
		for _, o := range reg.All() {
			out = append(out, tagResponse{
				Name:     o.Name,
				ForUsers: o.ForUsers,
				ForItems: o.ForItems,
				General:  o.Name == reg.General(),
			})
		}
	})
	JSON(w, http.StatusOK, out)
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	out := []expenseResponse{}
	s.read(func(l *ledger.Ledger) {
		for _, e := range l.Expenses() {
			out = append(out, toExpenseResponse(e))
		}
	})
	JSON(w, http.StatusOK, out)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	s.read(func(l *ledger.Ledger) {
		e, err := l.Expense(chi.URLParam(r, "id"))
		if err != nil {
			lookupError(w, err)
			return
		}
		JSON(w, http.StatusOK, toExpenseResponse(e))
	})
}

func (s *Server) expenseBreakdown(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "name")
	s.read(func(l *ledger.Ledger) {
		b, err := l.Breakdown(chi.URLParam(r, "id"), user)
		if err != nil {
			lookupError(w, err)
			return
		}
		JSON(w, http.StatusOK, breakdownResponse{
			ID:    b.ID,
			Name:  b.Name,
			Type:  b.Type,
			User:  user,
			Items: toBreakdownItems(b.Items),
			Total: money(b.Total),
		})
	})
}

func (s *Server) userSummary(w http.ResponseWriter, r *http.Request) {
	s.read(func(l *ledger.Ledger) {
		sum, err := l.Summary(chi.URLParam(r, "name"))
		if err != nil {
			lookupError(w, err)
			return
		}
		JSON(w, http.StatusOK, toSummary(sum))
	})
}

func (s *Server) costs(w http.ResponseWriter, r *http.Request) {
	var out costsResponse
	s.read(func(l *ledger.Ledger) {
		costs := l.Costs()
		paid := l.PaidByUser()
		out = costsResponse{
			Costs:      moneyMap(costs),
			Paid:       moneyMap(paid),
			Balances:   moneyMap(calc.Balances(costs, paid)),
			Total:      money(calc.Sum(costs)),
			GrandTotal: money(l.GrandTotal()),
		}
	})
	JSON(w, http.StatusOK, out)
}

func (s *Server) settlements(w http.ResponseWriter, r *http.Request) {
	var out []transferResponse
	s.read(func(l *ledger.Ledger) {
		out = toTransfers(l.Settlements())
	})
	JSON(w, http.StatusOK, out)
}

// reload re-reads the store so edits made by the CLI while the server runs
// become visible.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Reload(r.Context()); err != nil {
		InternalError(w, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]int{
		"users":    len(s.ledger.Users()),
		"expenses": len(s.ledger.Expenses()),
	})
}
