// internal/httpserver/server.go
//
// HTTP server wiring for the grid game backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words", POST /validate.
//   - Game endpoints: POST /game/new, then per-game routes guarded by the
//     bearer token returned from /game/new.
//   - Live play over WebSocket: GET /game/{id}/ws (ws.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - The secret never leaves the server while a round is playing;
//     responses carry game.View, not game.Session.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/grid-server/internal/game"
	"github.com/robalobadob/wordle/apps/grid-server/internal/store"
	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

const (
	maxBodyBytes  = 4 << 10 // request bodies are a few short words
	maxWordLength = 32      // /validate letters per word
)

// WordStats reports loaded word list sizes for /debug/words.
type WordStats interface {
	Stats() (answers int, allowed int)
}

// Options configures a Server.
type Options struct {
	JWTSecret        []byte
	TokenTTL         time.Duration
	ClientOrigin     string
	RequestTimeout   time.Duration
	AllowFixedAnswer bool
	Words            WordStats
}

// Server bundles router, session store and game engine.
type Server struct {
	r      *chi.Mux
	store  store.Store
	engine *game.Engine
	tokens *tokens
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, eng *game.Engine, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		engine: eng,
		tokens: newTokens(opts.JWTSecret, opts.TokenTTL),
		opts:   opts,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)               // add X-Request-ID
	s.r.Use(chimw.RealIP)                  // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))   // per-request logger in context
	s.r.Use(requestIDLogger)               // tag it with the request id
	s.r.Use(hlog.AccessHandler(accessLog)) // one line per request
	s.r.Use(chimw.Recoverer)               // recover from panics
	s.r.Use(s.cors)                        // credentials-friendly CORS

	// bounded handler time + default JSON responses; the WebSocket route opts out
	bounded := func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Use(limitBody(maxBodyBytes))
		r.Use(jsonContentType)
	}

	s.r.Group(func(r chi.Router) {
		bounded(r)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"grid-server","endpoints":["/health","POST /validate","POST /game/new","/game/{id}/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", s.handleWordStats)

		// Stateless validator
		r.Post("/validate", s.handleValidate)

		r.Post("/game/new", s.handleNewGame)
	})

	// Per-game routes require the token issued by /game/new.
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireGameToken)
		r.Get("/ws", s.handleWS)

		r.Group(func(r chi.Router) {
			bounded(r)
			r.Get("/", s.handleGetGame)
			r.Post("/letter", s.handleEvent(game.EventTypeLetter))
			r.Post("/backspace", s.handleEvent(game.EventBackspace))
			r.Post("/submit", s.handleEvent(game.EventSubmit))
			r.Post("/guess", s.handleEvent(game.EventGuess))
			r.Post("/restart", s.handleEvent(game.EventRestart))
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found", Message: r.URL.Path})
	})

	return s
}

// Router exposes the router as an http.Handler (also used by tests).
func (s *Server) Router() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ helpers ------------------------------------

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeOptional decodes a JSON body into v; an empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeDecodeError reports a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorRes{Error: "body_too_large"})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, validity.ErrInvalidLength):
		return http.StatusUnprocessableEntity, "invalid_length"
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, game.ErrRowFull):
		return http.StatusConflict, "row_full"
	case errors.Is(err, game.ErrIncompleteGuess):
		return http.StatusBadRequest, "incomplete_guess"
	case errors.Is(err, game.ErrNotInWordList):
		return http.StatusBadRequest, "not_in_word_list"
	case errors.Is(err, game.ErrInvalidLetter):
		return http.StatusBadRequest, "invalid_letter"
	case errors.Is(err, game.ErrUnknownEvent):
		return http.StatusBadRequest, "unknown_event"
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError writes err as JSON; unexpected errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorRes{Error: code})
		return
	}
	writeJSON(w, status, errorRes{Error: code, Message: err.Error()})
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	if s.opts.Words == nil {
		writeJSON(w, http.StatusOK, map[string]int{"answers": 0, "allowed": 0})
		return
	}
	a, g := s.opts.Words.Stats()
	writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
}

// validateReq/Res payloads for POST /validate.
type validateReq struct {
	Secret string `json:"secret"`
	Guess  string `json:"guess"`
	Rule   string `json:"rule"` // "" | "whole-guess" | "two-pass"
}
type validateRes struct {
	Classes []validity.Class `json:"classes"`
	Correct bool             `json:"correct"`
	Rule    string           `json:"rule"`
}

// handleValidate runs the validator on an arbitrary secret/guess pair.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if n := max(utf8.RuneCountInString(req.Secret), utf8.RuneCountInString(req.Guess)); n > maxWordLength {
		writeError(w, r, fmt.Errorf("%w: %d letters, limit %d", validity.ErrInvalidLength, n, maxWordLength))
		return
	}
	rule, err := validity.ParseRule(req.Rule)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "unknown_rule", Message: err.Error()})
		return
	}
	classes, err := rule.Check(req.Secret, req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validateRes{Classes: classes, Correct: validity.AllCorrect(classes), Rule: rule.String()})
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode   game.Mode `json:"mode"`   // "random" (default) | "daily"
	Answer string    `json:"answer"` // fixed answer, only with AllowFixedAnswer
}
type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Game      game.View `json:"game"`
}

// handleNewGame creates and stores a session and returns its bearer token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = game.ModeRandom
	}
	if req.Mode == game.ModeFixed && req.Answer == "" {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "answer_required"})
		return
	}
	if req.Answer != "" && !s.opts.AllowFixedAnswer {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "fixed_answer_disabled"})
		return
	}

	g, err := s.engine.Start(req.Mode, strings.TrimSpace(req.Answer))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "save_failed"})
		return
	}
	tok, exp, err := s.tokens.issue(g.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "sign_failed"})
		return
	}

	hlog.FromRequest(r).Info().Str("gameId", g.ID).Str("mode", string(g.Mode)).Int("length", g.Cols()).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Token: tok, ExpiresAt: exp, Game: g.Snapshot()})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// eventRes is returned by every per-game POST.
type eventRes struct {
	Classes []validity.Class `json:"classes,omitempty"` // set when a guess was scored
	Game    game.View        `json:"game"`
}

// handleEvent applies one event of the given kind. The body, if any, is a
// game.Event; its type field is ignored in favor of the route.
func (s *Server) handleEvent(kind game.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev game.Event
		if err := decodeOptional(r, &ev); err != nil {
			writeDecodeError(w, err)
			return
		}
		ev.Kind = kind

		res, err := s.apply(r.Context(), chi.URLParam(r, "id"), ev)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// apply runs ev against the stored session. Shared by HTTP and WebSocket.
func (s *Server) apply(ctx context.Context, id string, ev game.Event) (eventRes, error) {
	var classes []validity.Class
	g, err := s.store.Update(ctx, id, func(g *game.Session) error {
		var err error
		classes, err = s.engine.Apply(g, ev)
		return err
	})
	if err != nil {
		return eventRes{}, err
	}
	if classes != nil && g.State.Over() {
		zerolog.Ctx(ctx).Info().
			Str("gameId", g.ID).
			Str("state", string(g.State)).
			Int("tries", len(g.Guesses())).
			Msg("round finished")
	}
	return eventRes{Classes: classes, Game: g.Snapshot()}, nil
}
