package common

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/ui/notifier"
	"github.com/leapstack-labs/ageview/pkg/core"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "ageview"
	idKey      = "id"
)

// RepositoryConfig configures a Repository.
type RepositoryConfig struct {
	Client core.QueryClient
	// Conversations returns the transcript store of a session.
	Conversations func(sessionID string) chat.Store
	Notifier      *notifier.Notifier
	PageSize      int
	CachePages    int
	// TTL is how long an idle session keeps its state.
	TTL    time.Duration
	Logger *slog.Logger
}

// Repository holds the state of every live browser session. Idle sessions
// expire after the configured TTL; their transcripts stay in the store.
type Repository struct {
	cfg   RepositoryConfig
	items *cache.Cache
	mu    sync.Mutex
}

// NewRepository creates an empty repository.
func NewRepository(cfg RepositoryConfig) *Repository {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Conversations == nil {
		cfg.Conversations = func(string) chat.Store { return chat.NewMemoryStore(nil) }
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notifier.New()
	}

	items := cache.New(cfg.TTL, cfg.TTL/2)
	logger := cfg.Logger
	items.OnEvicted(func(id string, _ any) {
		logger.Debug("session state expired", "session", id)
	})
	return &Repository{cfg: cfg, items: items}
}

// Get returns the state of session id, creating it on first use. Every
// access restarts the idle timer.
func (r *Repository) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.items.Get(id); ok {
		s := v.(*Session)
		r.items.SetDefault(id, s)
		return s, nil
	}

	ctrl, err := dataset.New(r.cfg.Client, dataset.Options{
		PageSize:   r.cfg.PageSize,
		CachePages: r.cfg.CachePages,
		Logger:     r.cfg.Logger.With("session", id),
	})
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	notify := r.cfg.Notifier
	s := &Session{
		ID:         id,
		Controller: ctrl,
		Chat: chat.NewPanel(r.cfg.Client, r.cfg.Conversations(id), chat.Options{
			Logger:   r.cfg.Logger.With("session", id),
			OnChange: func(core.Conversation) { notify.Broadcast(id) },
		}),
	}
	r.items.SetDefault(id, s)
	r.cfg.Logger.Debug("session state created", "session", id)
	return s, nil
}

// Len returns the number of live sessions.
func (r *Repository) Len() int { return r.items.ItemCount() }

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx by the session middleware.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// SessionMiddleware resolves the browser session from its cookie, issuing a
// new session id when the cookie is missing or unreadable.
func SessionMiddleware(store sessions.Store, repo *Repository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := store.Get(r, CookieName)
			if err != nil {
				logger.Debug("discarding unreadable session cookie", "error", err)
			}

			id, _ := cookie.Values[idKey].(string)
			if id == "" {
				id = uuid.NewString()
				cookie.Values[idKey] = id
				if err := cookie.Save(r, w); err != nil {
					http.Error(w, "failed to save session: "+err.Error(), http.StatusInternalServerError)
					return
				}
			}

			sess, err := repo.Get(id)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// MustSession returns the request's session or writes a 500 when the
// middleware did not run.
func MustSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, ok := SessionFrom(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
	}
	return s, ok
}
