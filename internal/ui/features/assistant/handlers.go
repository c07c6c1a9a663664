package assistant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/ui/components"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	"github.com/leapstack-labs/ageview/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the assistant feature.
type Handlers struct {
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{notifier: deps.Notifier, logger: logger}
}

// TranscriptUpdates is the long-lived SSE endpoint of the chat panel. It
// sends the transcript once, then again whenever the session's panel changes.
func (h *Handlers) TranscriptUpdates(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}

	// Subscribe before the first send so no change is missed.
	updates := h.notifier.Subscribe(sess.ID)
	defer h.notifier.Unsubscribe(sess.ID, updates)

	panel := sess.Chat
	conv := panel.Transcript()
	if len(conv) == 0 {
		conv = panel.Open(r.Context())
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.Transcript(conv, panel.Busy())); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(components.Transcript(panel.Transcript(), panel.Busy())); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Submit sends one chat turn. The transcript stream shows the user turn at
// once and the reply, or the fallback message, when it arrives.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}

	var signals ChatSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if sess.Chat.Busy() {
		_ = sse.PatchElementTempl(components.ChatNotice(BusyNotice))
		return
	}
	_ = sse.MarshalAndPatchSignals(ChatSignals{})

	_, err := sess.Chat.Submit(r.Context(), signals.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyQuery):
		return
	case errors.Is(err, chat.ErrBusy):
		_ = sse.PatchElementTempl(components.ChatNotice(BusyNotice))
		return
	case err != nil:
		h.logger.Warn("chat turn failed", "session", sess.ID, "error", err)
	}

	_ = sse.PatchElementTempl(components.ChatNotice(""))
}

// Clear resets the session's transcript to the cleared greeting.
func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}
	if sess.Chat.Busy() {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(components.ChatNotice(BusyNotice))
		return
	}

	conv := sess.Chat.Clear(r.Context())
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElementTempl(components.Transcript(conv, false))
}
