package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/services"
	"github.com/derailed/tview"
)

const draftHint = "Select a message to generate a response"

// renderDraft shows the selected message and its reply draft
func (a *App) renderDraft() {
	tv, ok := a.views["draft"].(*tview.TextView)
	if !ok {
		return
	}
	s := a.state()
	m := s.SelectedMessage
	if m == nil {
		tv.SetText(colorTag(a.palette.Sample) + draftHint + "[-]")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sReply to %s[-]\n", colorTag(a.palette.Title), tview.Escape(m.Sender))
	fmt.Fprintf(&b, "%s%s[-]\n\n", colorTag(a.palette.Sample), m.Timestamp.Time(time.Now()).Local().Format("Mon, 02 Jan 2006 15:04"))
	b.WriteString(tview.Escape(m.Content))
	b.WriteString("\n\n────────\n\n")

	key := m.Key()
	switch {
	case a.drafts == nil:
		b.WriteString(colorTag(a.palette.Sample) + "AI replies are disabled (llm.enabled is false)[-]")
	case a.draftInFlight[key]:
		b.WriteString(colorTag(a.palette.Info) + "🧠 Generating reply…[-]")
	case a.draftText[key] != "":
		b.WriteString(tview.Escape(a.draftText[key]))
		fmt.Fprintf(&b, "\n\n%sPress %s to regenerate[-]", colorTag(a.palette.Sample), a.Keys.Regenerate)
	default:
		fmt.Fprintf(&b, "%sPress %s or Enter to generate a reply[-]", colorTag(a.palette.Sample), a.Keys.GenerateReply)
	}
	tv.SetText(b.String())
	tv.ScrollToBeginning()
}

// generateDraft asks the draft service for a reply to the selected message.
// force skips the draft cache.
func (a *App) generateDraft(force bool) {
	s := a.state()
	if s.SelectedMessage == nil || s.Selected == nil {
		a.errorHandler.ShowWarning(a.ctx, "Select a message first")
		return
	}
	if a.drafts == nil {
		a.errorHandler.ShowWarning(a.ctx, "AI replies are disabled")
		return
	}
	msg := *s.SelectedMessage
	property := *s.Selected
	property.Messages = nil
	key := msg.Key()
	if a.draftInFlight[key] {
		return
	}
	a.draftInFlight[key] = true
	a.renderDraft()
	if a.logger != nil {
		a.logger.Printf("generating reply for %s in %s (force=%v)", key, property.ID, force)
	}

	opts := services.DraftOptions{
		Tone:            strings.TrimSpace(a.Config.LLM.Tone),
		MaxLength:       a.Config.LLM.MaxLength,
		UseCache:        a.Config.LLM.CacheEnabled,
		ForceRegenerate: force,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		res, err := a.drafts.GenerateReply(a.ctx, property, msg, opts)
		a.dispatch(func() {
			delete(a.draftInFlight, key)
			if err != nil {
				a.errorHandler.HandleError(a.ctx, err, draftErrorMessage(err))
				return
			}
			a.draftText[key] = res.Draft
			if res.FromCache {
				a.errorHandler.ShowInfo(a.ctx, "Loaded cached reply")
				return
			}
			a.errorHandler.ShowSuccess(a.ctx, fmt.Sprintf("Reply ready in %s", res.Duration.Round(100*time.Millisecond)))
		})
	}()
}

func draftErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrAIServiceDown):
		return "AI service unavailable"
	case errors.Is(err, services.ErrEmptyDraft):
		return "AI returned an empty reply"
	default:
		return "AI reply failed"
	}
}
