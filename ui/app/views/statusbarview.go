package views

import (
	"context"
	"errors"
	"time"
	"unicode"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/ui/theme"
)

const (
	statusPromptPage   viewName = "prompt"
	statusMessagesPage viewName = "messages"
)

// messageTimeout is how long a message is shown before the
// status bar returns to the last persistent message.
const messageTimeout = 3 * time.Second

// statusBarView holds the status bar, which shows messages
// and asks yes/no questions.
type statusBarView struct {
	// Help is an area to display help keybindings.
	Help *tview.TextView

	messages *tview.TextView
	prompt   *tview.InputField

	queue  chan statusMessage
	cancel context.CancelFunc

	*Views

	*tview.Pages
}

// statusMessage is a message queued for display.
type statusMessage struct {
	text    string
	persist bool
}

// Initialize initializes the status bar.
func (s *statusBarView) Initialize() error {
	s.Pages = tview.NewPages()
	s.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.prompt = tview.NewInputField()
	s.prompt.SetLabelColor(theme.GetColor(theme.ThemeText))
	s.prompt.SetFieldTextColor(theme.GetColor(theme.ThemeText))
	s.prompt.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))
	s.prompt.SetFieldBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.messages = tview.NewTextView()
	s.messages.SetDynamicColors(true)
	s.messages.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.Help = tview.NewTextView()
	s.Help.SetDynamicColors(true)
	s.Help.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.AddPage(statusPromptPage.String(), s.prompt, true, false)
	s.AddPage(statusMessagesPage.String(), s.messages, true, true)

	ctx, cancel := context.WithCancel(context.Background())
	s.queue, s.cancel = make(chan statusMessage, 10), cancel

	go s.showMessages(ctx)

	return nil
}

// SetRootView sets the root view of the status bar.
func (s *statusBarView) SetRootView(root *Views) {
	s.Views = root
}

// Release stops displaying messages.
func (s *statusBarView) Release() {
	if s.cancel != nil {
		s.cancel()
	}
}

// ask shows the question in the status bar, and returns the character typed
// in answer. Any other key is returned as zero. It blocks until a key is pressed,
// so it must not be called from the drawing loop.
func (s *statusBarView) ask(question string) rune {
	answer := make(chan rune, 1)

	s.app.InstantDraw(func() {
		s.prompt.SetText("")
		s.prompt.SetLabel("[::b]" + question + " ")
		s.prompt.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			var r rune
			if event.Key() == tcell.KeyRune {
				r = event.Rune()
			}

			select {
			case answer <- r:
			default:
			}

			return nil
		})

		s.SwitchToPage(statusPromptPage.String())
		s.app.FocusPrimitive(s.prompt)
	})

	r := <-answer

	s.app.InstantDraw(func() {
		s.SwitchToPage(statusMessagesPage.String())
		s.app.FocusPrimitive(s.devices.focused())
	})

	return r
}

// promptCapabilities asks for each capability in turn.
// Only a "y" answer grants the capability.
func (s *statusBarView) promptCapabilities(capabilities []discovery.Capability) discovery.Grants {
	grants := make(discovery.Grants, len(capabilities))

	for _, capability := range capabilities {
		grants[capability] = unicode.ToLower(s.ask("Allow "+capability.String()+" (y/n)?")) == 'y'
	}

	return grants
}

// InfoMessage shows an informational message. A persistent message
// stays until another message replaces it.
func (s *statusBarView) InfoMessage(text string, persist bool) {
	s.send(statusMessage{theme.ColorWrap(theme.ThemeStatusInfo, text), persist})
}

// ErrorMessage shows an error.
func (s *statusBarView) ErrorMessage(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	s.send(statusMessage{theme.ColorWrap(theme.ThemeStatusError, "Error: "+err.Error()), false})
}

// send queues a message, dropping it if the queue is full.
func (s *statusBarView) send(msg statusMessage) {
	if s.queue == nil {
		return
	}

	select {
	case s.queue <- msg:
	default:
	}
}

// showMessages displays queued messages until ctx is done. Each message
// is shown for messageTimeout, after which the last persistent message
// is shown again.
func (s *statusBarView) showMessages(ctx context.Context) {
	var persistent string

	expire := time.NewTimer(messageTimeout)
	defer expire.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-s.queue:
			persistent = ""
			if msg.persist {
				persistent = msg.text
			}

			s.setMessage(msg.text)
			expire.Reset(messageTimeout)

		case <-expire.C:
			s.setMessage(persistent)
		}
	}
}

// setMessage replaces the displayed message.
func (s *statusBarView) setMessage(text string) {
	s.app.InstantDraw(func() {
		s.messages.SetText(text)
	})
}
