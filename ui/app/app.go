package app

import (
	"time"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/atomic"

	"github.com/darkhz/bluescan/ui/app/views"
	"github.com/darkhz/bluescan/ui/config"
)

// drawDelay is how long queued draws are collected before the screen is redrawn.
const drawDelay = 50 * time.Millisecond

// Application displays a discovery session in the terminal.
type Application struct {
	views *views.Views
}

// NewApplication returns a new application displaying the provided discovery session.
func NewApplication(d views.Discovery) *Application {
	return &Application{views: views.NewViews(d)}
}

// Start starts the application, and blocks until it exits.
func (a *Application) Start(cfg *config.Config) error {
	b := &binder{
		Application: tview.NewApplication(),
		queued:      make(chan struct{}, 1),
	}

	root, err := a.views.Initialize(b, cfg)
	if err != nil {
		return err
	}
	defer a.views.Release()

	b.SetInputCapture(root.HandleKey)
	b.SetBeforeDrawFunc(b.beforeDraw)

	stop := make(chan struct{})
	defer close(stop)

	go b.redrawQueued(stop)

	return b.SetRoot(root.Layout, true).SetFocus(root.Focus).Run()
}

// binder lets the views draw through the tview application.
type binder struct {
	queued  chan struct{}
	suspend atomic.Bool

	*tview.Application
}

// QueueDraw runs drawFunc in the drawing loop, and marks the screen for a redraw.
func (b *binder) QueueDraw(drawFunc func()) {
	b.QueueUpdate(drawFunc)

	select {
	case b.queued <- struct{}{}:
	default:
	}
}

// InstantDraw runs drawFunc in the drawing loop, and redraws the screen.
func (b *binder) InstantDraw(drawFunc func()) {
	b.QueueUpdateDraw(drawFunc)
}

// FocusPrimitive focuses the primitive.
func (b *binder) FocusPrimitive(primitive tview.Primitive) {
	b.SetFocus(primitive)
}

// Focused returns the focused primitive.
func (b *binder) Focused() tview.Primitive {
	return b.GetFocus()
}

// RequestSuspend suspends the application before the next draw.
func (b *binder) RequestSuspend() {
	b.suspend.Store(true)
}

// Close stops the application.
func (b *binder) Close() {
	b.Stop()
}

// beforeDraw suspends the application if it was requested. The screen
// is always drawn afterwards.
func (b *binder) beforeDraw(screen tcell.Screen) bool {
	if b.suspend.CompareAndSwap(true, false) {
		suspendApp(screen)
	}

	return false
}

// redrawQueued redraws the screen once per drawDelay while draws are
// being queued, until stop is closed.
func (b *binder) redrawQueued(stop <-chan struct{}) {
	timer := time.NewTimer(drawDelay)
	timer.Stop()

	var pending bool

	for {
		select {
		case <-stop:
			timer.Stop()
			return

		case <-b.queued:
			if !pending {
				pending = true
				timer.Reset(drawDelay)
			}

		case <-timer.C:
			pending = false
			go b.Draw()
		}
	}
}
