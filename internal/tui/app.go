package tui

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ajramos/hostinbox/internal/config"
	"github.com/ajramos/hostinbox/internal/inbox"
	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/services"
	"github.com/derailed/tview"
)

// Deps are the collaborators behind the inbox screen. Nil Importer or Drafts
// disable the matching actions.
type Deps struct {
	Properties inbox.PropertySource
	Importer   inbox.Importer
	Drafts     services.DraftService
}

// App encapsulates the three-pane host inbox
type App struct {
	*tview.Application
	Config  *config.Config
	Keys    config.KeyBindings
	palette *config.Palette

	ctx    context.Context
	cancel context.CancelFunc
	views  map[string]tview.Primitive

	controller    *inbox.Controller
	drafts        services.DraftService
	importEnabled bool
	errorHandler  *ErrorHandler
	queue         inbox.Dispatcher

	// imports in flight
	importing atomic.Int32

	// UI state, touched only on the UI goroutine
	propertyIDs   []string
	currentFocus  string
	rendering     bool
	draftText     map[string]string // message key -> generated draft
	draftInFlight map[string]bool
	wg            sync.WaitGroup

	logger  *log.Logger
	logFile *os.File
}

// NewApp builds the screen; Run starts it
func NewApp(cfg *config.Config, deps Deps) *App {
	return newApp(cfg, deps, nil)
}

// newApp wires everything around dispatch; nil queues on the tview event loop
func newApp(cfg *config.Config, deps Deps, dispatch inbox.Dispatcher) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Application:   tview.NewApplication(),
		Config:        cfg,
		Keys:          cfg.Keys,
		ctx:           ctx,
		cancel:        cancel,
		views:         make(map[string]tview.Primitive),
		drafts:        deps.Drafts,
		importEnabled: deps.Importer != nil,
		queue:         dispatch,
		draftText:     make(map[string]string),
		draftInFlight: make(map[string]bool),
	}
	if a.queue == nil {
		a.queue = func(fn func()) { a.QueueUpdateDraw(fn) }
	}
	a.initLogger()
	a.palette = a.loadPalette()

	if l, ok := deps.Importer.(loggerSetter); ok && a.logger != nil {
		l.SetLogger(a.logger)
	}
	var importer inbox.Importer
	if deps.Importer != nil {
		importer = &trackedImporter{next: deps.Importer, inFlight: &a.importing}
	}
	a.initComponents()
	a.initErrorHandler()
	a.controller = inbox.NewController(deps.Properties, importer, a.errorHandler, a.dispatch, a.logger)
	a.bindKeys()
	a.render()
	return a
}

// dispatch runs fn on the UI goroutine and redraws the panes from the new state
func (a *App) dispatch(fn func()) {
	a.queue(func() {
		fn()
		a.render()
	})
}

// Run loads the properties and blocks until the user quits
func (a *App) Run() error {
	defer a.closeLogger()
	defer a.cancel()

	a.SetRoot(a.views["root"], true)
	a.focus("properties")
	a.controller.Start(a.ctx)
	if a.logger != nil {
		a.logger.Printf("hostinbox started")
	}
	return a.Application.Run()
}

// Quit cancels pending work and stops the event loop
func (a *App) Quit() {
	a.cancel()
	if a.errorHandler != nil {
		a.errorHandler.stopTimer()
	}
	a.Stop()
}

// Wait blocks until background fetches and draft generations have delivered
func (a *App) Wait() {
	a.controller.Wait()
	a.wg.Wait()
}

// GetErrorHandler returns the status bar notifier
func (a *App) GetErrorHandler() *ErrorHandler {
	return a.errorHandler
}

func (a *App) canImport() bool {
	return a.importEnabled
}

func (a *App) state() *inbox.State {
	if a.controller == nil {
		return nil
	}
	return a.controller.State()
}

// loggerSetter is implemented by services that log to the app's file
type loggerSetter interface {
	SetLogger(logger *log.Logger)
}

// trackedImporter releases the in-flight count taken by importSelected once
// the import returns, before its result is applied
type trackedImporter struct {
	next     inbox.Importer
	inFlight *atomic.Int32
}

func (t *trackedImporter) Import(ctx context.Context, propertyID string) ([]model.Message, error) {
	defer t.inFlight.Add(-1)
	return t.next.Import(ctx, propertyID)
}
