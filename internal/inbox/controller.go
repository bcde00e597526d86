package inbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/services"
)

// PropertySource is the read side of the property store
type PropertySource interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
}

// Importer pulls new messages for a property from a mail provider
type Importer interface {
	Import(ctx context.Context, propertyID string) ([]model.Message, error)
}

// Notifier surfaces transient notifications to the user
type Notifier interface {
	HandleError(ctx context.Context, err error, userMsg string)
	ShowSuccess(ctx context.Context, msg string)
}

// Dispatcher runs fn on the goroutine that owns the State
type Dispatcher func(fn func())

// Controller drives State from user events and asynchronous fetches. Fetches
// run in their own goroutines and hand results back through the dispatcher, so
// the state itself is only touched on the UI goroutine.
type Controller struct {
	state    *State
	source   PropertySource
	importer Importer
	notifier Notifier
	dispatch Dispatcher
	logger   *log.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

// NewController creates a controller. A nil dispatcher runs callbacks inline.
func NewController(source PropertySource, importer Importer, notifier Notifier, dispatch Dispatcher, logger *log.Logger) *Controller {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Controller{
		state:    NewState(),
		source:   source,
		importer: importer,
		notifier: notifier,
		dispatch: dispatch,
		logger:   logger,
		now:      time.Now,
	}
}

// State returns the controlled state. Read it only from the dispatcher goroutine.
func (c *Controller) State() *State {
	return c.state
}

// Start fetches the property set
func (c *Controller) Start(ctx context.Context) {
	token := c.state.BeginPropertiesLoad()
	c.logf("loading properties (token %d)", token)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		props, err := c.listProperties(ctx)
		c.dispatch(func() {
			if err != nil {
				if c.state.PropertiesFailed(token) {
					c.fail(ctx, err, "Failed to load properties")
				}
				return
			}
			load, applied := c.state.PropertiesLoaded(token, props)
			if !applied {
				c.logf("dropping stale property list (token %d)", token)
				return
			}
			c.logf("loaded %d properties", len(props))
			if load != nil {
				c.loadMessages(ctx, *load)
			}
		})
	}()
}

// SelectProperty switches to another property and reloads its messages
func (c *Controller) SelectProperty(ctx context.Context, id string) error {
	load, err := c.state.SelectProperty(id)
	if err != nil {
		return err
	}
	c.loadMessages(ctx, *load)
	return nil
}

// SelectMessage marks m as the message to draft a reply for
func (c *Controller) SelectMessage(m model.Message) {
	c.state.SelectMessage(m)
}

// SetQuery updates the search filter
func (c *Controller) SetQuery(q string) {
	c.state.SetQuery(q)
}

// Import pulls new messages for the selected property in the background
func (c *Controller) Import(ctx context.Context) error {
	if c.importer == nil {
		return services.ErrImportUnavailable
	}
	propertyID := c.state.SelectedID
	if propertyID == "" {
		return fmt.Errorf("no property selected")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		msgs, err := c.importer.Import(ctx, propertyID)
		c.dispatch(func() {
			if err != nil {
				c.fail(ctx, err, "Failed to import messages")
				return
			}
			c.ImportCompleted(ctx, propertyID, msgs)
		})
	}()
	return nil
}

// ImportCompleted merges messages delivered by an import collaborator
func (c *Controller) ImportCompleted(ctx context.Context, propertyID string, msgs []model.Message) {
	if len(msgs) == 0 {
		if c.notifier != nil {
			c.notifier.ShowSuccess(ctx, "No new messages")
		}
		return
	}
	if propertyID != c.state.SelectedID {
		c.logf("import for %s arrived after selection changed; %d messages kept in store only", propertyID, len(msgs))
		return
	}
	load, added := c.state.Imported(propertyID, msgs)
	switch {
	case load != nil:
		c.logf("import for %s landed during a reload; reloading", propertyID)
		c.loadMessages(ctx, *load)
	case added < len(msgs):
		c.logf("import for %s: %d of %d messages already listed", propertyID, len(msgs)-added, len(msgs))
	}
	if c.notifier != nil {
		c.notifier.ShowSuccess(ctx, fmt.Sprintf("Imported %d messages", len(msgs)))
	}
}

// Wait blocks until all background fetches have delivered their results
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) loadMessages(ctx context.Context, load MessageLoad) {
	c.logf("loading messages for %s (token %d)", load.PropertyID, load.Token)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		msgs, placeholder, err := c.fetchMessages(ctx, load.PropertyID)
		c.dispatch(func() {
			if err != nil {
				if c.state.MessagesFailed(load.Token) {
					c.fail(ctx, err, "Failed to load messages")
				}
				return
			}
			if !c.state.MessagesLoaded(load.Token, msgs, placeholder) {
				c.logf("dropping stale messages for %s (token %d)", load.PropertyID, load.Token)
			}
		})
	}()
}

func (c *Controller) listProperties(ctx context.Context) ([]model.Property, error) {
	if c.source == nil {
		return nil, fmt.Errorf("%w: %w", services.ErrPropertyFetch, services.ErrStoreUnavailable)
	}
	props, err := c.source.ListProperties(ctx)
	if err != nil {
		if errors.Is(err, services.ErrPropertyFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", services.ErrPropertyFetch, err)
	}
	return props, nil
}

func (c *Controller) fetchMessages(ctx context.Context, propertyID string) ([]model.Message, bool, error) {
	if c.source == nil {
		return nil, false, fmt.Errorf("%w: %w", services.ErrMessageFetch, services.ErrStoreUnavailable)
	}
	p, err := c.source.GetProperty(ctx, propertyID)
	if err == nil && p == nil {
		err = services.ErrPropertyNotFound
	}
	if err != nil {
		if errors.Is(err, services.ErrMessageFetch) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %w", services.ErrMessageFetch, err)
	}
	msgs, placeholder := MessagesFor(*p, c.now())
	return msgs, placeholder, nil
}

func (c *Controller) fail(ctx context.Context, err error, userMsg string) {
	if c.notifier != nil {
		c.notifier.HandleError(ctx, err, userMsg)
		return
	}
	c.logf("ERROR: %s: %v", userMsg, err)
}

func (c *Controller) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
