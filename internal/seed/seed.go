// Package seed loads demo properties and guest messages from a YAML file into the store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/services"
	"gopkg.in/yaml.v3"
)

// File is the root of a seed document
type File struct {
	Properties []Property `yaml:"properties"`
}

// Property is a seeded property and its messages, listed newest first
type Property struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Messages []Message `yaml:"messages"`
}

// Message is a seeded guest message
type Message struct {
	Sender    string    `yaml:"sender"`
	Receiver  string    `yaml:"receiver"`
	Content   string    `yaml:"content"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Result counts what Apply wrote
type Result struct {
	Properties int
	Messages   int
}

// Load reads and validates a seed file
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document, rejecting unknown fields
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks ids, names and message bodies
func (f *File) Validate() error {
	seen := map[string]bool{}
	for i, p := range f.Properties {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("%w: property %d has no id", services.ErrInvalidInput, i+1)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: property %s has no name", services.ErrInvalidInput, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate property id %s", services.ErrInvalidInput, id)
		}
		seen[id] = true
		for j, m := range p.Messages {
			if strings.TrimSpace(m.Sender) == "" || strings.TrimSpace(m.Content) == "" {
				return fmt.Errorf("%w: message %d of %s needs a sender and content", services.ErrInvalidInput, j+1, id)
			}
		}
	}
	return nil
}

// Apply upserts every property and appends the messages it does not hold yet.
// Applying the same file twice writes no duplicate messages.
func Apply(ctx context.Context, repo services.PropertyRepository, file *File) (Result, error) {
	var res Result
	if repo == nil {
		return res, services.ErrStoreUnavailable
	}
	if file == nil {
		return res, nil
	}
	for _, p := range file.Properties {
		if err := repo.UpsertProperty(ctx, strings.TrimSpace(p.ID), strings.TrimSpace(p.Name)); err != nil {
			return res, fmt.Errorf("seed property %s: %w", p.ID, err)
		}
		res.Properties++

		stored, err := repo.GetProperty(ctx, strings.TrimSpace(p.ID))
		if err != nil {
			return res, fmt.Errorf("seed property %s: %w", p.ID, err)
		}

		var fresh []model.Message
		for _, m := range p.Messages {
			msg := m.toModel()
			if containsMessage(stored.Messages, msg) || containsMessage(fresh, msg) {
				continue
			}
			fresh = append(fresh, msg)
		}
		if len(fresh) == 0 {
			continue
		}
		if _, err := repo.AppendMessages(ctx, stored.ID, fresh); err != nil {
			return res, fmt.Errorf("seed messages of %s: %w", p.ID, err)
		}
		res.Messages += len(fresh)
	}
	return res, nil
}

func (m Message) toModel() model.Message {
	msg := model.Message{
		Sender:   strings.TrimSpace(m.Sender),
		Receiver: strings.TrimSpace(m.Receiver),
		Content:  strings.TrimSpace(m.Content),
		Source:   model.SourceSeed,
	}
	if msg.Receiver == "" {
		msg.Receiver = "Host"
	}
	if !m.Timestamp.IsZero() {
		msg.Timestamp = model.ISOTimestamp(m.Timestamp)
	}
	return msg
}

func containsMessage(list []model.Message, m model.Message) bool {
	for _, existing := range list {
		if existing.SameAs(m) {
			return true
		}
	}
	return false
}
