package config

import (
	"fmt"
	"os"

	"github.com/derailed/tcell/v2"
	"gopkg.in/yaml.v3"
)

// Color represents a color in the application
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"

	// TransparentColor represents the terminal bg color
	TransparentColor Color = "-"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as string
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == TransparentColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// Palette holds the colors of the three-pane screen
type Palette struct {
	Background Color `yaml:"background"`
	Foreground Color `yaml:"foreground"`
	Border     Color `yaml:"border"`
	Focus      Color `yaml:"focus"`
	Title      Color `yaml:"title"`
	Header     Color `yaml:"header"`
	Selected   Color `yaml:"selected"`
	Sample     Color `yaml:"sample"` // placeholder messages
	Info       Color `yaml:"info"`
	Success    Color `yaml:"success"`
	Warning    Color `yaml:"warning"`
	Error      Color `yaml:"error"`
}

// DefaultPalette returns the built-in dark palette
func DefaultPalette() *Palette {
	return &Palette{
		Background: NewColor("#282a36"),
		Foreground: NewColor("#f8f8f2"),
		Border:     NewColor("#44475a"),
		Focus:      NewColor("#6272a4"),
		Title:      NewColor("#bd93f9"),
		Header:     NewColor("#50fa7b"),
		Selected:   NewColor("#44475a"),
		Sample:     NewColor("#6272a4"),
		Info:       NewColor("#8be9fd"),
		Success:    NewColor("#50fa7b"),
		Warning:    NewColor("#f1fa8c"),
		Error:      NewColor("#ff5555"),
	}
}

// LoadPalette reads a YAML palette file. Keys it omits keep their default color.
func LoadPalette(path string) (*Palette, error) {
	p := DefaultPalette()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(resolveConfigRelative(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var theme struct {
		HostInbox yaml.Node `yaml:"hostinbox"`
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if theme.HostInbox.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid theme file: missing hostinbox section")
	}
	if err := theme.HostInbox.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	return p, nil
}
