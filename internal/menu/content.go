// Package menu routes user actions to static menu pages and source-backed
// news pages.
package menu

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apodervinskas/Veteran-TestBot/configs"
)

// Content is the menu definition loaded from YAML
type Content struct {
	Welcome      string     `yaml:"welcome"`
	HomePrompt   string     `yaml:"home_prompt"`
	Fallback     string     `yaml:"fallback"`
	BackButton   string     `yaml:"back_button"`
	MainKeyboard [][]string `yaml:"main_keyboard"`
	Replies      []Reply    `yaml:"replies"`
	Sections     []Section  `yaml:"sections"`
}

// Reply is a main keyboard button answered with a fixed text
type Reply struct {
	Button string `yaml:"button"`
	Text   string `yaml:"text"`
}

// Section is a main keyboard button that opens an inline submenu.
// Callbacks prefixed with "<key>:" belong to the section.
type Section struct {
	Key         string `yaml:"key"`
	Button      string `yaml:"button"`
	Text        string `yaml:"text"`
	Placeholder string `yaml:"placeholder"` // answer for items without text, empty to fall through
	Items       []Item `yaml:"items"`
}

// Item is one inline button of a section
type Item struct {
	Label  string `yaml:"label"`
	Data   string `yaml:"data"`
	Text   string `yaml:"text"`
	Header string `yaml:"header"`
	Source string `yaml:"source"`
}

// LoadContent parses and validates a menu definition
func LoadContent(data []byte) (*Content, error) {
	var content Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("error parsing menu: %w", err)
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// DefaultContent loads the menu embedded in the binary
func DefaultContent() (*Content, error) {
	data, err := configs.EmbeddedConfigs.ReadFile(configs.MenuFile)
	if err != nil {
		return nil, fmt.Errorf("error reading embedded menu: %w", err)
	}
	return LoadContent(data)
}

// Validate checks that every button and callback resolves to exactly one handler
func (c *Content) Validate() error {
	if strings.TrimSpace(c.Welcome) == "" {
		return fmt.Errorf("menu: welcome text is empty")
	}
	if strings.TrimSpace(c.Fallback) == "" {
		return fmt.Errorf("menu: fallback text is empty")
	}
	if c.BackButton == "" {
		return fmt.Errorf("menu: back button label is empty")
	}

	buttons := make(map[string]bool)
	for _, row := range c.MainKeyboard {
		for _, label := range row {
			buttons[label] = true
		}
	}

	answered := make(map[string]bool)
	claim := func(button string) error {
		if button == "" {
			return fmt.Errorf("menu: empty button label")
		}
		if answered[button] {
			return fmt.Errorf("menu: button %q is handled twice", button)
		}
		if !buttons[button] {
			return fmt.Errorf("menu: button %q is not on the main keyboard", button)
		}
		answered[button] = true
		return nil
	}

	for _, reply := range c.Replies {
		if err := claim(reply.Button); err != nil {
			return err
		}
	}

	keys := make(map[string]bool)
	data := map[string]bool{homeCallback: true}
	for _, section := range c.Sections {
		if section.Key == "" || strings.Contains(section.Key, ":") {
			return fmt.Errorf("menu: invalid section key %q", section.Key)
		}
		if keys[section.Key] {
			return fmt.Errorf("menu: duplicate section %q", section.Key)
		}
		keys[section.Key] = true

		if err := claim(section.Button); err != nil {
			return err
		}

		for _, item := range section.Items {
			if err := section.validateItem(item); err != nil {
				return err
			}
			if data[item.Data] {
				return fmt.Errorf("menu: duplicate callback %q", item.Data)
			}
			data[item.Data] = true
		}
	}

	for button := range buttons {
		if !answered[button] {
			return fmt.Errorf("menu: main keyboard button %q has no handler", button)
		}
	}

	return nil
}

func (s Section) validateItem(item Item) error {
	if item.Label == "" {
		return fmt.Errorf("menu: item %q has no label", item.Data)
	}
	if !strings.HasPrefix(item.Data, s.Key+":") {
		return fmt.Errorf("menu: callback %q is outside section %q", item.Data, s.Key)
	}
	// Telegram limits callback data to 64 bytes
	if len(item.Data) > 64 {
		return fmt.Errorf("menu: callback %q is longer than 64 bytes", item.Data)
	}

	switch {
	case item.Source != "" && item.Text != "":
		return fmt.Errorf("menu: item %q has both text and source", item.Data)
	case item.Source != "" && item.Header == "":
		return fmt.Errorf("menu: source item %q has no header", item.Data)
	case item.Source == "" && item.Text == "" && s.Placeholder == "":
		return fmt.Errorf("menu: item %q has no text and section %q has no placeholder", item.Data, s.Key)
	}
	return nil
}

// SourceNames returns the source names referenced by menu items in menu order
func (c *Content) SourceNames() []string {
	var names []string
	for _, section := range c.Sections {
		for _, item := range section.Items {
			if item.Source != "" {
				names = append(names, item.Source)
			}
		}
	}
	return names
}

// SourceHeader returns the message header of the menu item backed by source
func (c *Content) SourceHeader(source string) (string, bool) {
	for _, section := range c.Sections {
		for _, item := range section.Items {
			if item.Source == source {
				return item.Header, true
			}
		}
	}
	return "", false
}
