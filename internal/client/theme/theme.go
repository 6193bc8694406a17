// Package theme persists the light/dark preference and maps it to the
// terminal colours used by the renderer.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/schooladmin/internal/client/repositories/metadata"
)

// KeyDarkMode holds a JSON boolean.
const KeyDarkMode = "darkMode"

// Palette is the set of styles a page is drawn with.
type Palette struct {
	Title   *color.Color
	Header  *color.Color
	Text    *color.Color
	Success *color.Color
	Warning *color.Color
	Error   *color.Color
	Prompt  *color.Color
}

var (
	dark = Palette{
		Title:   color.New(color.FgHiCyan, color.Bold),
		Header:  color.New(color.FgHiWhite, color.Underline),
		Text:    color.New(color.FgWhite),
		Success: color.New(color.FgHiGreen),
		Warning: color.New(color.FgHiYellow),
		Error:   color.New(color.FgHiRed),
		Prompt:  color.New(color.FgHiBlack, color.Bold),
	}
	light = Palette{
		Title:   color.New(color.FgBlue, color.Bold),
		Header:  color.New(color.FgBlack, color.Underline),
		Text:    color.New(color.FgBlack),
		Success: color.New(color.FgGreen),
		Warning: color.New(color.FgYellow),
		Error:   color.New(color.FgRed),
		Prompt:  color.New(color.FgBlue),
	}
)

// Preference is the dark-mode flag backed by the metadata repository.
// It starts dark until loaded otherwise.
type Preference struct {
	mu   sync.RWMutex
	repo metadata.Repository
	dark bool
}

func NewPreference(repo metadata.Repository) *Preference {
	return &Preference{repo: repo, dark: true}
}

// Load reads the stored flag. A missing or unreadable value means dark.
func (p *Preference) Load(ctx context.Context) error {
	raw, ok, err := p.repo.Get(ctx, KeyDarkMode)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	dark := true
	if ok {
		if err := json.Unmarshal([]byte(raw), &dark); err != nil {
			dark = true
		}
	}
	p.mu.Lock()
	p.dark = dark
	p.mu.Unlock()
	return nil
}

// Set stores the flag and applies it.
func (p *Preference) Set(ctx context.Context, dark bool) error {
	b, err := json.Marshal(dark)
	if err != nil {
		return err
	}
	if err := p.repo.Set(ctx, map[string]string{KeyDarkMode: string(b)}); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	p.mu.Lock()
	p.dark = dark
	p.mu.Unlock()
	return nil
}

// Toggle flips the flag and returns the new value.
func (p *Preference) Toggle(ctx context.Context) (bool, error) {
	next := !p.Dark()
	if err := p.Set(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}

func (p *Preference) Dark() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dark
}

// Name is "dark" or "light".
func (p *Preference) Name() string {
	if p.Dark() {
		return "dark"
	}
	return "light"
}

func (p *Preference) Palette() Palette {
	if p.Dark() {
		return dark
	}
	return light
}
