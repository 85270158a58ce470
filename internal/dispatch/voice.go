package dispatch

import (
	"fmt"
	"math/rand"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Synthesizer is the platform text-to-speech facility.
type Synthesizer interface {
	Speak(text string, rate, pitch, volume float64, voiceHint string) error
}

// Persona holds delivery parameters for a voice character.
type Persona struct {
	Rate      float64
	Pitch     float64
	Volume    float64
	VoiceHint string
}

// Voice character keys.
const (
	CharacterDefault       = "default"
	CharacterDrillSergeant = "drill-sergeant"
	CharacterMom           = "mom"
	CharacterCustom        = "custom"
)

// personas is the fixed character catalog. The custom character speaks with
// default delivery but substitutes messages from the user's pool.
var personas = map[string]Persona{
	CharacterDefault:       {Rate: 1.0, Pitch: 1.0, Volume: 0.9},
	CharacterDrillSergeant: {Rate: 1.25, Pitch: 0.8, Volume: 1.0, VoiceHint: "en-US-male"},
	CharacterMom:           {Rate: 0.9, Pitch: 1.15, Volume: 0.8, VoiceHint: "en-US-female"},
	CharacterCustom:        {Rate: 1.0, Pitch: 1.0, Volume: 0.9},
}

// PersonaFor returns the delivery parameters for a character key, falling
// back to the default persona for unknown keys.
func PersonaFor(character string) Persona {
	if p, ok := personas[character]; ok {
		return p
	}
	return personas[CharacterDefault]
}

// MessagePool is the user-supplied message substitution pool for the
// custom character.
type MessagePool struct {
	mu       sync.RWMutex
	messages []string
	pick     func(n int) int
}

// NewMessagePool creates an empty pool.
func NewMessagePool() *MessagePool {
	return &MessagePool{pick: rand.Intn}
}

// poolFile is the on-disk YAML shape of the custom message pool.
type poolFile struct {
	Messages []string `yaml:"messages"`
}

// LoadFile reads the pool from a YAML file. A missing file leaves the pool
// empty; the custom character then falls back to template messages.
func (p *MessagePool) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read message pool: %w", err)
	}

	var pf poolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("failed to parse message pool: %w", err)
	}

	p.mu.Lock()
	p.messages = pf.Messages
	p.mu.Unlock()
	return nil
}

// Set replaces the pool contents.
func (p *MessagePool) Set(messages []string) {
	p.mu.Lock()
	p.messages = messages
	p.mu.Unlock()
}

// Pick returns a uniformly random message, or fallback when the pool is
// empty.
func (p *MessagePool) Pick(fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.messages) == 0 {
		return fallback
	}
	return p.messages[p.pick(len(p.messages))]
}
