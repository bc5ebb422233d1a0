package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed deck.yaml
var canonicalDeck []byte

//go:embed deck.schema.json
var deckSchemaJSON string

var deckSchema = jsonschema.MustCompileString("deck.schema.json", deckSchemaJSON)

// #region parse
// ParseDeck decodes and validates a YAML deck. The document is checked
// against deck.schema.json first, so misspelled keys are rejected instead
// of silently dropped.
func ParseDeck(data []byte) (Deck, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Deck{}, fmt.Errorf("%w: parse: %w", ErrInvalidDeck, err)
	}
	doc, err := jsonValue(raw)
	if err != nil {
		return Deck{}, fmt.Errorf("%w: parse: %w", ErrInvalidDeck, err)
	}
	if err := deckSchema.Validate(doc); err != nil {
		return Deck{}, fmt.Errorf("%w: %w", ErrInvalidDeck, err)
	}

	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, fmt.Errorf("%w: parse: %w", ErrInvalidDeck, err)
	}
	if err := d.Validate(); err != nil {
		return Deck{}, err
	}
	return d, nil
}

// jsonValue converts a decoded YAML tree into the plain JSON value shapes
// the schema validator expects.
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadDeck reads a deck file from disk.
func LoadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck %s: %w", path, err)
	}
	d, err := ParseDeck(data)
	if err != nil {
		return Deck{}, fmt.Errorf("deck %s: %w", path, err)
	}
	return d, nil
}

// DefaultDeck returns the built-in six-scenario deck. It panics if the
// embedded file is broken, which the package tests rule out.
func DefaultDeck() Deck {
	d, err := ParseDeck(canonicalDeck)
	if err != nil {
		panic(err)
	}
	return d
}
// #endregion parse

// #region validate
// Validate checks that the deck is non-empty and every scenario has at
// least two options and an in-range correct index.
func (d Deck) Validate() error {
	if len(d.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios", ErrInvalidDeck)
	}
	for i, s := range d.Scenarios {
		if s.Prompt == "" {
			return fmt.Errorf("%w: scenario %d has no prompt", ErrInvalidDeck, i)
		}
		if len(s.Options) < 2 {
			return fmt.Errorf("%w: scenario %d has %d options", ErrInvalidDeck, i, len(s.Options))
		}
		if s.CorrectIndex < 0 || s.CorrectIndex >= len(s.Options) {
			return fmt.Errorf("%w: scenario %d correct index %d out of range [0,%d)",
				ErrInvalidDeck, i, s.CorrectIndex, len(s.Options))
		}
	}
	return nil
}
// #endregion validate
