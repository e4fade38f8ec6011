package model

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorGray   Color = "gray"
)

var colors = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorGray}

func (c Color) IsValid() bool {
	for _, known := range colors {
		if c == known {
			return true
		}
	}
	return false
}

// ColorFromName picks the color for a list created implicitly by name. A name
// that is itself a color maps to that color; anything else hashes onto the palette.
func ColorFromName(name string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	if c.IsValid() {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return colors[h.Sum32()%uint32(len(colors))]
}

// List owns an ordered sequence of top-level tasks. UUID and Color never change.
type List struct {
	UUID    string
	Name    string
	Color   Color
	TaskIDs []string
}

func (l List) Clone() List {
	out := l
	out.TaskIDs = append([]string(nil), l.TaskIDs...)
	return out
}

func (l List) Validate() error {
	if strings.TrimSpace(l.UUID) == "" {
		return errors.New("model: list uuid is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: list name is required")
	}
	if !l.Color.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, l.Color)
	}
	return nil
}
