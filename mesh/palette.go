package mesh

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"
)

// Fixed colors for elements that are not room tinted
const (
	DefaultWallColor      = "#e8e4dc"
	DefaultDoorColor      = "#8b5a2b"
	DefaultWindowColor    = "#9fd3ff"
	DefaultFloorColor     = "#c9b79c"
	DefaultSlabColor      = "#b0b0b0"
	DefaultPerimeterColor = "#d6d0c4"
)

// roomColors are handed out in first-seen order before falling back to a
// golden-angle hue walk
var roomColors = []color.NRGBA{
	{100, 149, 237, 255}, // Cornflower blue
	{255, 99, 71, 255},   // Tomato
	{144, 238, 144, 255}, // Light green
	{255, 255, 150, 255}, // Light yellow
	{221, 160, 221, 255}, // Plum
	{255, 182, 108, 255}, // Apricot
	{127, 219, 212, 255}, // Aqua
	{230, 190, 138, 255}, // Tan
}

// RoomPalette assigns a stable color to every room name it sees. The table
// only grows; Reset clears it. A palette may be shared between builds, and
// equal sequences of rooms always produce equal colors.
type RoomPalette struct {
	mu     sync.Mutex
	colors map[string]string
	order  []string
}

// NewRoomPalette creates an empty palette
func NewRoomPalette() *RoomPalette {
	return &RoomPalette{colors: make(map[string]string)}
}

// normalizeRoom makes room labels compare equal regardless of case/spacing
func normalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

// Color returns the room's color, allocating the next one on first use.
// Empty room names get the default wall color and allocate nothing.
func (p *RoomPalette) Color(room string) string {
	key := normalizeRoom(room)
	if key == "" {
		return DefaultWallColor
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.colors[key]; ok {
		return c
	}
	c := toHex(paletteColor(len(p.order)))
	p.colors[key] = c
	p.order = append(p.order, key)
	return c
}

// Rooms returns the allocated room names in allocation order
func (p *RoomPalette) Rooms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns how many rooms have a color
func (p *RoomPalette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// Reset forgets every assignment
func (p *RoomPalette) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors = make(map[string]string)
	p.order = nil
}

// paletteColor returns the n-th palette entry
func paletteColor(n int) color.NRGBA {
	if n < len(roomColors) {
		return roomColors[n]
	}
	hue := math.Mod(float64(n-len(roomColors))*137.508, 360)
	return hsvToNRGBA(hue, 0.45, 0.95)
}

// hsvToNRGBA converts hue (degrees), saturation and value to a color
func hsvToNRGBA(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}

// toHex formats a color as #rrggbb
func toHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHexColor parses a hex color string like "#FF6B6B" to color.RGBA
func parseHexColor(hex string) color.RGBA {
	// Default to red if parsing fails
	defaultColor := color.RGBA{255, 0, 0, 255}

	if len(hex) == 0 {
		return defaultColor
	}

	// Remove # prefix if present
	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return defaultColor
	}

	var r, g, b uint8
	_, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	if err != nil {
		return defaultColor
	}

	return color.RGBA{r, g, b, 255}
}
