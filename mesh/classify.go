package mesh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// defaultImageSize is used when a floor record carries no width or height
const defaultImageSize = 1000.0

// LabelForm records which JSON shape a label descriptor arrived in
type LabelForm int

const (
	LabelMissing LabelForm = iota
	LabelString
	LabelNumber
	LabelObject
)

// Label is a class descriptor as produced by the detection service: a bare
// string, a numeric class code, or an object carrying name/label/type.
// Decoding collapses all three into Text so later stages never inspect JSON.
type Label struct {
	Form LabelForm
	Text string
}

// StringLabel builds a label from a bare class name
func StringLabel(s string) Label { return Label{Form: LabelString, Text: s} }

// NumberLabel builds a label from a numeric class code
func NumberLabel(n float64) Label {
	return Label{Form: LabelNumber, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// ObjectLabel builds a label from an object descriptor's name
func ObjectLabel(name string) Label { return Label{Form: LabelObject, Text: name} }

// UnmarshalJSON accepts string, number, object or null descriptors
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Label{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding label string: %w", err)
		}
		*l = StringLabel(s)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decoding label object: %w", err)
		}
		*l = Label{Form: LabelObject}
		for _, key := range []string{"name", "label", "type"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var inner Label
			if err := inner.UnmarshalJSON(raw); err != nil || inner.Text == "" {
				continue
			}
			l.Text = inner.Text
			break
		}
	case '[':
		// Arrays are not a known descriptor shape; treat as missing.
		*l = Label{}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			// true/false and other literals carry no class information
			*l = Label{}
			return nil
		}
		*l = NumberLabel(n)
	}
	return nil
}

// MarshalJSON writes the label back in its original shape
func (l Label) MarshalJSON() ([]byte, error) {
	switch l.Form {
	case LabelString:
		return json.Marshal(l.Text)
	case LabelNumber:
		if n, err := strconv.ParseFloat(l.Text, 64); err == nil {
			return json.Marshal(n)
		}
		return json.Marshal(l.Text)
	case LabelObject:
		return json.Marshal(map[string]string{"name": l.Text})
	default:
		return []byte("null"), nil
	}
}

// Classify resolves a label to wall, door or window. Anything it cannot
// recognize is treated as wall.
func Classify(l Label) Kind {
	s := strings.ToLower(strings.TrimSpace(l.Text))

	switch {
	case strings.HasPrefix(s, "wal"):
		return KindWall
	case strings.HasPrefix(s, "win"):
		return KindWindow
	case strings.HasPrefix(s, "doo"):
		return KindDoor
	}

	switch s {
	case "1", "0", "wallid":
		return KindWall
	case "2":
		return KindWindow
	case "3":
		return KindDoor
	}
	return KindWall
}

// ImageSize returns the record's pixel dimensions, defaulting missing or
// non-positive values to 1000.
func (fr FloorRecord) ImageSize() (width, height float64) {
	width, height = fr.Width, fr.Height
	if width <= 0 {
		width = defaultImageSize
	}
	if height <= 0 {
		height = defaultImageSize
	}
	return width, height
}

// ImageRect returns the full image rectangle in meters
func (fr FloorRecord) ImageRect(unitPerPx float64) Rect {
	w, h := fr.ImageSize()
	return NewRect(0, w*unitPerPx, 0, h*unitPerPx)
}

// LabelAt returns the label parallel to points[i], or a missing label when
// the classes list is shorter than the points list.
func (fr FloorRecord) LabelAt(i int) Label {
	if i < 0 || i >= len(fr.Classes) {
		return Label{}
	}
	return fr.Classes[i]
}

// ClassifyFloor converts every detection box of a record into a primitive in
// floor-local meters. Corner order is normalized; no box is dropped.
func ClassifyFloor(fr FloorRecord, unitPerPx float64) []Primitive {
	prims := make([]Primitive, 0, len(fr.Points))
	for i, b := range fr.Points {
		prims = append(prims, Primitive{
			Kind: Classify(fr.LabelAt(i)),
			Box:  NewRect(b.X1*unitPerPx, b.X2*unitPerPx, b.Y1*unitPerPx, b.Y2*unitPerPx),
			Room: strings.TrimSpace(b.Room),
		})
	}
	return prims
}

// CountKinds tallies primitives by kind
func CountKinds(prims []Primitive) (walls, doors, windows int) {
	for _, p := range prims {
		switch p.Kind {
		case KindWall:
			walls++
		case KindDoor:
			doors++
		case KindWindow:
			windows++
		}
	}
	return walls, doors, windows
}
