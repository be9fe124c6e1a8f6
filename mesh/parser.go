package mesh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ParseFloorsFile reads and parses a detection document from disk
func ParseFloorsFile(path string) ([]FloorRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseFloorsJSON(data)
}

// ParseFloorsJSON parses a detection document. Accepted shapes are a JSON
// array of floor records, an object {"floors": [...]}, or a single record.
func ParseFloorsJSON(data []byte) ([]FloorRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("parsing JSON: empty document")
	}

	if data[0] == '[' {
		var floors []FloorRecord
		if err := json.Unmarshal(data, &floors); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return floors, nil
	}

	var envelope struct {
		Floors []FloorRecord `json:"floors"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if envelope.Floors != nil {
		return envelope.Floors, nil
	}

	var single FloorRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return []FloorRecord{single}, nil
}

// UnmarshalJSON accepts {x1,y1,x2,y2,room} objects and [x1,y1,x2,y2] arrays
func (b *DetectionBox) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var coords []float64
		if err := json.Unmarshal(data, &coords); err != nil {
			return fmt.Errorf("decoding box array: %w", err)
		}
		if len(coords) < 4 {
			return fmt.Errorf("decoding box array: need 4 coordinates, got %d", len(coords))
		}
		*b = DetectionBox{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
		return nil
	}

	type plain DetectionBox
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding box: %w", err)
	}
	*b = DetectionBox(p)
	return nil
}

// FloorSummary provides a summary of a floor record's contents
type FloorSummary struct {
	Width       float64
	Height      float64
	Boxes       int
	Walls       int
	Doors       int
	Windows     int
	Rooms       []string
	AverageDoor float64
	HasAverage  bool
	Furniture   int
}

// Summarize extracts key information from a floor record
func Summarize(fr FloorRecord) FloorSummary {
	w, h := fr.ImageSize()
	summary := FloorSummary{Width: w, Height: h, Boxes: len(fr.Points), Furniture: len(fr.Furniture)}

	seen := make(map[string]bool)
	for i, b := range fr.Points {
		switch Classify(fr.LabelAt(i)) {
		case KindWall:
			summary.Walls++
		case KindDoor:
			summary.Doors++
		case KindWindow:
			summary.Windows++
		}
		if b.Room != "" && !seen[b.Room] {
			seen[b.Room] = true
			summary.Rooms = append(summary.Rooms, b.Room)
		}
	}

	if fr.AverageDoor != nil {
		summary.AverageDoor = *fr.AverageDoor
		summary.HasAverage = true
	}
	return summary
}
