// Package durations loads the task -> duration maps the CPM engine schedules.
// Durations are in days.
package durations

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
)

// LoadFile reads durations from a .toml or .json file. minutesPerDay converts
// minute estimates found in JSON task lists.
func LoadFile(path string, minutesPerDay float64) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read durations: %w", err)
	}

	var out map[string]float64
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		out, err = ParseTOML(data)
	case ".json":
		out, err = ParseJSON(data, minutesPerDay)
	default:
		return nil, fmt.Errorf("durations file %s: unsupported extension (use .toml or .json)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("durations file %s: %w", path, err)
	}
	return out, nil
}

// ParseTOML reads a [durations] table of task = days.
func ParseTOML(data []byte) (map[string]float64, error) {
	var doc struct {
		Durations map[string]float64 `toml:"durations"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(doc.Durations))
	for id, d := range doc.Durations {
		if err := set(out, id, d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseJSON accepts either an object of task -> days, optionally nested under
// "durations", or an array of task objects carrying an "id" and either a
// "duration" in days or an "estimate" in minutes.
func ParseJSON(data []byte, minutesPerDay float64) (map[string]float64, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if nested := root.Get("durations"); root.IsObject() && nested.IsObject() {
		root = nested
	}

	out := make(map[string]float64)
	var err error
	switch {
	case root.IsObject():
		root.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.Number {
				err = fmt.Errorf("task %q: duration is not a number", key.String())
				return false
			}
			err = set(out, key.String(), value.Float())
			return err == nil
		})
	case root.IsArray():
		root.ForEach(func(_, item gjson.Result) bool {
			id := item.Get("id").String()
			if d := item.Get("duration"); d.Exists() {
				err = set(out, id, d.Float())
			} else if e := item.Get("estimate"); e.Exists() {
				if minutesPerDay <= 0 {
					err = fmt.Errorf("task %q: minutes per day must be positive", id)
				} else {
					err = set(out, id, e.Float()/minutesPerDay)
				}
			} else {
				err = fmt.Errorf("task %q: no duration or estimate", id)
			}
			return err == nil
		})
	default:
		return nil, fmt.Errorf("expected an object or array of durations")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FromEstimates converts minute estimates to days. Tasks with no estimate
// (zero) get defaultDuration.
func FromEstimates(estimates map[string]int, defaultDuration, minutesPerDay float64) map[string]float64 {
	out := make(map[string]float64, len(estimates))
	for id, mins := range estimates {
		if mins > 0 && minutesPerDay > 0 {
			out[id] = float64(mins) / minutesPerDay
		} else {
			out[id] = defaultDuration
		}
	}
	return out
}

func set(out map[string]float64, id string, d float64) error {
	if id == "" {
		return fmt.Errorf("task with empty id")
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("task %q: invalid duration %v", id, d)
	}
	out[id] = d
	return nil
}
