package power

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const parsedKeyPrefix = "parsed_"

var errNoParsedSection = errors.New("record has no parsed_<key> section")

type demandValues struct {
	Yesterday string `json:"YESTERDAY "`
	Current   string `json:"CURRENT "`
}

type parsedSection struct {
	DemandMet demandValues `json:"State's Demand Met"`
}

// MarshalJSON writes the record with a stable key order and the
// region-specific "parsed_<key>" member last.
func (r RegionRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	members := []struct {
		key   string
		value any
	}{
		{"urlScraped", r.URL},
		{"key", r.Key},
		{"key_name", r.KeyName},
		{"time_block", r.TimeBlock},
		{"date", r.Date},
		{"isManual", r.IsManual},
		{parsedKeyPrefix + r.Key, parsedSection{DemandMet: demandValues{
			Yesterday: r.DemandMetYesterday,
			Current:   r.DemandMetCurrent,
		}}},
	}

	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(m.key)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(m.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", m.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reverses MarshalJSON.
func (r *RegionRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out RegionRecord
	fields := []struct {
		key string
		dst any
	}{
		{"urlScraped", &out.URL},
		{"key", &out.Key},
		{"key_name", &out.KeyName},
		{"time_block", &out.TimeBlock},
		{"date", &out.Date},
		{"isManual", &out.IsManual},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return fmt.Errorf("decode %s: %w", f.key, err)
		}
	}

	section, ok := raw[parsedKeyPrefix+out.Key]
	if !ok {
		// Fall back to any parsed_ member when key is missing or inconsistent.
		for k, v := range raw {
			if strings.HasPrefix(k, parsedKeyPrefix) {
				section, ok = v, true
				break
			}
		}
	}
	if !ok {
		return errNoParsedSection
	}

	var parsed parsedSection
	if err := json.Unmarshal(section, &parsed); err != nil {
		return fmt.Errorf("decode parsed section: %w", err)
	}
	out.DemandMetYesterday = parsed.DemandMet.Yesterday
	out.DemandMetCurrent = parsed.DemandMet.Current

	*r = out
	return nil
}

// EncodeBatch serializes a batch as a JSON array indented by four spaces.
// HTML characters are written literally.
func EncodeBatch(b Batch) ([]byte, error) {
	if b == nil {
		b = Batch{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeBatch parses data produced by EncodeBatch.
func DecodeBatch(data []byte) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return b, nil
}
