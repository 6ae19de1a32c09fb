package storage

import (
	"encoding/json"
	"math"
	"strconv"
)

// jsonFloat encodes NaN and the infinities as the strings "NaN", "+Inf" and
// "-Inf", which encoding/json refuses as numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// runMetadataFields drops RunMetadata's methods so the wire form can embed it.
type runMetadataFields RunMetadata

type runMetadataJSON struct {
	runMetadataFields
	Wavelength jsonFloat            `json:"wavelength"`
	Metrics    map[string]jsonFloat `json:"metrics"`
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	out := runMetadataJSON{
		runMetadataFields: runMetadataFields(m),
		Wavelength:        jsonFloat(m.Wavelength),
		Metrics:           make(map[string]jsonFloat, len(m.Metrics)),
	}
	for name, v := range m.Metrics {
		out.Metrics[name] = jsonFloat(v)
	}
	return json.Marshal(out)
}

func (m *RunMetadata) UnmarshalJSON(b []byte) error {
	var in runMetadataJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*m = RunMetadata(in.runMetadataFields)
	m.Wavelength = float64(in.Wavelength)
	m.Metrics = make(map[string]float64, len(in.Metrics))
	for name, v := range in.Metrics {
		m.Metrics[name] = float64(v)
	}
	return nil
}
