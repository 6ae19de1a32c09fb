package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/analysis"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	finalFile    = "final_v.csv"
)

var framesHeader = []string{"frame", "step", "min", "max", "mean", "std"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Preset        string             `json:"preset"`
	Timestamp     time.Time          `json:"timestamp"`
	N             int                `json:"n"`
	Du            float64            `json:"du"`
	Dv            float64            `json:"dv"`
	F             float64            `json:"f"`
	K             float64            `json:"k"`
	Spacing       float64            `json:"spacing,omitempty"`
	StepsPerFrame int                `json:"steps_per_frame"`
	Frames        int                `json:"frames"`
	Steps         int                `json:"steps"`
	Workers       int                `json:"workers"`
	Elapsed       time.Duration      `json:"elapsed_ns"`
	Wavelength    float64            `json:"wavelength"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, the per-frame stats in
// frames.csv and, when final is non-nil, the last V frame in final_v.csv.
// The assigned run ID is returned.
func (s *Store) Save(meta RunMetadata, stats []analysis.FrameStats, final *mat.Dense) (string, error) {
	now := time.Now()
	name := meta.Preset
	if name == "" {
		name = "grayscott"
	}
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; ; i++ {
		if _, err := os.Stat(runDir); errors.Is(err, os.ErrNotExist) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta.ID = runID
	meta.Timestamp = now
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	if err := saveRun(runDir, meta, stats, final); err != nil {
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

// saveRun creates runDir and fills it. On a write error the directory is
// removed so List never sees a half-written run.
func saveRun(runDir string, meta RunMetadata, stats []analysis.FrameStats, final *mat.Dense) error {
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	if err := writeRun(runDir, meta, stats, final); err != nil {
		os.RemoveAll(runDir)
		return err
	}
	return nil
}

func writeRun(runDir string, meta RunMetadata, stats []analysis.FrameStats, final *mat.Dense) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeStats(filepath.Join(runDir, framesFile), stats); err != nil {
		return err
	}
	if final != nil {
		return writeMatrix(filepath.Join(runDir, finalFile), final)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeStats(path string, stats []analysis.FrameStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{
			strconv.Itoa(st.Index),
			strconv.Itoa(st.Step),
			formatFloat(st.Min),
			formatFloat(st.Max),
			formatFloat(st.Mean),
			formatFloat(st.Std),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeMatrix(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows, cols := m.Dims()
	row := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = formatFloat(m.At(i, j))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadStats(runID string) ([]analysis.FrameStats, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []analysis.FrameStats{}, nil
	}

	stats := make([]analysis.FrameStats, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(framesHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", framesFile, line+2, len(framesHeader), len(record))
		}
		var st analysis.FrameStats
		if st.Index, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		if st.Step, err = strconv.Atoi(record[1]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		vals := make([]float64, 4)
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+2], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
			}
		}
		st.Min, st.Max, st.Mean, st.Std = vals[0], vals[1], vals[2], vals[3]
		stats = append(stats, st)
	}
	return stats, nil
}

// LoadFinal reads the stored last frame of a run.
func (s *Store) LoadFinal(runID string) (*mat.Dense, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty matrix", finalFile)
	}

	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)
	for i, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", finalFile, i, cols, len(record))
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", finalFile, i, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

type ExportData struct {
	Run   RunMetadata           `json:"run"`
	Stats []analysis.FrameStats `json:"stats"`
}

type statsRow struct {
	Index int       `json:"index"`
	Step  int       `json:"step"`
	Min   jsonFloat `json:"min"`
	Max   jsonFloat `json:"max"`
	Mean  jsonFloat `json:"mean"`
	Std   jsonFloat `json:"std"`
}

type exportJSON struct {
	Run   RunMetadata `json:"run"`
	Stats []statsRow  `json:"stats"`
}

func (e ExportData) MarshalJSON() ([]byte, error) {
	out := exportJSON{Run: e.Run, Stats: make([]statsRow, len(e.Stats))}
	for i, st := range e.Stats {
		out.Stats[i] = statsRow{
			Index: st.Index,
			Step:  st.Step,
			Min:   jsonFloat(st.Min),
			Max:   jsonFloat(st.Max),
			Mean:  jsonFloat(st.Mean),
			Std:   jsonFloat(st.Std),
		}
	}
	return json.Marshal(out)
}

func (e *ExportData) UnmarshalJSON(b []byte) error {
	var in exportJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	e.Run = in.Run
	e.Stats = make([]analysis.FrameStats, len(in.Stats))
	for i, row := range in.Stats {
		e.Stats[i] = analysis.FrameStats{
			Index: row.Index,
			Step:  row.Step,
			Min:   float64(row.Min),
			Max:   float64(row.Max),
			Mean:  float64(row.Mean),
			Std:   float64(row.Std),
		}
	}
	return nil
}

// ExportJSON writes a run's metadata and frame stats as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	stats, err := s.LoadStats(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Stats: stats})
}
