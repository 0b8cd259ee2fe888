// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdiddy/lead-engine/internal/sample"
	"github.com/pdiddy/lead-engine/pkg/types"
)

const (
	gatheredFile = "gathered_data.json"
	progressFile = "progress.json"
	batchPrefix  = "checkpoint_batch_"
)

// CityTopic pairs a topic id with the country code of the city it was seen
// in. It serializes as a two-element JSON array.
type CityTopic struct {
	TopicID     string
	CountryCode string
}

// MarshalJSON renders the pair as [topic_id, country_code].
func (c CityTopic) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.TopicID, c.CountryCode})
}

// UnmarshalJSON parses the [topic_id, country_code] form.
func (c *CityTopic) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.TopicID, c.CountryCode = pair[0], pair[1]
	return nil
}

// GatheredData is the combination inventory produced by the gather phase:
// topic ids grouped by the localities they were observed in, plus the
// city-resolution cache so resolved cities survive a restart.
type GatheredData struct {
	TopicsPerCountry     map[string][]string    `json:"topics_per_country"`
	TopicsPerCity        map[string][]CityTopic `json:"topics_per_city"`
	TopicsPerInstitution map[string][]string    `json:"topics_per_institution"`
	CityCache            map[string]string      `json:"city_search_cache"`
}

// NewGatheredData returns an empty inventory with all maps allocated.
func NewGatheredData() GatheredData {
	return GatheredData{
		TopicsPerCountry:     map[string][]string{},
		TopicsPerCity:        map[string][]CityTopic{},
		TopicsPerInstitution: map[string][]string{},
		CityCache:            map[string]string{},
	}
}

// CombinationCount sums the combinations across all three maps.
func (g GatheredData) CombinationCount() int {
	n := 0
	for _, topics := range g.TopicsPerCountry {
		n += len(topics)
	}
	for _, topics := range g.TopicsPerCity {
		n += len(topics)
	}
	for _, topics := range g.TopicsPerInstitution {
		n += len(topics)
	}
	return n
}

// Combinations flattens the inventory into build units. Map keys are
// visited in sorted order so the result is identical across runs; resume
// slices this list by the consumed-combination count in Progress and
// depends on that stability.
func (g GatheredData) Combinations() []sample.Combination {
	var combos []sample.Combination

	for _, country := range sortedKeys(g.TopicsPerCountry) {
		for _, topicID := range g.TopicsPerCountry[country] {
			combos = append(combos, sample.Combination{
				TopicID:     topicID,
				Kind:        sample.KindCountry,
				CountryCode: country,
			})
		}
	}
	for _, city := range sortedKeys(g.TopicsPerCity) {
		for _, ct := range g.TopicsPerCity[city] {
			combos = append(combos, sample.Combination{
				TopicID:     ct.TopicID,
				Kind:        sample.KindCity,
				City:        city,
				CountryCode: ct.CountryCode,
			})
		}
	}
	for _, instID := range sortedKeys(g.TopicsPerInstitution) {
		for _, topicID := range g.TopicsPerInstitution[instID] {
			combos = append(combos, sample.Combination{
				TopicID:       topicID,
				Kind:          sample.KindInstitution,
				InstitutionID: instID,
			})
		}
	}
	return combos
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BatchCheckpoint records one completed batch.
type BatchCheckpoint struct {
	BatchNum  int            `json:"batch_num"`
	Results   []types.Sample `json:"results"`
	Timestamp time.Time      `json:"timestamp"`
}

// Progress records which batches have completed across the whole run.
// TotalCombinations counts combinations consumed, built or skipped; resume
// slices the combination list by it, so a batch that skipped combinations
// does not cause later ones to be rebuilt.
type Progress struct {
	RunID             string    `json:"run_id"`
	CompletedBatches  []int     `json:"completed_batches"`
	TotalResults      int       `json:"total_results"`
	TotalCombinations int       `json:"total_combinations"`
	Timestamp         time.Time `json:"timestamp"`
}

// Store reads and writes checkpoint files under one directory. Every save
// fully overwrites its file. Loads tolerate missing files (empty state) and
// malformed files (a note on w, then empty state), so a damaged checkpoint
// degrades to redoing work instead of blocking the run.
type Store struct {
	Dir string
}

// SaveGathered writes the gather-phase checkpoint.
func (s *Store) SaveGathered(data GatheredData) error {
	return s.writeJSON(gatheredFile, data)
}

// LoadGathered reads the gather-phase checkpoint. ok is false when the file
// is missing or unreadable.
func (s *Store) LoadGathered(w io.Writer) (GatheredData, bool) {
	var data GatheredData
	if !s.readJSON(gatheredFile, &data, w) {
		return GatheredData{}, false
	}
	return data, true
}

// SaveBatch writes one batch checkpoint.
func (s *Store) SaveBatch(cp BatchCheckpoint) error {
	return s.writeJSON(fmt.Sprintf("%s%d.json", batchPrefix, cp.BatchNum), cp)
}

// SaveProgress writes the progress record.
func (s *Store) SaveProgress(p Progress) error {
	return s.writeJSON(progressFile, p)
}

// LoadProgress reads the progress record. ok is false when the file is
// missing or unreadable.
func (s *Store) LoadProgress(w io.Writer) (Progress, bool) {
	var p Progress
	if !s.readJSON(progressFile, &p, w) {
		return Progress{}, false
	}
	return p, true
}

// LoadCompleted returns the samples from every batch listed in p, in batch
// order. A listed batch whose file is missing or unreadable is an error:
// resume cannot account for its results.
func (s *Store) LoadCompleted(p Progress) ([]types.Sample, error) {
	nums := append([]int(nil), p.CompletedBatches...)
	sort.Ints(nums)

	var results []types.Sample
	for _, num := range nums {
		path := filepath.Join(s.Dir, fmt.Sprintf("%s%d.json", batchPrefix, num))
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading batch checkpoint %d: %w", num, err)
		}
		var cp BatchCheckpoint
		if err := json.Unmarshal(raw, &cp); err != nil {
			return nil, fmt.Errorf("parsing batch checkpoint %d: %w", num, err)
		}
		results = append(results, cp.Results...)
	}
	return results, nil
}

// Clean removes batch and progress checkpoints after a fully successful
// run. The gather checkpoint is kept so a future run with a larger target
// can extend the same inventory.
func (s *Store) Clean() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading checkpoint dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name != progressFile && !isBatchFile(name) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
			return fmt.Errorf("removing checkpoint %s: %w", name, err)
		}
	}
	return nil
}

func isBatchFile(name string) bool {
	return len(name) > len(batchPrefix) && name[:len(batchPrefix)] == batchPrefix
}

func (s *Store) writeJSON(name string, v any) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(name string, v any, w io.Writer) bool {
	raw, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		fmt.Fprintf(w, "ignoring malformed checkpoint %s: %v\n", name, err)
		return false
	}
	return true
}
