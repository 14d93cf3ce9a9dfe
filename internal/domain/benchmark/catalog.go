// Package benchmark holds the scenario catalog: which scenarios belong to
// which season and difficulty, their score thresholds, and how they pair up
// into benchmarks.
package benchmark

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/aimtrack/internal/domain/energy"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Scenario is one aim-trainer scenario within a division.
type Scenario struct {
	Name        string
	Hash        string
	Category    string
	Subcategory string
	Thresholds  energy.Thresholds
}

// Benchmark pairs the two scenarios of a subcategory.
type Benchmark struct {
	// ID is "{subcategory}-{category}", e.g. "dynamic-clicking".
	ID          string
	Category    string
	Subcategory string
	A           Scenario
	B           Scenario
}

// Pair returns the energy configuration for scoring this benchmark in tier t.
func (b Benchmark) Pair(t energy.Tier) energy.Pair {
	return energy.Pair{Tier: t, A: b.A.Thresholds, B: b.B.Thresholds}
}

// Other returns the scenario of the pair that is not hash.
func (b Benchmark) Other(hash string) Scenario {
	if b.A.Hash == hash {
		return b.B
	}
	return b.A
}

// Division is the set of scenarios of one season and difficulty.
type Division struct {
	Board      Board
	Tier       energy.Tier
	Scenarios  []Scenario
	Benchmarks []Benchmark

	byHash      map[string]int
	benchByHash map[string]int
}

// Scenario looks up a scenario by hash.
func (d *Division) Scenario(hash string) (Scenario, error) {
	i, ok := d.byHash[hash]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s in %s", ErrScenarioNotFound, hash, d.Board)
	}
	return d.Scenarios[i], nil
}

// Benchmark looks up a benchmark by id.
func (d *Division) Benchmark(id string) (Benchmark, error) {
	for _, b := range d.Benchmarks {
		if b.ID == id {
			return b, nil
		}
	}
	return Benchmark{}, fmt.Errorf("%w: %s in %s", ErrBenchmarkNotFound, id, d.Board)
}

// BenchmarkOf returns the benchmark containing the scenario hash.
func (d *Division) BenchmarkOf(hash string) (Benchmark, bool) {
	i, ok := d.benchByHash[hash]
	if !ok {
		return Benchmark{}, false
	}
	return d.Benchmarks[i], true
}

// Hashes lists the scenario hashes of the division in catalog order.
func (d *Division) Hashes() []string {
	out := make([]string, len(d.Scenarios))
	for i, s := range d.Scenarios {
		out[i] = s.Hash
	}
	return out
}

// Placement is one division a scenario hash belongs to.
type Placement struct {
	Division  *Division
	Benchmark Benchmark
	Scenario  Scenario
}

// Catalog indexes divisions by board.
type Catalog struct {
	divisions map[Board]*Division
	order     []Board
	byHash    map[string][]Board
}

// Default returns the built-in season 5 catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file, or the built-in catalog when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return fromKoanf(k)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(rawProvider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return fromKoanf(k)
}

// rawProvider feeds in-memory bytes to koanf.
type rawProvider []byte

func (r rawProvider) ReadBytes() ([]byte, error) { return r, nil }

func (r rawProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("raw provider does not support Read")
}

type fileCatalog struct {
	Seasons []fileSeason `koanf:"seasons"`
}

type fileSeason struct {
	Season       int              `koanf:"season"`
	Difficulties []fileDifficulty `koanf:"difficulties"`
}

type fileDifficulty struct {
	Difficulty string         `koanf:"difficulty"`
	Scenarios  []fileScenario `koanf:"scenarios"`
}

type fileScenario struct {
	Name        string    `koanf:"name"`
	Hash        string    `koanf:"hash"`
	Category    string    `koanf:"category"`
	Subcategory string    `koanf:"subcategory"`
	Thresholds  []float64 `koanf:"thresholds"`
}

func fromKoanf(k *koanf.Koanf) (*Catalog, error) {
	var fc fileCatalog
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		divisions: make(map[Board]*Division),
		byHash:    make(map[string][]Board),
	}
	for _, fs := range fc.Seasons {
		for _, fd := range fs.Difficulties {
			d, err := newDivision(fs.Season, fd)
			if err != nil {
				return nil, err
			}
			if _, dup := c.divisions[d.Board]; dup {
				return nil, fmt.Errorf("%w: duplicate division %s", ErrInvalidCatalog, d.Board)
			}
			c.divisions[d.Board] = d
			c.order = append(c.order, d.Board)
			for _, s := range d.Scenarios {
				c.byHash[s.Hash] = append(c.byHash[s.Hash], d.Board)
			}
		}
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("%w: no divisions", ErrInvalidCatalog)
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		if c.order[i].Season != c.order[j].Season {
			return c.order[i].Season < c.order[j].Season
		}
		return tierIndex(c.order[i].Difficulty) < tierIndex(c.order[j].Difficulty)
	})
	return c, nil
}

func newDivision(season int, fd fileDifficulty) (*Division, error) {
	if season <= 0 {
		return nil, fmt.Errorf("%w: season %d", ErrInvalidCatalog, season)
	}
	tier, err := energy.ResolveTier(energy.Difficulty(fd.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	d := &Division{
		Board:       Board{Season: season, Difficulty: tier.Difficulty},
		Tier:        tier,
		byHash:      make(map[string]int, len(fd.Scenarios)),
		benchByHash: make(map[string]int, len(fd.Scenarios)),
	}
	for _, fsc := range fd.Scenarios {
		if len(fsc.Thresholds) != len(energy.Thresholds{}) {
			return nil, fmt.Errorf("%w: %s in %s has %d thresholds", ErrInvalidCatalog, fsc.Name, d.Board, len(fsc.Thresholds))
		}
		s := Scenario{
			Name:        fsc.Name,
			Hash:        fsc.Hash,
			Category:    fsc.Category,
			Subcategory: fsc.Subcategory,
		}
		copy(s.Thresholds[:], fsc.Thresholds)
		d.byHash[s.Hash] = len(d.Scenarios)
		d.Scenarios = append(d.Scenarios, s)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.Benchmarks = pairBenchmarks(d.Scenarios)
	for i, b := range d.Benchmarks {
		d.benchByHash[b.A.Hash] = i
		d.benchByHash[b.B.Hash] = i
	}
	return d, nil
}

// Validate checks that thresholds are strictly increasing, hashes are unique
// and every subcategory has exactly two scenarios.
func (d *Division) Validate() error {
	seen := make(map[string]struct{}, len(d.Scenarios))
	perSub := make(map[string]int)
	for _, s := range d.Scenarios {
		if s.Hash == "" {
			return fmt.Errorf("%w: %s in %s has no hash", ErrInvalidCatalog, s.Name, d.Board)
		}
		if _, dup := seen[s.Hash]; dup {
			return fmt.Errorf("%w: duplicate hash %s in %s", ErrInvalidCatalog, s.Hash, d.Board)
		}
		seen[s.Hash] = struct{}{}
		if !s.Thresholds.Valid() {
			return fmt.Errorf("%w: thresholds of %s in %s are not increasing", ErrInvalidCatalog, s.Name, d.Board)
		}
		perSub[benchmarkID(s)]++
	}
	for id, n := range perSub {
		if n != 2 {
			return fmt.Errorf("%w: %s in %s has %d scenarios", ErrInvalidCatalog, id, d.Board, n)
		}
	}
	return nil
}

func pairBenchmarks(scenarios []Scenario) []Benchmark {
	var out []Benchmark
	index := make(map[string]int)
	for _, s := range scenarios {
		id := benchmarkID(s)
		i, ok := index[id]
		if !ok {
			index[id] = len(out)
			out = append(out, Benchmark{ID: id, Category: s.Category, Subcategory: s.Subcategory, A: s})
			continue
		}
		out[i].B = s
	}
	return out
}

func benchmarkID(s Scenario) string {
	return s.Subcategory + "-" + s.Category
}

func tierIndex(d energy.Difficulty) int {
	return slices.IndexFunc(energy.Tiers(), func(t energy.Tier) bool { return t.Difficulty == d })
}

// Division returns the division of a season and difficulty.
func (c *Catalog) Division(season int, d energy.Difficulty) (*Division, error) {
	return c.Lookup(Board{Season: season, Difficulty: d})
}

// Lookup returns the division of a board.
func (c *Catalog) Lookup(b Board) (*Division, error) {
	if div, ok := c.divisions[b]; ok {
		return div, nil
	}
	if !slices.ContainsFunc(c.order, func(o Board) bool { return o.Season == b.Season }) {
		return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, b.Season)
	}
	return nil, fmt.Errorf("%w: %s", ErrDifficultyNotFound, b.Difficulty)
}

// Divisions lists every division ordered by season then difficulty.
func (c *Catalog) Divisions() []*Division {
	out := make([]*Division, len(c.order))
	for i, b := range c.order {
		out[i] = c.divisions[b]
	}
	return out
}

// Locate returns every division the scenario hash belongs to.
func (c *Catalog) Locate(hash string) []Placement {
	boards := c.byHash[hash]
	out := make([]Placement, 0, len(boards))
	for _, b := range boards {
		d := c.divisions[b]
		s, err := d.Scenario(hash)
		if err != nil {
			continue
		}
		bench, _ := d.BenchmarkOf(hash)
		out = append(out, Placement{Division: d, Benchmark: bench, Scenario: s})
	}
	return out
}
