package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/models"
)

type RunStatus string

const (
	RunProcessing RunStatus = "processing"
	RunDone       RunStatus = "done"
	RunFailed     RunStatus = "error"
)

var ErrRunNotFound = errors.New("run not found")

// Analysis is the outcome of one per-candidate module run.
type Analysis struct {
	Module  string
	Title   string
	Facts   []string
	Summary string
	Error   string
}

// Run is one screening batch as the dashboard remembers it.
type Run struct {
	ID              string
	Job             models.JobDescription
	Status          RunStatus
	Error           string
	Items           []models.BatchItem
	Recommendations []models.Recommendation
	RecommendError  string
	Analyses        map[string]Analysis
	CreatedAt       time.Time
}

func analysisKey(candidate int, module string) string {
	return fmt.Sprintf("%d:%s", candidate, module)
}

// Analysis returns the stored module result for a candidate, if any.
func (r Run) Analysis(candidate int, module string) (Analysis, bool) {
	a, ok := r.Analyses[analysisKey(candidate, module)]
	return a, ok
}

// RunStore keeps runs in memory until they expire.
type RunStore struct {
	cache *cache.Cache
	mu    sync.Mutex
	ttl   time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

func (s *RunStore) Create(job models.JobDescription) Run {
	run := Run{
		ID:        uuid.New().String(),
		Job:       job,
		Status:    RunProcessing,
		Analyses:  map[string]Analysis{},
		CreatedAt: time.Now(),
	}
	s.cache.Set(run.ID, run, s.ttl)
	return run
}

func (s *RunStore) Get(id string) (Run, error) {
	value, ok := s.cache.Get(id)
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return value.(Run), nil
}

// Update applies fn to a copy of the run and stores the result. Updates to
// the same store are serialized.
func (s *RunStore) Update(id string, fn func(run *Run)) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.Get(id)
	if err != nil {
		return Run{}, err
	}

	analyses := make(map[string]Analysis, len(run.Analyses))
	for k, v := range run.Analyses {
		analyses[k] = v
	}
	run.Analyses = analyses

	fn(&run)
	s.cache.Set(id, run, s.ttl)
	return run, nil
}

// SetAnalysis records a module result for the candidate at index candidate.
func (s *RunStore) SetAnalysis(id string, candidate int, analysis Analysis) error {
	_, err := s.Update(id, func(run *Run) {
		run.Analyses[analysisKey(candidate, analysis.Module)] = analysis
	})
	return err
}
