package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
}

var _ Recorder = (*testRecorder)(nil)

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}

func (t *testRecorder) ObserveBuildDuration(_ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildDurations++
}

func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildOutcomes[outcome]++
}

func (t *testRecorder) AddPagesWritten(int)      {}
func (t *testRecorder) AddDocumentsSkipped(int)  {}
func (t *testRecorder) AddLinkWarnings(int)      {}
func (t *testRecorder) IncRebuildTrigger(string) {}

func TestRecorderImplementations(t *testing.T) {
	recorders := []Recorder{NoopRecorder{}, newTestRecorder(), NewPrometheusRecorder(nil)}
	for _, r := range recorders {
		r.ObserveStageDuration("render", time.Millisecond)
		r.IncStageResult("render", ResultWarning)
		r.IncBuildOutcome(BuildOutcomeWarning)
	}

	tr := recorders[1].(*testRecorder)
	require.Equal(t, 1, tr.stageDurations["render"])
	require.Equal(t, 1, tr.stageResults["render"][ResultWarning])
	require.Equal(t, 1, tr.buildOutcomes[BuildOutcomeWarning])
}
