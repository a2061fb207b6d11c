package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"jira-wip/internal/eventlog"
)

// Workflow is the status sequence every generated item walks through.
var Workflow = []string{"To Do", "In Progress", "Testing/Review", "Done"}

type GeneratorConfig struct {
	Scenario string // "calm" or "overloaded"
	Count    int
	Seed     uint64
	Now      time.Time
}

// scenario holds arrival spacing and Weibull (k, lambda) residencies in days for
// To Do, In Progress and Testing/Review.
type scenario struct {
	arrivalHours float64
	k, lambda    [3]float64
}

var scenarios = map[string]scenario{
	// Roughly four items in progress and one or two in review at any time.
	"calm": {arrivalHours: 24, k: [3]float64{1.5, 2.5, 2.0}, lambda: [3]float64{2, 4, 1.5}},
	// Arrivals outpace finishing; In Progress and Testing/Review pile up.
	"overloaded": {arrivalHours: 8, k: [3]float64{1.2, 1.5, 1.2}, lambda: [3]float64{1.5, 6, 3}},
}

// Scenarios lists the supported scenario names.
func Scenarios() []string {
	return []string{"calm", "overloaded"}
}

func Generate(cfg GeneratorConfig) ([]eventlog.IssueEvent, error) {
	sc, ok := scenarios[cfg.Scenario]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (calm or overloaded)", cfg.Scenario)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var events []eventlog.IssueEvent

	// The last arrival lands at cfg.Now
	spacing := time.Duration(sc.arrivalHours * float64(time.Hour))
	first := cfg.Now.Add(-time.Duration(cfg.Count) * spacing)

	for i := 0; i < cfg.Count; i++ {
		key := fmt.Sprintf("MOCK-%d", i+1)
		issueType := "Story"
		if rng.Float64() < 0.25 {
			issueType = "Bug"
		}

		arrival := first.Add(time.Duration(i) * spacing)
		events = append(events, eventlog.IssueEvent{
			IssueKey: key, IssueType: issueType, EventType: eventlog.Created, Timestamp: arrival.UnixMicro(), ToStatus: Workflow[0],
		})

		at := arrival
		seq := 0
		for stage := 0; stage < len(Workflow)-1; stage++ {
			days := weibullSample(rng, sc.k[stage], sc.lambda[stage])
			at = at.Add(time.Duration(days * 24 * float64(time.Hour)))
			if !at.Before(cfg.Now) {
				break
			}

			seq++
			events = append(events, eventlog.IssueEvent{
				IssueKey: key, IssueType: issueType, EventType: eventlog.Transitioned, Timestamp: at.UnixMicro(), SequenceID: seq,
				FromStatus: Workflow[stage], ToStatus: Workflow[stage+1],
			})
			if Workflow[stage+1] == "Done" {
				seq++
				events = append(events, eventlog.IssueEvent{
					IssueKey: key, IssueType: issueType, EventType: eventlog.Resolved, Timestamp: at.UnixMicro(), SequenceID: seq, Resolution: "Done",
				})
			}
		}
	}

	return events, nil
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the events as the JSONL event log of sourceID in outDir.
func Save(outDir string, sourceID string, events []eventlog.IssueEvent) error {
	store := eventlog.NewEventStore()
	store.Append(sourceID, events)
	return store.Save(outDir, sourceID)
}
