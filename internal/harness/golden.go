package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/plandeck/internal/doc"
)

// snapshot builds the canonical JSON of the final state. Only values the
// scenario controls appear in it; tokens and timestamps are left out.
func (h *Harness) snapshot(name string, steps []StepRecord) ([]byte, error) {
	records := make(doc.Array, len(steps))
	for i, s := range steps {
		rec := doc.NewObject(
			doc.O("seq", doc.Number(s.Seq)),
			doc.O("op", doc.String(s.Op)),
			doc.O("outcome", doc.String(s.Outcome)),
		)
		if s.Value != nil {
			rec["value"] = s.Value
		}
		records[i] = rec
	}

	ids := make([]string, 0)
	for _, t := range h.session.Templates() {
		ids = append(ids, t.ID)
	}

	return doc.MarshalCanonical(doc.NewObject(
		doc.O("name", doc.String(name)),
		doc.O("source", doc.String(string(h.session.Source()))),
		doc.O("mode", doc.String(h.session.Mode().String())),
		doc.O("document", h.session.Document()),
		doc.O("steps", records),
		doc.O("templates", doc.Strings(ids...)),
	))
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// Returns the result so callers can also check Pass and Errors.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Snapshot)

	return result, nil
}
