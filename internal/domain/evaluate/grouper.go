package evaluate

import "github.com/okian/peergrade/internal/domain/model"

// Grouper splits an ordered stream of grade records into maximal contiguous
// runs sharing a submission id. The input is assumed to be clustered by
// submission already; the grouper only detects the boundaries.
//
// Each completed run is handed to the emit callback as soon as a record for a
// different submission arrives. Flush must be called after the last record to
// hand over the trailing run; flushing an empty grouper is a no-op so an
// empty input yields zero emitted batches.
type Grouper struct {
	emit    func(batch []model.GradeRecord) error
	current []model.GradeRecord
}

// NewGrouper creates a grouper that emits completed batches to emit.
func NewGrouper(emit func(batch []model.GradeRecord) error) *Grouper {
	return &Grouper{emit: emit}
}

// Push adds one record to the stream, emitting the previous batch when the
// submission id changes.
func (g *Grouper) Push(rec model.GradeRecord) error {
	if len(g.current) > 0 && g.current[0].SubmissionID != rec.SubmissionID {
		if err := g.emit(g.current); err != nil {
			return err
		}
		g.current = nil
	}
	g.current = append(g.current, rec)
	return nil
}

// Flush emits the trailing batch, if any. Safe to call on an exhausted or
// never-fed grouper.
func (g *Grouper) Flush() error {
	if len(g.current) == 0 {
		return nil
	}
	batch := g.current
	g.current = nil
	return g.emit(batch)
}
