package evaluate_test

import (
	"errors"
	"testing"

	"github.com/okian/peergrade/internal/domain/evaluate"
	"github.com/okian/peergrade/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// rubric builds a single-dimension rubric with the given raw bounds.
func rubric(min, max float64) map[string]model.DimensionInfo {
	return map[string]model.DimensionInfo{
		"d1": {ID: "d1", Weight: 1, Min: min, Max: max},
	}
}

// grade builds one grade record for the single-dimension rubric.
func grade(assessmentID string, raw float64, stored *float64) model.GradeRecord {
	return model.GradeRecord{
		AssessmentID:     assessmentID,
		AssessmentWeight: 1,
		ReviewerID:       "reviewer-" + assessmentID,
		GradingGrade:     stored,
		SubmissionID:     "sub-1",
		DimensionID:      "d1",
		Grade:            raw,
	}
}

func ptr(v float64) *float64 { return &v }

func updatesByID(updates []model.GradingGradeUpdate) map[string]float64 {
	out := make(map[string]float64, len(updates))
	for _, u := range updates {
		out[u.AssessmentID] = u.GradingGrade
	}
	return out
}

func TestProcessBatch(t *testing.T) {
	Convey("Given an evaluator over a 0-10 rubric", t, func() {
		ev := evaluate.New(rubric(0, 10))

		Convey("When all reviewers agree exactly", func() {
			batch := []model.GradeRecord{
				grade("a1", 7, nil),
				grade("a2", 7, nil),
				grade("a3", 7, nil),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then every reviewer earns the full grading grade", func() {
				So(err, ShouldBeNil)
				So(res.Skipped, ShouldBeFalse)
				So(res.Assessments, ShouldEqual, 3)
				got := updatesByID(res.Updates)
				So(got, ShouldHaveLength, 3)
				So(got["a1"], ShouldEqual, 100)
				So(got["a2"], ShouldEqual, 100)
				So(got["a3"], ShouldEqual, 100)
			})
		})

		Convey("When two reviewers disagree symmetrically", func() {
			batch := []model.GradeRecord{
				grade("a1", 2, nil),
				grade("a2", 8, nil),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then both are equally close to the average and both earn 100", func() {
				So(err, ShouldBeNil)
				got := updatesByID(res.Updates)
				So(got, ShouldHaveLength, 2)
				So(got["a1"], ShouldEqual, 100)
				So(got["a2"], ShouldEqual, 100)
			})
		})
	})

	Convey("Given an evaluator over a 0-100 rubric", t, func() {
		ev := evaluate.New(rubric(0, 100))

		Convey("When one reviewer is an outlier", func() {
			// normalized grades 20, 30, 100; average 50
			// population variance 3800/3; best assessment is a2
			batch := []model.GradeRecord{
				grade("a1", 20, nil),
				grade("a2", 30, nil),
				grade("a3", 100, nil),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then grades fall with distance from the best assessment", func() {
				So(err, ShouldBeNil)
				got := updatesByID(res.Updates)
				So(got, ShouldHaveLength, 3)
				So(got["a2"], ShouldEqual, 100)
				So(got["a1"], ShouldAlmostEqual, 99.84211, 0.00001)
				So(got["a3"], ShouldAlmostEqual, 45.84211, 0.00001)
			})
		})

		Convey("When stored grades already match the outcome", func() {
			batch := []model.GradeRecord{
				grade("a1", 7, ptr(100)),
				grade("a2", 7, ptr(100)),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then no updates are emitted", func() {
				So(err, ShouldBeNil)
				So(res.Updates, ShouldBeEmpty)
			})
		})

		Convey("When only one stored grade is stale", func() {
			batch := []model.GradeRecord{
				grade("a1", 7, ptr(42.5)),
				grade("a2", 7, ptr(100)),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then only the stale assessment is updated", func() {
				So(err, ShouldBeNil)
				got := updatesByID(res.Updates)
				So(got, ShouldHaveLength, 1)
				So(got["a1"], ShouldEqual, 100)
			})
		})

		Convey("When the stored grade differs only by floating point noise", func() {
			batch := []model.GradeRecord{
				grade("a1", 7, ptr(100.000001)),
				grade("a2", 7, ptr(100)),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then the tolerance suppresses the update", func() {
				So(err, ShouldBeNil)
				So(res.Updates, ShouldBeEmpty)
			})
		})

		Convey("When running the evaluation twice", func() {
			batch := []model.GradeRecord{
				grade("a1", 20, nil),
				grade("a2", 30, nil),
				grade("a3", 100, nil),
			}
			first, err := ev.ProcessBatch(batch)
			So(err, ShouldBeNil)

			applied := updatesByID(first.Updates)
			for i := range batch {
				if g, ok := applied[batch[i].AssessmentID]; ok {
					batch[i].GradingGrade = ptr(g)
				}
			}
			second, err := ev.ProcessBatch(batch)

			Convey("Then the second run is a no-op", func() {
				So(err, ShouldBeNil)
				So(second.Updates, ShouldBeEmpty)
			})
		})
	})

	Convey("Given degenerate batches", t, func() {
		ev := evaluate.New(rubric(0, 100))

		Convey("When the batch is empty", func() {
			res, err := ev.ProcessBatch(nil)
			So(err, ShouldBeNil)
			So(res.Skipped, ShouldBeTrue)
		})

		Convey("When every assessment weight is zero", func() {
			batch := []model.GradeRecord{
				grade("a1", 20, nil),
				grade("a2", 80, nil),
			}
			for i := range batch {
				batch[i].AssessmentWeight = 0
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then the batch is skipped without error", func() {
				So(err, ShouldBeNil)
				So(res.Skipped, ShouldBeTrue)
				So(res.Updates, ShouldBeEmpty)
			})
		})

		Convey("When a single assessment covers the submission", func() {
			res, err := ev.ProcessBatch([]model.GradeRecord{grade("a1", 64, nil)})

			Convey("Then the lone reviewer earns 100", func() {
				So(err, ShouldBeNil)
				got := updatesByID(res.Updates)
				So(got["a1"], ShouldEqual, 100)
			})
		})
	})

	Convey("Given rubric configuration problems", t, func() {
		Convey("When a dimension declares max equal to min", func() {
			ev := evaluate.New(rubric(5, 5))
			_, err := ev.ProcessBatch([]model.GradeRecord{
				grade("a1", 5, nil),
				grade("a2", 5, nil),
			})

			Convey("Then normalization fails with the scale error", func() {
				So(errors.Is(err, evaluate.ErrInvalidScale), ShouldBeTrue)
			})
		})

		Convey("When a record names an undeclared dimension", func() {
			ev := evaluate.New(rubric(0, 100))
			bad := grade("a1", 50, nil)
			bad.DimensionID = "ghost"
			_, err := ev.ProcessBatch([]model.GradeRecord{bad})

			So(errors.Is(err, evaluate.ErrUnknownDimension), ShouldBeTrue)
		})

		Convey("When assessments cover different dimension sets", func() {
			two := map[string]model.DimensionInfo{
				"d1": {ID: "d1", Weight: 1, Min: 0, Max: 100},
				"d2": {ID: "d2", Weight: 1, Min: 0, Max: 100},
			}
			ev := evaluate.New(two)
			r1 := grade("a1", 50, nil)
			r2 := grade("a1", 60, nil)
			r2.DimensionID = "d2"
			r3 := grade("a2", 50, nil)
			_, err := ev.ProcessBatch([]model.GradeRecord{r1, r2, r3})

			So(errors.Is(err, evaluate.ErrDimensionMismatch), ShouldBeTrue)
		})
	})

	Convey("Given a non-trivial raw scale", t, func() {
		// raw bounds -10..10, so raw 0 normalizes to 50
		ev := evaluate.New(rubric(-10, 10))

		Convey("When one reviewer matches the average exactly", func() {
			batch := []model.GradeRecord{
				grade("a1", -10, nil),
				grade("a2", 0, nil),
				grade("a3", 10, nil),
			}
			res, err := ev.ProcessBatch(batch)

			Convey("Then the null distance to the average keeps that reviewer out of the best set", func() {
				// normalized {0, 50, 100}, variance 5000/3; a2 has no
				// measurable distance to the average, so a1 and a3 tie as
				// best at distance 15 and a2 is graded against them.
				So(err, ShouldBeNil)
				got := updatesByID(res.Updates)
				So(got["a1"], ShouldEqual, 100)
				So(got["a3"], ShouldEqual, 100)
				So(got["a2"], ShouldAlmostEqual, 85, 0.00001)
			})
		})
	})
}

func TestWithSensitivity(t *testing.T) {
	Convey("Given evaluators with different sensitivities", t, func() {
		batch := func() []model.GradeRecord {
			return []model.GradeRecord{
				grade("a1", 20, nil),
				grade("a2", 30, nil),
				grade("a3", 100, nil),
			}
		}

		lax := evaluate.New(rubric(0, 100), evaluate.WithSensitivity(5))
		strict := evaluate.New(rubric(0, 100), evaluate.WithSensitivity(1))

		laxRes, err := lax.ProcessBatch(batch())
		So(err, ShouldBeNil)
		strictRes, err := strict.ProcessBatch(batch())
		So(err, ShouldBeNil)

		Convey("Then the stricter evaluator punishes the outlier harder", func() {
			laxGot := updatesByID(laxRes.Updates)
			strictGot := updatesByID(strictRes.Updates)
			So(strictGot["a3"], ShouldBeLessThan, laxGot["a3"])
			So(strictGot["a2"], ShouldEqual, 100)
		})

		Convey("Then a non-positive sensitivity falls back to the default", func() {
			fallback := evaluate.New(rubric(0, 100), evaluate.WithSensitivity(0))
			res, err := fallback.ProcessBatch(batch())
			So(err, ShouldBeNil)
			got := updatesByID(res.Updates)
			So(got["a3"], ShouldAlmostEqual, updatesByID(laxRes.Updates)["a3"], 0.00001)
		})
	})
}
