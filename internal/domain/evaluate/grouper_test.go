package evaluate_test

import (
	"errors"
	"testing"

	"github.com/okian/peergrade/internal/domain/evaluate"
	"github.com/okian/peergrade/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(submissionID, assessmentID string) model.GradeRecord {
	return model.GradeRecord{
		SubmissionID: submissionID,
		AssessmentID: assessmentID,
		DimensionID:  "d1",
	}
}

func TestGrouper(t *testing.T) {
	Convey("Given a grouper collecting emitted batches", t, func() {
		var batches [][]model.GradeRecord
		g := evaluate.NewGrouper(func(batch []model.GradeRecord) error {
			batches = append(batches, batch)
			return nil
		})

		Convey("When pushing records for several submissions", func() {
			So(g.Push(rec("s1", "a1")), ShouldBeNil)
			So(g.Push(rec("s1", "a2")), ShouldBeNil)
			So(g.Push(rec("s2", "a3")), ShouldBeNil)
			So(g.Push(rec("s3", "a4")), ShouldBeNil)
			So(g.Flush(), ShouldBeNil)

			Convey("Then each contiguous run becomes one batch", func() {
				So(batches, ShouldHaveLength, 3)
				So(batches[0], ShouldHaveLength, 2)
				So(batches[0][0].SubmissionID, ShouldEqual, "s1")
				So(batches[1][0].SubmissionID, ShouldEqual, "s2")
				So(batches[2][0].SubmissionID, ShouldEqual, "s3")
			})
		})

		Convey("When the stream holds a single submission", func() {
			So(g.Push(rec("s1", "a1")), ShouldBeNil)
			So(g.Push(rec("s1", "a2")), ShouldBeNil)

			Convey("Then nothing is emitted before Flush", func() {
				So(batches, ShouldBeEmpty)
			})

			Convey("Then Flush hands over the trailing batch", func() {
				So(g.Flush(), ShouldBeNil)
				So(batches, ShouldHaveLength, 1)
				So(batches[0], ShouldHaveLength, 2)
			})
		})

		Convey("When the stream is empty", func() {
			Convey("Then Flush is a no-op", func() {
				So(g.Flush(), ShouldBeNil)
				So(batches, ShouldBeEmpty)
			})
		})

		Convey("When Flush is called twice", func() {
			So(g.Push(rec("s1", "a1")), ShouldBeNil)
			So(g.Flush(), ShouldBeNil)
			So(g.Flush(), ShouldBeNil)

			Convey("Then the batch is emitted only once", func() {
				So(batches, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given an emit callback that fails", t, func() {
		boom := errors.New("boom")
		g := evaluate.NewGrouper(func(batch []model.GradeRecord) error {
			return boom
		})

		Convey("When a batch boundary is reached", func() {
			So(g.Push(rec("s1", "a1")), ShouldBeNil)
			err := g.Push(rec("s2", "a2"))

			Convey("Then Push surfaces the callback error", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When flushing", func() {
			So(g.Push(rec("s1", "a1")), ShouldBeNil)

			Convey("Then Flush surfaces the callback error", func() {
				So(errors.Is(g.Flush(), boom), ShouldBeTrue)
			})
		})
	})
}
