package types_test

import (
	"errors"
	"fmt"
	"testing"

	types "github.com/aimehq/aime/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTag(t *testing.T) {
	Convey("Given a tagged sentinel", t, func() {
		errMissing := types.Tag(types.ErrNotFound, "partner not found")

		Convey("When it is wrapped with context", func() {
			err := fmt.Errorf("%w: %s", errMissing, "acme")

			Convey("Then it keeps its own message", func() {
				So(err.Error(), ShouldEqual, "partner not found: acme")
			})

			Convey("And it matches both the sentinel and the kind", func() {
				So(errors.Is(err, errMissing), ShouldBeTrue)
				So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, types.ErrValidation), ShouldBeFalse)
			})
		})
	})
}

func TestKindOf(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		So(types.KindOf(types.Tag(types.ErrValidation, "bad")), ShouldEqual, types.ErrValidation)
		So(types.KindOf(fmt.Errorf("x: %w", types.ErrIO)), ShouldEqual, types.ErrIO)
		So(types.KindOf(types.Tag(types.ErrParse, "bad json")), ShouldEqual, types.ErrParse)
		So(types.KindOf(types.Tag(types.ErrPrecondition, "feature off")), ShouldEqual, types.ErrPrecondition)
		So(types.KindOf(errors.New("boom")), ShouldBeNil)
		So(types.KindOf(nil), ShouldBeNil)
	})
}
