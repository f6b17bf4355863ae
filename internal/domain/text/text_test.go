package text_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/aimehq/aime/internal/domain/text"
)

func TestClean(t *testing.T) {
	convey.Convey("Given submitted free text", t, func() {
		convey.Convey("Then markup is stripped", func() {
			convey.So(text.Clean("<b>Allmax Coach</b>"), convey.ShouldEqual, "Allmax Coach")
			convey.So(text.Clean(`<a href="javascript:alert(1)">@liftlife</a>`), convey.ShouldEqual, "@liftlife")
		})

		convey.Convey("Then plain text keeps its characters", func() {
			convey.So(text.Clean("  Mind & Muscle  "), convey.ShouldEqual, "Mind & Muscle")
			convey.So(text.Clean(""), convey.ShouldEqual, "")
		})

		convey.Convey("Then lists lose entries that clean to nothing", func() {
			convey.So(text.CleanAll([]string{"practitioner", "<i></i>", " education "}),
				convey.ShouldResemble, []string{"practitioner", "education"})
			convey.So(text.CleanAll(nil), convey.ShouldBeNil)
		})
	})
}
