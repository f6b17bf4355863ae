package creator_test

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/aimehq/aime/internal/domain/creator"
	"github.com/aimehq/aime/internal/domain/types"
	"github.com/aimehq/aime/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestParsePlatform(t *testing.T) {
	convey.Convey("Given platform names from the dashboard", t, func() {
		for in, want := range map[string]creator.Platform{
			"IG":        creator.PlatformInstagram,
			"TikTok":    creator.PlatformTikTok,
			" youtube ": creator.PlatformYouTube,
			"other":     creator.PlatformOther,
		} {
			got, err := creator.ParsePlatform(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, want)
		}

		_, err := creator.ParsePlatform("myspace")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestRegistry_Upsert(t *testing.T) {
	convey.Convey("Given a seeded registry", t, func() {
		r := creator.NewRegistry(creator.WithSeed(creator.Seeds()...))

		convey.So(r.Count(), convey.ShouldEqual, 6)
		convey.So(r.List("ADEEVA"), convey.ShouldHaveLength, 2)

		convey.Convey("When registering a new creator", func() {
			c, created, err := r.Upsert(creator.Creator{
				ID: "cr900", Handle: "<b>@dr_smith</b>", Platform: "IG", PartnerID: "Gima",
				Tags: []string{"practitioner", "<i></i>"},
			})

			convey.Convey("Then it is cleaned and appended", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(created, convey.ShouldBeTrue)
				convey.So(c.Handle, convey.ShouldEqual, "@dr_smith")
				convey.So(c.Platform, convey.ShouldEqual, creator.PlatformInstagram)
				convey.So(c.PartnerID, convey.ShouldEqual, "gima")
				convey.So(c.Tags, convey.ShouldResemble, []string{"practitioner"})
				convey.So(c.Status, convey.ShouldEqual, creator.StatusLive)
				gima := r.List("gima")
				convey.So(gima[len(gima)-1].ID, convey.ShouldEqual, "cr900")
			})
		})

		convey.Convey("When replacing an existing creator", func() {
			_, created, err := r.Upsert(creator.Creator{ID: "cr001", Handle: "@maxopolis", Platform: "instagram", Status: "paused"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(created, convey.ShouldBeFalse)
			c, _ := r.Get("cr001")
			convey.So(c.Status, convey.ShouldEqual, creator.StatusPaused)
			convey.So(r.Count(), convey.ShouldEqual, 6)
		})

		convey.Convey("When required fields are missing", func() {
			_, _, err := r.Upsert(creator.Creator{Name: "nobody"})
			convey.So(errors.Is(err, creator.ErrInvalidCreator), convey.ShouldBeTrue)
			convey.So(errors.Is(err, types.ErrValidation), convey.ShouldBeTrue)
			for _, field := range []string{"id", "handle", "platform"} {
				convey.So(err.Error(), convey.ShouldContainSubstring, field+" is required")
			}
			convey.So(r.Count(), convey.ShouldEqual, 6)
		})

		convey.Convey("When looking up an unknown creator", func() {
			_, err := r.Get("cr404")
			convey.So(errors.Is(err, types.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestRegistry_Assign(t *testing.T) {
	convey.Convey("Given a seeded registry", t, func() {
		r := creator.NewRegistry(creator.WithSeed(creator.Seeds()...))

		convey.Convey("When assigning an existing creator without a persona", func() {
			c, err := r.Assign(creator.Assignment{CreatorID: "cr101", Partner: "GIMA", Tags: []string{"practitioner", "education"}}, "P-GIMA-EDU")

			convey.Convey("Then the partner default persona applies and tags merge", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.PartnerID, convey.ShouldEqual, "gima")
				convey.So(c.DefaultPersona, convey.ShouldEqual, "P-GIMA-EDU")
				convey.So(c.Tags, convey.ShouldResemble, []string{"practitioner", "education"})
				convey.So(c.Handle, convey.ShouldEqual, "@dr_rivera")
				convey.So(r.List("adeeva"), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When naming a persona explicitly", func() {
			c, err := r.Assign(creator.Assignment{CreatorID: "cr001", Partner: "allmax", PersonaID: "P-002"}, "P-001")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.DefaultPersona, convey.ShouldEqual, "P-002")
		})

		convey.Convey("When assigning an unknown creator with a handle and platform", func() {
			c, err := r.Assign(creator.Assignment{CreatorID: "cr777", Partner: "gima", Handle: "@newdoc", Platform: "yt"}, "P-GIMA-EDU")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Platform, convey.ShouldEqual, creator.PlatformYouTube)
			convey.So(r.Count(), convey.ShouldEqual, 7)
		})

		convey.Convey("When assigning an unknown creator without a handle", func() {
			_, err := r.Assign(creator.Assignment{CreatorID: "cr778", Partner: "gima"}, "P-GIMA-EDU")
			convey.So(errors.Is(err, creator.ErrInvalidCreator), convey.ShouldBeTrue)
			convey.So(r.Count(), convey.ShouldEqual, 6)
		})

		convey.Convey("When assignments for one creator run concurrently", func() {
			const n = 8
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = r.Assign(creator.Assignment{CreatorID: "cr101", Partner: "gima", Tags: []string{fmt.Sprintf("tag%d", i)}}, "P-GIMA-EDU")
				}(i)
			}
			wg.Wait()

			convey.Convey("Then every tag should survive", func() {
				c, err := r.Get("cr101")
				convey.So(err, convey.ShouldBeNil)
				for i := 0; i < n; i++ {
					convey.So(c.Tags, convey.ShouldContain, fmt.Sprintf("tag%d", i))
				}
			})
		})

		convey.Convey("When the creator id or partner is missing", func() {
			_, err := r.Assign(creator.Assignment{}, "P-001")
			convey.So(err.Error(), convey.ShouldContainSubstring, "creatorId is required")
			convey.So(err.Error(), convey.ShouldContainSubstring, "partner is required")
		})
	})
}
