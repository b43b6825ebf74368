package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	convey.Convey("Given a logger at warn level", t, func() {
		var buf bytes.Buffer
		log, err := New(&buf, "warn")
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When logging below the level", func() {
			log.Info(ctx, "quiet")
			log.Debug(ctx, "quieter")

			convey.Convey("Then nothing is written", func() {
				convey.So(buf.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When logging with fields through a named logger", func() {
			log.Named("runner").With(String("run_id", "abc")).Warn(ctx, "diagnostic",
				String("code", "no_timer_signal"), Int("rows", 3), Error(errors.New("boom")))

			convey.Convey("Then the fields appear in the output", func() {
				out := buf.String()
				convey.So(out, convey.ShouldContainSubstring, "level=WARN")
				convey.So(out, convey.ShouldContainSubstring, "logger=runner")
				convey.So(out, convey.ShouldContainSubstring, "run_id=abc")
				convey.So(out, convey.ShouldContainSubstring, "code=no_timer_signal")
				convey.So(out, convey.ShouldContainSubstring, "rows=3")
				convey.So(out, convey.ShouldContainSubstring, "error=boom")
			})
		})
	})

	convey.Convey("Given an unknown level", t, func() {
		_, err := New(&bytes.Buffer{}, "loud")
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(SetLevelString("loud"), convey.ShouldNotBeNil)
	})

	convey.Convey("Given a level with odd casing", t, func() {
		lv, err := ParseLevel(" Warning ")
		convey.So(err, convey.ShouldBeNil)
		convey.So(strings.ToLower(lv.String()), convey.ShouldEqual, "warn")
	})

	convey.Convey("Given no global logger", t, func() {
		convey.So(func() { Get().Info(context.Background(), "dropped") }, convey.ShouldNotPanic)
	})
}
