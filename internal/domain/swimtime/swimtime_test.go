package swimtime_test

import (
	"math"
	"testing"

	"github.com/okian/recordbook/internal/domain/swimtime"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given clock-format swim times", t, func() {
		Convey("When the time has no minutes", func() {
			So(swimtime.Parse("24.50"), ShouldAlmostEqual, 24.50, 1e-9)
			So(swimtime.Parse(" 52.6 "), ShouldAlmostEqual, 52.6, 1e-9)
		})

		Convey("When the time has minutes", func() {
			So(swimtime.Parse("1:00.60"), ShouldAlmostEqual, 60.60, 1e-9)
			So(swimtime.Parse("05:34.97"), ShouldAlmostEqual, 334.97, 1e-9)
			So(swimtime.Parse("00:56.59"), ShouldAlmostEqual, 56.59, 1e-9)
		})

		Convey("When the time carries table decorations", func() {
			So(swimtime.Parse("**1:42.54**"), ShouldAlmostEqual, 102.54, 1e-9)
			So(swimtime.Parse("23.10 (r)"), ShouldAlmostEqual, 23.10, 1e-9)
		})

		Convey("When the time cannot be read", func() {
			for _, raw := range []string{"", "NT", "DQ", "1:2:3", "abc", "1:5.00", "-3.2", "0", "0:00.00", "1:75.00"} {
				So(math.IsInf(swimtime.Parse(raw), 1), ShouldBeTrue)
			}
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given seconds", t, func() {
		Convey("Then sub-minute times drop the minutes", func() {
			So(swimtime.Format(56.59), ShouldEqual, "56.59")
			So(swimtime.Format(52.6), ShouldEqual, "52.60")
		})

		Convey("Then longer times use M:SS.ss", func() {
			So(swimtime.Format(60.6), ShouldEqual, "1:00.60")
			So(swimtime.Format(334.97), ShouldEqual, "5:34.97")
			So(swimtime.Format(59.999), ShouldEqual, "1:00.00")
		})

		Convey("Then invalid times render a placeholder", func() {
			So(swimtime.Format(swimtime.Unparsed), ShouldEqual, "-")
			So(swimtime.Format(0), ShouldEqual, "-")
		})

		Convey("Then formatting round-trips through Parse", func() {
			for _, v := range []float64{21.04, 47.5, 102.54, 334.97} {
				So(swimtime.Parse(swimtime.Format(v)), ShouldAlmostEqual, v, 1e-9)
			}
		})
	})
}

func TestSum(t *testing.T) {
	Convey("Given leg times", t, func() {
		So(swimtime.Sum(22.1, 23.4), ShouldAlmostEqual, 45.5, 1e-9)
		So(math.IsInf(swimtime.Sum(22.1, swimtime.Unparsed), 1), ShouldBeTrue)
		So(math.IsInf(swimtime.Sum(), 1), ShouldBeTrue)
		So(swimtime.Round2(90.404999), ShouldEqual, 90.40)
	})
}
