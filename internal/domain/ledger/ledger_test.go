package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/okian/recordbook/internal/domain/ledger"
	"github.com/okian/recordbook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var free100FR = model.Category{Gender: model.GenderMale, Event: model.Event100Free, Grade: model.GradeFreshman}

func entry(c model.Category, name string, secs float64, day int) model.TimeEntry {
	var d time.Time
	if day > 0 {
		d = time.Date(2020, time.January, day, 0, 0, 0, 0, time.UTC)
	}
	return model.TimeEntry{
		Category: c,
		Seconds:  secs,
		Swimmer:  name,
		Date:     d,
		Meet:     "Meet " + name,
		Origin:   model.OriginIndividual,
	}
}

func batch(season string, entries ...model.TimeEntry) ledger.SeasonBatch {
	return ledger.SeasonBatch{Season: model.Season(season), Entries: entries}
}

func eventsFor(events []model.RecordEvent, c model.Category) []model.RecordEvent {
	var out []model.RecordEvent
	for _, ev := range events {
		if ev.Category == c {
			out = append(out, ev)
		}
	}
	return out
}

func TestBuildScenario(t *testing.T) {
	Convey("Given three seasons of 100 Free freshman swims", t, func() {
		seasons := []ledger.SeasonBatch{
			batch("2021-22", entry(free100FR, "Alice", 25.00, 1)),
			batch("2022-23", entry(free100FR, "Bob", 24.50, 2)),
			batch("2023-24", entry(free100FR, "Carol", 24.80, 3)),
		}

		Convey("When the ledger is built", func() {
			res, err := ledger.Build(context.Background(), seasons)
			So(err, ShouldBeNil)
			evs := eventsFor(res.Events, free100FR)

			Convey("Then the first season sets a record with no previous holder", func() {
				So(len(evs), ShouldEqual, 2)
				So(evs[0].Season, ShouldEqual, model.Season("2021-22"))
				So(evs[0].New.Swimmer, ShouldEqual, "Alice")
				So(evs[0].Previous, ShouldBeNil)
			})

			Convey("Then the second season supersedes it", func() {
				So(evs[1].New.Swimmer, ShouldEqual, "Bob")
				So(evs[1].Previous, ShouldNotBeNil)
				So(evs[1].Previous.Swimmer, ShouldEqual, "Alice")
				So(evs[1].Previous.Seconds, ShouldEqual, 25.00)
				So(evs[1].Previous.Season, ShouldEqual, model.Season("2021-22"))
			})

			Convey("Then the slower third season emits nothing and Bob holds the record", func() {
				for _, ev := range res.Events {
					So(ev.Season, ShouldNotEqual, model.Season("2023-24"))
				}
				l := ledger.New()
				for _, s := range seasons {
					_, applyErr := l.Apply(context.Background(), s)
					So(applyErr, ShouldBeNil)
				}
				row, ok := l.Get(free100FR)
				So(ok, ShouldBeTrue)
				So(row.Swimmer, ShouldEqual, "Bob")
				So(row.Seconds, ShouldEqual, 24.50)
			})
		})
	})
}

func TestMonotonicHistory(t *testing.T) {
	Convey("Given many seasons with noisy times", t, func() {
		times := []float64{26.1, 25.9, 26.4, 25.2, 25.2, 24.9, 25.5, 24.1}
		var seasons []ledger.SeasonBatch
		for i, secs := range times {
			s := fmt.Sprintf("%d-%02d", 2010+i, (11+i)%100)
			seasons = append(seasons, batch(s,
				entry(free100FR, fmt.Sprintf("Swimmer %d", i), secs, i+1),
				entry(free100FR, fmt.Sprintf("Slow %d", i), secs+3, i+1),
			))
		}

		res, err := ledger.Build(context.Background(), seasons)
		So(err, ShouldBeNil)
		evs := eventsFor(res.Events, free100FR)

		Convey("Then record times strictly decrease", func() {
			So(len(evs), ShouldEqual, 5)
			for i := 1; i < len(evs); i++ {
				So(evs[i].New.Seconds, ShouldBeLessThan, evs[i-1].New.Seconds)
			}
		})

		Convey("Then each previous holder is the prior event's new holder", func() {
			So(evs[0].Previous, ShouldBeNil)
			for i := 1; i < len(evs); i++ {
				So(evs[i].Previous, ShouldNotBeNil)
				So(*evs[i].Previous, ShouldResemble, evs[i-1].New)
			}
		})

		Convey("Then the final row is the minimum ever observed", func() {
			var row model.LedgerEntry
			for _, r := range res.Current {
				if r.Category == free100FR {
					row = r
				}
			}
			So(row.Seconds, ShouldEqual, 24.1)
		})
	})
}

func TestIdempotence(t *testing.T) {
	Convey("Given the same season list built twice", t, func() {
		girlsFly := model.Category{Gender: model.GenderFemale, Event: model.Event100Fly, Grade: model.GradeJunior}
		seasons := []ledger.SeasonBatch{
			batch("2018-19", entry(free100FR, "A", 55.0, 1), entry(girlsFly, "B", 61.2, 2)),
			batch("2019-20", entry(free100FR, "C", 54.0, 3), entry(girlsFly, "D", 60.9, 4)),
		}

		first, err1 := ledger.Build(context.Background(), seasons)
		second, err2 := ledger.Build(context.Background(), seasons)

		Convey("Then both results should be identical", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})
}

func TestSeasonOrdering(t *testing.T) {
	Convey("Given seasons supplied newest first", t, func() {
		seasons := []ledger.SeasonBatch{
			batch("2020-21", entry(free100FR, "Late", 25.0, 1)),
			batch("2019-20", entry(free100FR, "Early", 24.5, 2)),
		}

		res, err := ledger.Build(context.Background(), seasons)

		Convey("Then the build should fail instead of claiming a 25.0 record", func() {
			So(res, ShouldBeNil)
			So(errors.Is(err, ledger.ErrSeasonsOutOfOrder), ShouldBeTrue)
		})
	})

	Convey("Given the same season twice", t, func() {
		_, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2020-21", entry(free100FR, "A", 25.0, 1)),
			batch("2020-21", entry(free100FR, "B", 24.0, 1)),
		})
		So(errors.Is(err, ledger.ErrSeasonsOutOfOrder), ShouldBeTrue)
	})

	Convey("Given tokens the comparator cannot order", t, func() {
		res, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("spring", entry(free100FR, "A", 25.0, 1)),
			batch("autumn", entry(free100FR, "B", 24.0, 1)),
		})

		Convey("Then they are processed in the supplied order", func() {
			So(err, ShouldBeNil)
			So(len(eventsFor(res.Events, free100FR)), ShouldEqual, 2)
		})
	})

	Convey("Given a custom comparator", t, func() {
		order := map[model.Season]int{"fall": 0, "winter": 1}
		cmp := func(a, b model.Season) (int, bool) { return order[a] - order[b], true }

		_, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("winter", entry(free100FR, "A", 25.0, 1)),
			batch("fall", entry(free100FR, "B", 24.0, 1)),
		}, ledger.WithSeasonComparator(cmp))

		So(errors.Is(err, ledger.ErrSeasonsOutOfOrder), ShouldBeTrue)
	})
}

func TestSeasonReduction(t *testing.T) {
	Convey("Given several swims in one category in one season", t, func() {
		res, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2022-23",
				entry(free100FR, "Later", 24.0, 20),
				entry(free100FR, "Slow", 26.0, 1),
				entry(free100FR, "Sooner", 24.0, 5),
				entry(free100FR, "Undated", 24.0, 0),
			),
		})
		So(err, ShouldBeNil)
		evs := eventsFor(res.Events, free100FR)

		Convey("Then only one event is emitted, for the earliest of the tied best", func() {
			So(len(evs), ShouldEqual, 1)
			So(evs[0].New.Swimmer, ShouldEqual, "Sooner")
		})
	})

	Convey("Given an equal time in a later season", t, func() {
		res, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2022-23", entry(free100FR, "First", 24.0, 1)),
			batch("2023-24", entry(free100FR, "Tie", 24.0, 1)),
		})
		So(err, ShouldBeNil)

		Convey("Then the record is not superseded", func() {
			So(len(eventsFor(res.Events, free100FR)), ShouldEqual, 1)
		})
	})
}

func TestInvalidInput(t *testing.T) {
	Convey("Given unparsable times", t, func() {
		res, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2022-23",
				entry(free100FR, "NT", math.Inf(1), 1),
				entry(free100FR, "Zero", 0, 1),
				entry(free100FR, "Real", 58.3, 1),
			),
		})

		Convey("Then they are skipped without failing the run", func() {
			So(err, ShouldBeNil)
			So(res.Stats.EntriesSeen, ShouldEqual, 3)
			So(res.Stats.EntriesSkipped, ShouldEqual, 2)
			evs := eventsFor(res.Events, free100FR)
			So(len(evs), ShouldEqual, 1)
			So(evs[0].New.Swimmer, ShouldEqual, "Real")
		})
	})

	Convey("Given no seasons", t, func() {
		_, err := ledger.Build(context.Background(), nil)
		So(errors.Is(err, ledger.ErrNoSeasons), ShouldBeTrue)
	})

	Convey("Given an empty season token", t, func() {
		_, err := ledger.Build(context.Background(), []ledger.SeasonBatch{batch("")})
		So(errors.Is(err, ledger.ErrInvalidSeason), ShouldBeTrue)
	})

	Convey("Given an entry with no swimmer", t, func() {
		_, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2022-23", entry(free100FR, "", 55.0, 1)),
		})
		So(errors.Is(err, ledger.ErrInvalidEntry), ShouldBeTrue)
	})

	Convey("Given an entry with no gender", t, func() {
		c := free100FR
		c.Gender = ""
		_, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2022-23", entry(c, "A", 55.0, 1)),
		})
		So(errors.Is(err, ledger.ErrInvalidEntry), ShouldBeTrue)
	})
}

func TestOpenView(t *testing.T) {
	Convey("Given grade records for one event", t, func() {
		so := free100FR
		so.Grade = model.GradeSophomore
		open := free100FR.Open()

		res, err := ledger.Build(context.Background(), []ledger.SeasonBatch{
			batch("2021-22", entry(free100FR, "Fresh", 50.0, 1), entry(so, "Soph", 49.0, 1)),
			batch("2022-23", entry(free100FR, "Faster Fresh", 49.5, 1)),
			batch("2023-24", entry(so, "Fastest", 48.0, 1)),
		})
		So(err, ShouldBeNil)
		evs := eventsFor(res.Events, open)

		Convey("Then Open events are emitted only when the minimum improves", func() {
			So(len(evs), ShouldEqual, 2)
			So(evs[0].Season, ShouldEqual, model.Season("2021-22"))
			So(evs[0].New.Swimmer, ShouldEqual, "Soph")
			So(evs[0].Previous, ShouldBeNil)
			So(evs[1].Season, ShouldEqual, model.Season("2023-24"))
			So(evs[1].New.Swimmer, ShouldEqual, "Fastest")
			So(evs[1].Previous.Swimmer, ShouldEqual, "Soph")
		})

		Convey("Then the current state carries the derived Open row", func() {
			var got model.LedgerEntry
			for _, row := range res.Current {
				if row.Category == open {
					got = row
				}
			}
			So(got.Swimmer, ShouldEqual, "Fastest")
			So(got.Seconds, ShouldEqual, 48.0)
		})
	})

	Convey("Given entries tagged Open on input", t, func() {
		open := free100FR.Open()
		l := ledger.New()
		_, err := l.Apply(context.Background(), batch("2021-22", entry(open, "Unknown Grade", 47.0, 1)))
		So(err, ShouldBeNil)

		Convey("Then they are tracked as ungraded and feed the Open view", func() {
			ungraded := free100FR
			ungraded.Grade = model.GradeNone
			row, ok := l.Get(ungraded)
			So(ok, ShouldBeTrue)
			So(row.Swimmer, ShouldEqual, "Unknown Grade")

			view, ok := l.Get(open)
			So(ok, ShouldBeTrue)
			So(view.Seconds, ShouldEqual, 47.0)
		})

		Convey("Then the Open category cannot be set directly", func() {
			err := l.Set(model.LedgerEntry{Category: open, Seconds: 40, Swimmer: "X"})
			So(errors.Is(err, ledger.ErrDerivedCategory), ShouldBeTrue)
		})
	})
}

func TestCurrentOrder(t *testing.T) {
	Convey("Given rows across genders and events", t, func() {
		girls50 := model.Category{Gender: model.GenderFemale, Event: model.Event50Free, Grade: model.GradeSenior}
		boysIM := model.Category{Gender: model.GenderMale, Event: model.Event200IM, Grade: model.GradeJunior}
		l := ledger.New()
		_, err := l.Apply(context.Background(), batch("2021-22",
			entry(girls50, "G", 25.0, 1),
			entry(boysIM, "B", 130.0, 1),
			entry(free100FR, "F", 50.0, 1),
		))
		So(err, ShouldBeNil)

		rows := l.Current()

		Convey("Then boys come first, events in program order, Open after grades", func() {
			So(len(rows), ShouldEqual, 6)
			So(rows[0].Category, ShouldResemble, free100FR)
			So(rows[1].Category, ShouldResemble, free100FR.Open())
			So(rows[2].Category, ShouldResemble, boysIM)
			So(rows[4].Category, ShouldResemble, girls50)
		})
	})
}
