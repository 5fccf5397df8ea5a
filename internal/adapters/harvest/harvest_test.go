package harvest_test

import (
	"strings"
	"testing"

	"github.com/okian/recordbook/internal/adapters/harvest"
	"github.com/okian/recordbook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const page = `<!DOCTYPE html>
<html><head><title>Team Stats</title>
<script type="text/javascript">
  function init() {
    ShowMedleySplitWindow(['Back','Breast','Fly','Free'],['Kent Olsson - Jr.','Wade Olsson - Sr.','Jackson Eftekhar','Grayson The'],['00:27.10','00:30.20','00:25.30','00:22.40'],'Hawks');
  }
</script></head>
<body>
<table>
<tr><td><a href="#" onclick="ShowFreeSplitWindow([&#39;Ann Lee&#39;,&#39;Bea Park&#39;,&#39;Cat Diaz&#39;,&#39;Dee Moss&#39;],[&#39;00:25.10&#39;,&#39;00:26.00&#39;,&#39;00:25.90&#39;,&#39;00:25.50&#39;],&#39;Hawks&#39;); return false;">1:42.50</a></td></tr>
<tr><td><a href="#" onclick="ShowFreeSplitWindow(['Ann Lee','Bea Park','Cat Diaz','Dee Moss'],['00:25.10','00:26.00','00:25.90','00:25.50'],'Hawks'); return false;">again</a></td></tr>
<tr><td><a href="#" onclick="ShowFreeSplitWindow(['Only One'],['00:25.10','00:26.00'],'Hawks')">bad shape</a></td></tr>
<tr><td><a href="#" onclick="ShowFreeSplitWindow(['Broken', 'Call'">unterminated</a></td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	Convey("Given a saved stats page", t, func() {
		got, err := harvest.Parse(strings.NewReader(page), "2023-24", model.GenderMale)
		So(err, ShouldBeNil)

		Convey("Then medley and free calls become split records", func() {
			So(len(got.Records), ShouldEqual, 2)

			medley := got.Records[0]
			So(medley.Hint, ShouldEqual, "medley")
			So(medley.Labels, ShouldResemble, []string{"Back", "Breast", "Fly", "Free"})
			So(medley.Swimmers[0], ShouldEqual, "Kent Olsson - Jr.")
			So(medley.Splits[0], ShouldAlmostEqual, 27.10, 1e-9)
			So(medley.Team, ShouldEqual, "Hawks")
			So(medley.Season, ShouldEqual, model.Season("2023-24"))
			So(medley.Gender, ShouldEqual, model.GenderMale)

			free := got.Records[1]
			So(free.Hint, ShouldEqual, "free")
			So(free.Labels, ShouldBeNil)
			So(free.Swimmers, ShouldResemble, []string{"Ann Lee", "Bea Park", "Cat Diaz", "Dee Moss"})
			So(len(free.Splits), ShouldEqual, 4)
		})

		Convey("Then malformed calls are counted and skipped", func() {
			So(got.Malformed, ShouldEqual, 2)
		})
	})

	Convey("Given a page without split calls", t, func() {
		got, err := harvest.Parse(strings.NewReader("<html><body><p>No relays</p></body></html>"), "2023-24", model.GenderFemale)
		So(err, ShouldBeNil)
		So(got.Records, ShouldBeEmpty)
		So(got.Malformed, ShouldEqual, 0)
	})
}
