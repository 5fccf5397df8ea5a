package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const statsPage = `<html><body><table>
<tr><td><a href="#" onclick="ShowFreeSplitWindow(['Kent Olsson - Jr.','Wade Olsson','Jackson Eftekhar','Grayson The'],['00:22.60','00:22.50','00:22.70','00:22.60'],'Hawks'); return false;">1:30.40</a></td></tr>
</table></body></html>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func clearEnv() {
	for _, k := range []string{"RECORDBOOK_CONFIG", "RECORDBOOK_DATA_DIR", "RECORDBOOK_OUTPUT_DIR", "RECORDBOOK_METRICS_FILE", "RECORDBOOK_ALIAS_FILE"} {
		_ = os.Unsetenv(k)
	}
}

func TestHarvestCommand(t *testing.T) {
	convey.Convey("Given a saved boys stats page", t, func() {
		clearEnv()
		dir := t.TempDir()
		pagePath := filepath.Join(dir, "boys.html")
		writeFile(t, pagePath, statsPage)

		convey.Convey("When harvesting to stdout", func() {
			var out bytes.Buffer
			err := newApp(&out).Run([]string{"recordbook", "harvest", "--season", "2023-24", "--boys", pagePath})

			convey.Convey("Then the split file is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "2023-24")
				convey.So(out.String(), convey.ShouldContainSubstring, "Kent Olsson - Jr.")
				convey.So(out.String(), convey.ShouldContainSubstring, "boys:")
			})
		})

		convey.Convey("When harvesting to a file", func() {
			dest := filepath.Join(dir, "splits", "splits_2023-24.yaml")
			err := newApp(&bytes.Buffer{}).Run([]string{"recordbook", "harvest", "-s", "2023-24", "--boys", pagePath, "-o", dest})

			convey.Convey("Then the file is written", func() {
				convey.So(err, convey.ShouldBeNil)
				raw, readErr := os.ReadFile(dest)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, "Grayson The")
			})
		})

		convey.Convey("When no page is given", func() {
			err := newApp(&bytes.Buffer{}).Run([]string{"recordbook", "harvest", "--season", "2023-24"})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the page does not exist", func() {
			err := newApp(&bytes.Buffer{}).Run([]string{"recordbook", "harvest", "--season", "2023-24", "--girls", filepath.Join(dir, "missing.html")})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestBuildCommand(t *testing.T) {
	convey.Convey("Given a data directory and a config file", t, func() {
		clearEnv()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "seasons.yaml"), "- 2022-23\n- 2023-24\n")
		writeFile(t, filepath.Join(dir, "entries", "2022-23.yaml"),
			"- {gender: boys, event: 50 Free, grade: JR, name: Kenny Olsson, time: \"22.95\", meet: Dual}\n")
		writeFile(t, filepath.Join(dir, "relays", "2023-24.yaml"), `
- gender: boys
  event: 200 Free Relay
  time: "1:30.45"
  meet: State
  swimmers: [Kent Olsson - Jr., Wade Olsson - Sr., Jackson Eftekhar - So., Grayson The - Fr.]
`)
		writeFile(t, filepath.Join(dir, "aliases.yaml"), "Kenny Olsson: Kent Olsson\n")
		out := filepath.Join(dir, "records")
		metricsFile := filepath.Join(dir, "recordbook.prom")
		cfgPath := filepath.Join(dir, "recordbook.yaml")
		writeFile(t, cfgPath, "data_dir: "+dir+"\noutput_dir: "+out+"\nmetrics_file: "+metricsFile+
			"\nalias_file: "+filepath.Join(dir, "aliases.yaml")+"\nlog_level: warn\n")

		convey.Convey("When the split page is harvested and the book is built", func() {
			pagePath := filepath.Join(dir, "boys.html")
			writeFile(t, pagePath, statsPage)
			err := newApp(&bytes.Buffer{}).Run([]string{"recordbook", "harvest", "-s", "2023-24", "--boys", pagePath,
				"-o", filepath.Join(dir, "splits", "splits_2023-24.yaml")})
			convey.So(err, convey.ShouldBeNil)

			var stdout bytes.Buffer
			err = newApp(&stdout).Run([]string{"recordbook", "--config", cfgPath, "build"})

			convey.Convey("Then the artifacts and metrics are written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "1/1 relays matched")

				current, readErr := os.ReadFile(filepath.Join(out, "records_current.yaml"))
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(current), convey.ShouldContainSubstring, "Kent Olsson")
				convey.So(string(current), convey.ShouldNotContainSubstring, "Kenny Olsson")

				_, statErr := os.Stat(metricsFile)
				convey.So(statErr, convey.ShouldBeNil)
			})

			convey.Convey("Then reconcile runs over the saved history", func() {
				var rec bytes.Buffer
				err := newApp(&rec).Run([]string{"recordbook", "-c", cfgPath, "reconcile"})
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.String(), convey.ShouldContainSubstring, "filled")
			})
		})

		convey.Convey("When the data directory has no seasons", func() {
			empty := filepath.Join(dir, "empty.yaml")
			writeFile(t, empty, "data_dir: "+filepath.Join(dir, "nowhere")+"\n")
			err := newApp(&bytes.Buffer{}).Run([]string{"recordbook", "--config", empty, "build"})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
