package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/replay"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	pasu    = "830238e82c367ad2ba40df1da9968131"
	popcorn = "86f9526f57828ad981f6c93b35811f94"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	catalogPath = ""
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	Convey("Given the energy command", t, func() {
		Convey("When scoring a single scenario", func() {
			out, err := run("score", "vt-s5-intermediate", pasu, "840")

			Convey("Then the energy and rank are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "VT Pasu Intermediate S5\t600.00\tDiamond")
			})
		})

		Convey("When combining a benchmark", func() {
			out, err := run("benchmark", "vt-s5-intermediate", "dynamic-clicking", "760", "950")

			Convey("Then the better scenario carries the benchmark", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "VT Pasu Intermediate S5\t500.00")
				So(out, ShouldContainSubstring, "VT Popcorn Intermediate S5\t800.00")
				So(out, ShouldContainSubstring, "dynamic-clicking\t800.00\tMaster")
			})
		})

		Convey("When listing one division", func() {
			out, err := run("catalog", "vt-s5-intermediate")

			Convey("Then its scenarios are shown", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "vt-s5-intermediate")
				So(out, ShouldContainSubstring, popcorn)
				So(out, ShouldNotContainSubstring, "vt-s5-novice")
			})
		})

		Convey("When listing the whole catalog", func() {
			out, err := run("catalog")

			Convey("Then every division is shown", func() {
				So(err, ShouldBeNil)
				for _, b := range []string{"vt-s5-novice", "vt-s5-intermediate", "vt-s5-advanced"} {
					So(out, ShouldContainSubstring, b)
				}
			})
		})

		Convey("When the board or score is wrong", func() {
			_, err := run("score", "vt-s5-expert", pasu, "840")
			So(errors.Is(err, benchmark.ErrDifficultyNotFound), ShouldBeTrue)

			_, err = run("score", "vt-s5-intermediate", "nope", "840")
			So(errors.Is(err, benchmark.ErrScenarioNotFound), ShouldBeTrue)

			_, err = run("score", "vt-s5-intermediate", pasu, "lots")
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "invalid score"), ShouldBeTrue)
		})

		Convey("When replay has nothing to upload", func() {
			_, err := run("replay")

			Convey("Then it asks for input", func() {
				So(errors.Is(err, replay.ErrNoEntries), ShouldBeTrue)
			})
		})
	})
}
