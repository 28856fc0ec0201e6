package catalog

import (
	stdErrors "errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOverlayFS(t *testing.T) {
	Convey("Given an embedded layer and an override layer", t, func() {
		lower := fstest.MapFS{
			"templates/simple_road.xml.tmpl":  {Data: []byte("embedded simple")},
			"templates/complex_road.xml.tmpl": {Data: []byte("embedded complex")},
		}
		upper := fstest.MapFS{
			"templates/simple_road.xml.tmpl": {Data: []byte("override simple")},
			"templates/rail.xml.tmpl":        {Data: []byte("override rail")},
		}
		o := overlayFS{upper: upper, lower: lower}

		Convey("Files present in the override layer win", func() {
			data, err := fs.ReadFile(o, "templates/simple_road.xml.tmpl")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "override simple")
			So(o.source("templates/simple_road.xml.tmpl"), ShouldEqual, "override")
		})

		Convey("Missing override files fall back to the embedded layer", func() {
			f, err := o.Open("templates/complex_road.xml.tmpl")
			So(err, ShouldBeNil)
			defer f.Close()
			data, err := io.ReadAll(f)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "embedded complex")
			So(o.source("templates/complex_road.xml.tmpl"), ShouldEqual, "embedded")
		})

		Convey("Files in neither layer are reported as not existing", func() {
			_, err := o.Open("templates/barge.xml.tmpl")
			So(stdErrors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})

		Convey("Glob merges both layers without duplicates", func() {
			matches, err := o.glob("templates/*.xml.tmpl")
			So(err, ShouldBeNil)
			So(matches, ShouldResemble, []string{
				"templates/complex_road.xml.tmpl",
				"templates/rail.xml.tmpl",
				"templates/simple_road.xml.tmpl",
			})
		})
	})

	Convey("Without an override layer only the embedded files are served", t, func() {
		o := overlayFS{lower: fstest.MapFS{"rules/business.yaml": {Data: []byte("rules: []")}}}

		matches, err := o.glob("rules/*.yaml")
		So(err, ShouldBeNil)
		So(matches, ShouldResemble, []string{"rules/business.yaml"})
		So(o.source("rules/business.yaml"), ShouldEqual, "embedded")
	})
}
