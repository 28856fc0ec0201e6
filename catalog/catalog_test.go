package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/Laisky/transport-order-mcp/order"
)

func TestCatalogEmbedded(t *testing.T) {
	Convey("Given a catalog built from embedded definitions", t, func() {
		c, err := New()
		So(err, ShouldBeNil)
		So(c.Dir(), ShouldEqual, "")

		Convey("every transport type has a template", func() {
			names, err := c.AvailableTemplates()
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"complex_road", "ocean_visibility", "simple_road"})

			for _, tt := range order.AllTypes {
				tmpl, err := c.Template(tt)
				So(err, ShouldBeNil)
				So(tmpl.Lookup("stop"), ShouldNotBeNil)
				So(c.TemplateSource(tt), ShouldEqual, "embedded")
			}
		})

		Convey("transport parameters carry prompts and defaults", func() {
			p, err := c.TransportParameters(order.SimpleRoad)
			So(err, ShouldBeNil)
			So(p.SupportsPricing, ShouldBeTrue)

			status, ok := p.Field("status")
			So(ok, ShouldBeTrue)
			So(status.HasDefault(), ShouldBeTrue)
			So(*status.Default, ShouldEqual, "N")

			number, ok := p.Field("number")
			So(ok, ShouldBeTrue)
			So(number.HasDefault(), ShouldBeFalse)
			So(number.Prompt(), ShouldEqual, "Please provide Transport order number (number) - Example: 1404338")

			vehicle, ok := p.Field("vehicle")
			So(ok, ShouldBeTrue)
			So(vehicle.Suggestion(), ShouldStartWith, "Optional: Vehicle type (vehicle)")
		})

		Convey("complex road parameters are split by level", func() {
			p, err := c.TransportParameters(order.ComplexRoad)
			So(err, ShouldBeNil)
			So(p.LevelOf("transportMode"), ShouldEqual, "order")
			So(p.LevelOf("transport.salesorderNumber"), ShouldEqual, "transport")
			So(p.LevelOf("somethingElse"), ShouldEqual, "")
		})

		Convey("ocean parameters are marked required", func() {
			p, err := c.TransportParameters(order.OceanVisibility)
			So(err, ShouldBeNil)
			var required []string
			for _, f := range p.OceanParameters {
				if f.Required {
					required = append(required, f.Name)
				}
			}
			So(required, ShouldResemble, []string{"ocean.scac.no", "ocean.bl.no", "ocean.container.no"})
		})

		Convey("item parameters exist only for complex road", func() {
			items, err := c.ItemParameters(order.ComplexRoad)
			So(err, ShouldBeNil)
			So(items.RecommendedQuantities, ShouldContain, "weight")
			So(items.RecommendedParameters, ShouldHaveLength, 3)

			_, err = c.ItemParameters(order.SimpleRoad)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("fixed parameters describe ocean visibility", func() {
			fixed, err := c.FixedParameters(order.OceanVisibility)
			So(err, ShouldBeNil)
			So(fixed.Values["scheduling_unit"], ShouldEqual, "Ocean Visibility")
			So(fixed.Parameters[order.QualifierOceanProduct], ShouldEqual, "true")
			So(fixed.StopIDs.Loading, ShouldEqual, "Departure")

			none, err := c.FixedParameters(order.ComplexRoad)
			So(err, ShouldBeNil)
			So(none.Values, ShouldBeEmpty)
		})

		Convey("business rules are sorted by priority", func() {
			rules, err := c.BusinessRules()
			So(err, ShouldBeNil)
			So(rules, ShouldHaveLength, 2)
			So(rules[0].ID, ShouldEqual, "carrier_id_mapping_rule")
			So(rules[1].ID, ShouldEqual, "carrier_creditor_status_rule")

			simple, err := c.RulesFor(order.SimpleRoad)
			So(err, ShouldBeNil)
			So(simple, ShouldHaveLength, 2)
			ocean, err := c.RulesFor(order.OceanVisibility)
			So(err, ShouldBeNil)
			So(ocean, ShouldBeEmpty)
		})

		Convey("field rules compile their patterns", func() {
			rules, err := c.FieldRules()
			So(err, ShouldBeNil)
			var currency FieldRule
			for _, r := range rules {
				if r.Path == "prices/currency" {
					currency = r
				}
			}
			So(currency.Matches("EUR"), ShouldBeTrue)
			So(currency.Matches("eur"), ShouldBeFalse)
		})

		Convey("type rules expose the creditor pattern", func() {
			r, err := c.TypeRules(order.ComplexRoad)
			So(err, ShouldBeNil)
			So(r.MinimumStops, ShouldEqual, 2)
			So(r.MaximumStops, ShouldEqual, 20)
			So(r.CreditorMatches("0000203512"), ShouldBeTrue)
			So(r.CreditorMatches("203512"), ShouldBeFalse)
			So(r.Forbids(order.QualifierSCAC), ShouldBeTrue)

			_, err = c.TypeRules(order.TransportType("air"))
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("examples are available for every type", func() {
			for _, tt := range order.AllTypes {
				xml, err := c.Example(tt)
				So(err, ShouldBeNil)
				So(xml, ShouldContainSubstring, "<transport_orders")
			}
			_, err := c.Example(order.TransportType("air"))
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestCatalogOverride(t *testing.T) {
	Convey("Given an override directory", t, func() {
		dir := t.TempDir()
		So(os.MkdirAll(filepath.Join(dir, "examples"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "examples", "simple_road.xml"), []byte("<override/>"), 0o644), ShouldBeNil)

		var reasons []string
		c, err := New(WithDir(dir), WithReloadHook(func(reason string) { reasons = append(reasons, reason) }))
		So(err, ShouldBeNil)

		Convey("overridden files win over embedded ones", func() {
			xml, err := c.Example(order.SimpleRoad)
			So(err, ShouldBeNil)
			So(xml, ShouldEqual, "<override/>")

			other, err := c.Example(order.ComplexRoad)
			So(err, ShouldBeNil)
			So(other, ShouldContainSubstring, "0081310198")
		})

		Convey("cached values survive file changes until the cache is cleared", func() {
			_, err := c.Example(order.SimpleRoad)
			So(err, ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "examples", "simple_road.xml"), []byte("<changed/>"), 0o644), ShouldBeNil)

			xml, _ := c.Example(order.SimpleRoad)
			So(xml, ShouldEqual, "<override/>")

			c.ClearCache()
			xml, _ = c.Example(order.SimpleRoad)
			So(xml, ShouldEqual, "<changed/>")
			So(reasons, ShouldResemble, []string{"manual"})
		})

		Convey("an extra template shows up in the listing", func() {
			So(os.MkdirAll(filepath.Join(dir, "templates"), 0o755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "templates", "rail.xml.tmpl"), []byte("<x/>"), 0o644), ShouldBeNil)

			names, err := c.AvailableTemplates()
			So(err, ShouldBeNil)
			So(names, ShouldContain, "rail")
		})
	})

	Convey("A broken override template is rejected", t, func() {
		dir := t.TempDir()
		So(os.MkdirAll(filepath.Join(dir, "templates"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "templates", "simple_road.xml.tmpl"), []byte("{{.Number"), 0o644), ShouldBeNil)

		_, err := New(WithDir(dir))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "simple_road.xml.tmpl")
	})

	Convey("A missing override directory is rejected", t, func() {
		_, err := New(WithDir(filepath.Join(t.TempDir(), "missing")))
		So(err, ShouldNotBeNil)
	})
}

func TestTemplateEscapesValues(t *testing.T) {
	Convey("Template values are XML escaped", t, func() {
		c, err := New()
		So(err, ShouldBeNil)
		tmpl, err := c.Template(order.SimpleRoad)
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		err = tmpl.ExecuteTemplate(&buf, "parameter", map[string]string{
			"Qualifier":         "a&b",
			"Value":             `<span style="x">`,
			"ShipperVisibility": "",
			"ExportToCarrier":   "",
		})
		So(err, ShouldBeNil)
		out := buf.String()
		So(out, ShouldContainSubstring, `qualifier="a&amp;b"`)
		So(out, ShouldContainSubstring, "&lt;span style=&#34;x&#34;&gt;")
		So(strings.Contains(out, "shipperVisibility"), ShouldBeFalse)
	})
}

func TestTemplateReplacesIllegalCharacters(t *testing.T) {
	Convey("Characters that XML 1.0 forbids never reach the document", t, func() {
		So(escapeXML("line\x0bfeed"), ShouldEqual, "line\uFFFDfeed")
		So(escapeXML("nul\x00"), ShouldEqual, "nul\uFFFD")
		So(escapeXML("tab\tok"), ShouldEqual, "tab&#x9;ok")
		So(escapeXML(nil), ShouldEqual, "")
		So(escapeXML(order.SimpleRoad), ShouldEqual, "simple_road")
		So(escapeXML(12.5), ShouldEqual, "12.5")
	})
}
