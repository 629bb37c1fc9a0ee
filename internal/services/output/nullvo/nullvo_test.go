package nullvo

import (
	"testing"

	"playercore/internal/domain/ports"
)

func TestReconfigMakesConfigOK(t *testing.T) {
	v := New()
	if v.ConfigOK() {
		t.Fatal("fresh VO must not be configured")
	}
	err := v.Reconfig(ports.ImageParams{Format: 1, W: 960, H: 480, SampleAspectW: 1, SampleAspectH: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !v.ConfigOK() {
		t.Error("reconfig must mark the VO configured")
	}
	v.Uninit()
	if v.ConfigOK() {
		t.Error("uninit must clear the configuration")
	}
}

func TestQueryAndResetEvents(t *testing.T) {
	v := New()
	v.events = ports.VOEventResize

	if ev := v.QueryAndResetEvents(); ev&ports.VOEventResize == 0 {
		t.Error("pending event must be reported")
	}
	if ev := v.QueryAndResetEvents(); ev != 0 {
		t.Error("events must reset after query")
	}
}

func TestQueryFormatsIsCopied(t *testing.T) {
	v := New()
	formats := v.QueryFormats()
	if len(formats) == 0 {
		t.Fatal("VO must claim at least one format")
	}
	formats[0] = 99
	if v.QueryFormats()[0] == 99 {
		t.Error("QueryFormats must hand out a copy")
	}
}
