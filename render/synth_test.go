package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/ear"
)

func TestSynthesizeDialogueStereo(t *testing.T) {
	layout, err := ear.GetLayout("0+2+0")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := SynthesizeObjectDocument(layout, "Dialogue", 48000, 24)
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Objects) != 1 || doc.Objects[0].Name != "Dialogue" || len(doc.Programmes) != 0 {
		t.Fatalf("objects = %+v", doc.Objects)
	}

	if len(doc.PackFormats) != 1 || doc.PackFormats[0].ID.String() != "AP_00010002" || doc.PackFormats[0].Type != adm.TypeDirectSpeakers {
		t.Fatalf("pack formats = %+v", doc.PackFormats)
	}

	if len(doc.TrackUIDs) != 2 {
		t.Fatalf("%d track uids", len(doc.TrackUIDs))
	}

	chna := ChnaForDocument(doc)
	if len(chna.AudioIDs) != 2 {
		t.Fatalf("chna = %+v", chna)
	}

	for i, want := range []string{"M+030", "M-030"} {
		entry := chna.AudioIDs[i]

		id, err := adm.ParseTrackFormatID(entry.TrackRef)
		if err != nil {
			t.Fatal(err)
		}

		label, ok := adm.LabelForTrackFormatID(id)
		if !ok || label != want {
			t.Errorf("entry %d label = %q, want %q", i, label, want)
		}

		if int(entry.TrackIndex) != i+1 || entry.UID != doc.TrackUIDs[i].ID.String() || entry.PackRef != "AP_00010002" {
			t.Errorf("entry %d = %+v", i, entry)
		}
	}
}

func TestSynthesizeProgrammeWrapsMix(t *testing.T) {
	layout, _ := ear.GetLayout("0+5+0")

	doc, err := SynthesizeProgrammeDocument(layout, "Main", 48000, 24)
	if err != nil {
		t.Fatal(err)
	}

	p := doc.Programmes[0]
	if p.Name != "Main" || p.ID.String() != "APR_1001" {
		t.Fatalf("programme = %+v", p)
	}

	if p.Contents[0].Name != "Mix" || p.Contents[0].Objects[0] != doc.Objects[0] || doc.Objects[0].Name != "Mix" {
		t.Fatal("programme does not wrap the mix object")
	}

	var buf bytes.Buffer

	err = adm.WriteXML(&buf, doc)
	if err != nil {
		t.Fatal(err)
	}

	text := buf.String()
	for _, want := range []string{`audioProgrammeName="Main"`, `audioContentName="Mix"`, `<audioPackFormatIDRef>AP_0001000C</audioPackFormatIDRef>`} {
		if !strings.Contains(text, want) {
			t.Errorf("axml lacks %s", want)
		}
	}
}

// Every layout must synthesise chna entries naming its channels in order.
func TestSynthesizeEveryLayout(t *testing.T) {
	for _, name := range ear.LayoutNames() {
		layout, err := ear.GetLayout(name)
		if err != nil {
			t.Fatal(err)
		}

		doc, err := SynthesizeObjectDocument(layout, name, 48000, 24)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		chna := ChnaForDocument(doc)
		if len(chna.AudioIDs) != layout.NumChannels() {
			t.Fatalf("%s: %d chna entries for %d channels", name, len(chna.AudioIDs), layout.NumChannels())
		}

		for i, entry := range chna.AudioIDs {
			id, _ := adm.ParseTrackFormatID(entry.TrackRef)
			label, _ := adm.LabelForTrackFormatID(id)

			if label != layout.Channels[i].Name {
				t.Errorf("%s entry %d: %s, want %s", name, i, label, layout.Channels[i].Name)
			}
		}
	}
}

func TestSynthesizeLeavesNothingShared(t *testing.T) {
	layout, _ := ear.GetLayout("0+2+0")

	a, _ := SynthesizeObjectDocument(layout, "A", 48000, 24)
	b, _ := SynthesizeObjectDocument(layout, "B", 48000, 24)

	if a.PackFormats[0] == b.PackFormats[0] || a.TrackUIDs[0] == b.TrackUIDs[0] {
		t.Fatal("synthesised documents share elements")
	}

	if a.PackFormats[0] == adm.CommonDefinitions().PackFormat(a.PackFormats[0].ID) {
		t.Fatal("synthesised document references the shared common definitions")
	}
}
