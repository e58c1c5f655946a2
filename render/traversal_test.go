package render

import (
	"testing"

	"github.com/cwbudde/admrender/adm"
)

func traversalDoc() *adm.Document {
	doc := adm.NewDocument()

	child := &adm.AudioObject{ID: 0x1003, Name: "child"}
	shared := &adm.AudioObject{ID: 0x1001, Name: "shared", Objects: []*adm.AudioObject{child}}
	other := &adm.AudioObject{ID: 0x1002, Name: "other"}

	doc.AddObject(shared)
	doc.AddObject(other)
	doc.AddObject(child)

	return doc
}

func TestSelectTargetsFallsBackToTopLevelObjects(t *testing.T) {
	targets := SelectTargets(traversalDoc(), "")

	if len(targets) != 2 || targets[0].ID != "AO_1001" || targets[1].ID != "AO_1002" {
		t.Fatalf("targets = %v", targets)
	}

	for _, tgt := range targets {
		if tgt.Kind != TargetObject || tgt.Object() == nil || tgt.Programme() != nil {
			t.Fatalf("target %v", tgt)
		}
	}
}

func TestSelectTargetsPrefersProgrammes(t *testing.T) {
	doc := traversalDoc()
	doc.AddProgramme(&adm.AudioProgramme{ID: 0x1001, Name: "p1"})
	doc.AddProgramme(&adm.AudioProgramme{ID: 0x1002, Name: "p2"})

	targets := SelectTargets(doc, "")
	if len(targets) != 2 || targets[0].Kind != TargetProgramme || targets[1].Name != "p2" {
		t.Fatalf("targets = %v", targets)
	}

	// an explicit selector may still pick a nested object
	targets = SelectTargets(doc, "AO_1003")
	if len(targets) != 1 || targets[0].Name != "child" {
		t.Fatalf("selected = %v", targets)
	}

	if got := SelectTargets(doc, "AO_7777"); len(got) != 0 {
		t.Fatalf("unmatched selector gave %v", got)
	}
}

func TestTargetObjectsComposesGains(t *testing.T) {
	doc := traversalDoc()
	shared := doc.Objects[0]
	c1 := &adm.AudioContent{ID: 0x1001, Objects: []*adm.AudioObject{shared}}
	c2 := &adm.AudioContent{ID: 0x1002, Objects: []*adm.AudioObject{shared, doc.Objects[1]}}
	p := &adm.AudioProgramme{ID: 0x1001, Contents: []*adm.AudioContent{c1, c2}}

	gains := GainOverrides{"APR_1001": 2, "ACO_1002": 3, "AO_1001": 5}
	got := targetObjects(programmeTarget(p), gains)

	want := []struct {
		obj  *adm.AudioObject
		gain float64
	}{
		{shared, 2 * 5},
		{shared, 2 * 3 * 5},
		{doc.Objects[1], 2 * 3},
	}

	if len(got) != len(want) {
		t.Fatalf("%d objects, want %d", len(got), len(want))
	}

	for i, w := range want {
		if got[i].object != w.obj || got[i].gain != w.gain {
			t.Errorf("entry %d = %s × %v, want %s × %v", i, got[i].object.ID, got[i].gain, w.obj.ID, w.gain)
		}
	}

	single := targetObjects(objectTarget(shared), gains)
	if len(single) != 1 || single[0].gain != 5 {
		t.Fatalf("object target = %+v", single)
	}
}
