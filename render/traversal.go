package render

import (
	"fmt"
	"strings"

	"github.com/cwbudde/admrender/adm"
)

// TargetKind tells programme targets from object targets.
type TargetKind int

const (
	TargetProgramme TargetKind = iota + 1
	TargetObject
)

func (k TargetKind) String() string {
	switch k {
	case TargetProgramme:
		return "programme"
	case TargetObject:
		return "object"
	default:
		return "unknown"
	}
}

// Target is one rendering pass producing one output file.
type Target struct {
	Kind TargetKind
	ID   string
	Name string

	programme *adm.AudioProgramme
	object    *adm.AudioObject
}

// Programme returns the programme of a programme target, or nil.
func (t Target) Programme() *adm.AudioProgramme { return t.programme }

// Object returns the object of an object target, or nil.
func (t Target) Object() *adm.AudioObject { return t.object }

func (t Target) String() string {
	return fmt.Sprintf("%s %s %q", t.Kind, t.ID, t.Name)
}

func programmeTarget(p *adm.AudioProgramme) Target {
	return Target{Kind: TargetProgramme, ID: p.ID.String(), Name: p.Name, programme: p}
}

func objectTarget(o *adm.AudioObject) Target {
	return Target{Kind: TargetObject, ID: o.ID.String(), Name: o.Name, object: o}
}

// SelectTargets returns the targets of doc in rendering order: every
// programme, or every top-level object when there are no programmes. A
// non-empty selector restricts the result to the programme or, failing
// that, the object with that identifier; it yields no targets when neither
// exists.
func SelectTargets(doc *adm.Document, selector string) []Target {
	if selector != "" {
		for _, p := range doc.Programmes {
			if strings.EqualFold(p.ID.String(), selector) {
				return []Target{programmeTarget(p)}
			}
		}

		for _, o := range doc.Objects {
			if strings.EqualFold(o.ID.String(), selector) {
				return []Target{objectTarget(o)}
			}
		}

		return nil
	}

	if len(doc.Programmes) > 0 {
		out := make([]Target, 0, len(doc.Programmes))
		for _, p := range doc.Programmes {
			out = append(out, programmeTarget(p))
		}

		return out
	}

	var out []Target
	for _, o := range doc.TopLevelObjects() {
		out = append(out, objectTarget(o))
	}

	return out
}

// objectGain pairs an object with the cumulative override to apply to it.
type objectGain struct {
	object *adm.AudioObject
	gain   float64
}

// targetObjects lists the objects a target renders with their cumulative
// gain: programme × content × object for programme targets, the object's
// own override for object targets. An object referenced by several
// contents is rendered once per reference.
func targetObjects(t Target, gains GainOverrides) []objectGain {
	if t.object != nil {
		return []objectGain{{object: t.object, gain: gains.Gain(t.ID)}}
	}

	var out []objectGain

	programmeGain := gains.Gain(t.ID)

	for _, c := range t.programme.Contents {
		contentGain := programmeGain * gains.Gain(c.ID.String())

		for _, o := range c.Objects {
			out = append(out, objectGain{object: o, gain: contentGain * gains.Gain(o.ID.String())})
		}
	}

	return out
}
