package render

import (
	"bytes"
	"fmt"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/ear"
)

// mixName names the content and object wrapping a rendered programme.
const mixName = "Mix"

// OutputMetadata is the header metadata of one rendered file.
type OutputMetadata struct {
	Document *adm.Document
	AXML     *bw64.AXMLChunk
	CHNA     *bw64.ChnaChunk
}

// SynthesizeObjectDocument builds the document describing an object
// rendered to layout: one object named name referencing the layout's
// DirectSpeakers pack format and one track UID per output channel.
func SynthesizeObjectDocument(layout ear.Layout, name string, sampleRate, bitDepth int) (*adm.Document, error) {
	doc := adm.NewDocument()

	_, err := addMixObject(doc, layout, name, sampleRate, bitDepth)
	if err != nil {
		return nil, err
	}

	doc.AssignIDs()

	return doc, nil
}

// SynthesizeProgrammeDocument wraps the mix object in a programme named name
// and a content, both otherwise empty.
func SynthesizeProgrammeDocument(layout ear.Layout, name string, sampleRate, bitDepth int) (*adm.Document, error) {
	doc := adm.NewDocument()

	obj, err := addMixObject(doc, layout, mixName, sampleRate, bitDepth)
	if err != nil {
		return nil, err
	}

	content := &adm.AudioContent{Name: mixName, Objects: []*adm.AudioObject{obj}}
	doc.AddContent(content)
	doc.AddProgramme(&adm.AudioProgramme{Name: name, Contents: []*adm.AudioContent{content}})
	doc.AssignIDs()

	return doc, nil
}

func addMixObject(doc *adm.Document, layout ear.Layout, name string, sampleRate, bitDepth int) (*adm.AudioObject, error) {
	packID, ok := adm.PackFormatIDForLayout(layout.Name)
	if !ok {
		return nil, fmt.Errorf("%w: no pack format for layout %s", ErrUnsupported, layout.Name)
	}

	pack, _ := doc.ImportCommonPackFormat(packID)
	obj := &adm.AudioObject{Name: name, PackFormats: []*adm.AudioPackFormat{pack}}

	for i, ch := range layout.Channels {
		trackID, ok := adm.TrackFormatIDForLabel(ch.Name)
		if !ok {
			return nil, fmt.Errorf("%w: no track format for channel %s", ErrUnsupported, ch.Name)
		}

		tf, _ := doc.ImportCommonTrackFormat(trackID)
		uid := &adm.AudioTrackUID{
			ID:          adm.TrackUIDID(i + 1),
			SampleRate:  sampleRate,
			BitDepth:    bitDepth,
			TrackFormat: tf,
			PackFormat:  pack,
		}

		doc.AddTrackUID(uid)
		obj.TrackUIDs = append(obj.TrackUIDs, uid)
	}

	doc.AddObject(obj)

	return obj, nil
}

// ChnaForDocument lists every track UID of the document's objects, in
// object order, as chna entries.
func ChnaForDocument(doc *adm.Document) *bw64.ChnaChunk {
	chna := &bw64.ChnaChunk{}

	for _, obj := range doc.Objects {
		for _, uid := range obj.TrackUIDs {
			id := bw64.AudioID{TrackIndex: uint16(uid.ID), UID: uid.ID.String()}

			if uid.TrackFormat != nil {
				id.TrackRef = uid.TrackFormat.ID.String()
			}

			if uid.PackFormat != nil {
				id.PackRef = uid.PackFormat.ID.String()
			}

			chna.AudioIDs = append(chna.AudioIDs, id)
		}
	}

	return chna
}

// synthesize builds the header metadata of the file rendered for t.
func synthesize(t Target, layout ear.Layout, sampleRate, bitDepth int) (OutputMetadata, error) {
	var (
		doc *adm.Document
		err error
	)

	if t.Kind == TargetProgramme {
		doc, err = SynthesizeProgrammeDocument(layout, t.Name, sampleRate, bitDepth)
	} else {
		doc, err = SynthesizeObjectDocument(layout, t.Name, sampleRate, bitDepth)
	}

	if err != nil {
		return OutputMetadata{}, err
	}

	var buf bytes.Buffer

	err = adm.WriteXML(&buf, doc)
	if err != nil {
		return OutputMetadata{}, err
	}

	return OutputMetadata{
		Document: doc,
		AXML:     bw64.NewAXMLChunk(buf.Bytes()),
		CHNA:     ChnaForDocument(doc),
	}, nil
}
