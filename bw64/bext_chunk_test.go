package bw64

import (
	"bytes"
	"testing"

	"github.com/go-audio/riff"
)

func TestBextRoundTrip(t *testing.T) {
	in := &BroadcastExtension{
		Description:         "Programme",
		Originator:          "admrender",
		OriginatorReference: "REF123",
		OriginationDate:     "2024-01-02",
		OriginationTime:     "03:04:05",
		TimeReference:       1<<33 + 7,
		Version:             2,
		CodingHistory:       "A=PCM,F=48000,W=24,M=stereo\r\n",
	}
	in.UMID[0] = 0x06

	raw := encodeBroadcastChunk(in)

	dec := &Decoder{}

	err := DecodeBroadcastChunk(dec, &riff.Chunk{ID: CIDBext, Size: len(raw), R: bytes.NewReader(raw)})
	if err != nil {
		t.Fatalf("DecodeBroadcastChunk: %v", err)
	}

	out := dec.Bext
	if out.Description != in.Description || out.Originator != in.Originator ||
		out.OriginatorReference != in.OriginatorReference || out.OriginationDate != in.OriginationDate ||
		out.OriginationTime != in.OriginationTime {
		t.Fatalf("strings = %+v", out)
	}

	if out.TimeReference != in.TimeReference || out.Version != 2 || out.UMID[0] != 0x06 {
		t.Fatalf("numbers = %d %d %x", out.TimeReference, out.Version, out.UMID[0])
	}

	if out.CodingHistory != in.CodingHistory {
		t.Fatalf("coding history = %q", out.CodingHistory)
	}
}

func TestAppendCodingHistory(t *testing.T) {
	b := &BroadcastExtension{}
	b.AppendCodingHistory("A=PCM,F=48000")
	b.AppendCodingHistory("A=PCM,F=48000,T=admrender")

	want := "A=PCM,F=48000\r\nA=PCM,F=48000,T=admrender\r\n"
	if b.CodingHistory != want {
		t.Fatalf("coding history = %q, want %q", b.CodingHistory, want)
	}

	clone := b.Clone()
	clone.AppendCodingHistory("x")

	if b.CodingHistory != want {
		t.Fatal("Clone shares state with the original")
	}
}
