// This tool writes a BW64 test file carrying a sine per channel and an ADM
// programme describing the channels as a DirectSpeakers pack.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/ear"
	"github.com/cwbudde/admrender/render"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz of the first channel; channel n plays n times that")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	layoutName := flagSet.String("layout", "0+2+0", "loudspeaker layout the channels are labelled with")
	name := flagSet.String("name", "Sine", "audioProgramme name")
	bitDepth := flagSet.Int("bits", 24, "PCM bit depth")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	layout, err := ear.GetLayout(*layoutName)
	if err != nil {
		return err
	}

	const sampleRate = 48000

	doc, err := render.SynthesizeProgrammeDocument(layout, *name, sampleRate, *bitDepth)
	if err != nil {
		return err
	}

	var axml bytes.Buffer

	err = adm.WriteXML(&axml, doc)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec %s sine bw64 at %f hz", *length, layout.Name, *frequency)

	w, err := bw64.Create(*output, bw64.WriterOptions{
		Channels:   layout.NumChannels(),
		SampleRate: sampleRate,
		BitDepth:   *bitDepth,
		FormatTag:  bw64.FormatPCM,
		Chna:       render.ChnaForDocument(doc),
		Axml:       bw64.NewAXMLChunk(axml.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}

	channels := layout.NumChannels()
	freq := *frequency
	numFrames := int(sampleRate * *length)
	buf := bw64.NewBlockBuffer(channels, render.BlockSize)

	for start := 0; start < numFrames; start += render.BlockSize {
		n := min(render.BlockSize, numFrames-start)

		for i := range n {
			t := float64(start+i) / sampleRate
			for c := range channels {
				buf.Data[i*channels+c] = 0.5 * math.Sin(2*math.Pi*freq*float64(c+1)*t)
			}
		}

		err = w.WriteBlock(buf, n)
		if err != nil {
			_ = w.Abort()
			return err
		}
	}

	return w.Close()
}
