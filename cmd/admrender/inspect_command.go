package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
)

func newInspectCommand() *cobra.Command {
	var rawXML bool

	cmd := &cobra.Command{
		Use:         "inspect INPUT",
		Short:       "Show the format, track identities and ADM tree of a BW64 file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0], rawXML)
		},
	}

	cmd.Flags().BoolVar(&rawXML, "xml", false, "Print the raw axml chunk instead of the ADM tree")
	return cmd
}

func runInspect(out io.Writer, path string, rawXML bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	src, err := bw64.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if rawXML {
		if src.AXML() == nil {
			return fmt.Errorf("%w: axml", bw64.ErrMissingChunk)
		}
		fmt.Fprintln(out, src.AXML().String())
		return nil
	}

	fmt.Fprintln(out, renderTable(propertyColumns, fileRows(path, info.Size(), src)))

	if chna := src.CHNA(); chna != nil {
		fmt.Fprintf(out, "\nchna: %d tracks, %d UIDs\n", chna.NumTracks(), chna.NumUIDs())
		fmt.Fprintln(out, renderTable(chnaColumns, chnaRows(chna)))
	}

	if axml := src.AXML(); axml != nil {
		doc, err := adm.ParseXML(axml.Reader())
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		writeTree(out, doc)
	}

	return nil
}

func fileRows(path string, size int64, src *bw64.Reader) [][]string {
	format := "PCM"
	if src.FormatTag() == bw64.FormatIEEEFloat {
		format = "IEEE float"
	}
	if src.Extensible() {
		format += " (extensible)"
	}

	ids := src.ChunkIDs()
	chunks := make([]string, 0, len(ids))
	for _, id := range ids {
		chunks = append(chunks, strings.TrimSpace(string(id[:])))
	}

	return [][]string{
		{"File", path},
		{"Size", humanize.Bytes(uint64(size))},
		{"Format", format},
		{"Channels", strconv.Itoa(src.Channels())},
		{"Sample rate", formatHz(src.SampleRate())},
		{"Bit depth", strconv.Itoa(src.BitDepth())},
		{"Frames", humanize.Comma(int64(src.FrameCount()))},
		{"Duration", src.Duration().String()},
		{"Chunks", strings.Join(chunks, ", ")},
	}
}

func chnaRows(chna *bw64.ChnaChunk) [][]string {
	rows := make([][]string, 0, len(chna.AudioIDs))
	for _, id := range chna.AudioIDs {
		rows = append(rows, []string{strconv.Itoa(int(id.TrackIndex)), id.UID, id.TrackRef, id.PackRef})
	}
	return rows
}

// writeTree prints programme -> content -> object -> pack/track. Objects no
// programme reaches are listed after the programmes.
func writeTree(w io.Writer, doc *adm.Document) {
	reached := make(map[*adm.AudioObject]bool)

	for _, p := range doc.Programmes {
		fmt.Fprintf(w, "%s %q\n", p.ID, p.Name)
		for _, c := range p.Contents {
			fmt.Fprintf(w, "  %s %q\n", c.ID, c.Name)
			for _, o := range c.Objects {
				writeObject(w, o, 2, reached)
			}
		}
	}

	for _, o := range doc.TopLevelObjects() {
		if !reached[o] {
			writeObject(w, o, 0, reached)
		}
	}
}

func writeObject(w io.Writer, o *adm.AudioObject, depth int, reached map[*adm.AudioObject]bool) {
	indent := strings.Repeat("  ", depth)
	reached[o] = true

	fmt.Fprintf(w, "%s%s %q\n", indent, o.ID, o.Name)
	for _, p := range o.PackFormats {
		fmt.Fprintf(w, "%s  pack %s %q (%s)\n", indent, p.ID, p.Name, p.Type)
	}
	for _, u := range o.TrackUIDs {
		fmt.Fprintf(w, "%s  track %s%s\n", indent, u.ID, trackSuffix(u))
	}
	for _, child := range o.Objects {
		writeObject(w, child, depth+1, reached)
	}
}

func trackSuffix(u *adm.AudioTrackUID) string {
	switch {
	case u.TrackFormat != nil:
		return " -> " + u.TrackFormat.ID.String()
	case u.ChannelFormat != nil:
		return " -> " + u.ChannelFormat.ID.String()
	default:
		return ""
	}
}
