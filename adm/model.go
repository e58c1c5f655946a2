package adm

// AudioProgramme is the root of a complete mix.
type AudioProgramme struct {
	ID       ProgrammeID
	Name     string
	Language string
	Contents []*AudioContent
}

// AudioContent groups the objects of one content item, e.g. dialogue.
type AudioContent struct {
	ID       ContentID
	Name     string
	Language string
	Objects  []*AudioObject
}

// AudioObject binds pack formats to physical tracks. Objects may nest other
// objects.
type AudioObject struct {
	ID          ObjectID
	Name        string
	Start       string
	Duration    string
	Objects     []*AudioObject
	PackFormats []*AudioPackFormat
	TrackUIDs   []*AudioTrackUID
}

// AudioPackFormat groups channel formats into a layout.
type AudioPackFormat struct {
	ID             PackFormatID
	Name           string
	Type           TypeDefinition
	ChannelFormats []*AudioChannelFormat
	// Common marks BS.2094 common definitions; they are referenced by ID and
	// not written out.
	Common bool
}

// AudioChannelFormat describes one channel through its block formats.
type AudioChannelFormat struct {
	ID     ChannelFormatID
	Name   string
	Type   TypeDefinition
	Blocks []AudioBlockFormat
	Common bool
}

// AudioBlockFormat is a time-slice of a channel format. Only the
// DirectSpeakers parameters are modelled.
type AudioBlockFormat struct {
	ID            BlockFormatID
	SpeakerLabels []string
	Azimuth       *float64
	Elevation     *float64
	Distance      *float64
}

// AudioStreamFormat ties a channel or pack format to its track formats.
type AudioStreamFormat struct {
	ID            StreamFormatID
	Name          string
	Format        FormatDefinition
	ChannelFormat *AudioChannelFormat
	PackFormat    *AudioPackFormat
	TrackFormats  []*AudioTrackFormat
	Common        bool
}

// AudioTrackFormat describes the sample format of a track.
type AudioTrackFormat struct {
	ID           TrackFormatID
	Name         string
	Format       FormatDefinition
	StreamFormat *AudioStreamFormat
	Common       bool
}

// AudioTrackUID identifies one physical track of the file. Either
// TrackFormat or ChannelFormat describes the track's content.
type AudioTrackUID struct {
	ID            TrackUIDID
	SampleRate    int
	BitDepth      int
	TrackFormat   *AudioTrackFormat
	ChannelFormat *AudioChannelFormat
	PackFormat    *AudioPackFormat
}

// FirstSpeakerLabel returns the first non-empty speaker label of the
// channel's block formats.
func (c *AudioChannelFormat) FirstSpeakerLabel() string {
	if c == nil {
		return ""
	}

	for _, b := range c.Blocks {
		for _, label := range b.SpeakerLabels {
			if label != "" {
				return label
			}
		}
	}

	return ""
}
