// Package ear provides the BS.2051 loudspeaker layouts and the
// direct-speakers gain calculation used to map a speaker-labelled input
// channel onto an output layout.
//
//	layout, err := ear.GetLayout("0+5+0")
//	calc := ear.NewDirectSpeakersGainCalculator(layout)
//	gains := make([]float64, layout.NumChannels())
//	err = calc.Calculate(ear.DirectSpeakersMetadata{SpeakerLabels: []string{"M+030"}}, gains)
package ear
