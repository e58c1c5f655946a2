// Command admrender renders the DirectSpeakers programmes and objects of an
// ADM BW64 file to a loudspeaker layout.
//
// Usage:
//
//	admrender render INPUT [OUTPUT_DIR] [--layout 0+5+0] [--element ID] [--gain ID=dB]
//	admrender inspect INPUT [--xml]
//	admrender layouts
//	admrender config init|show
package main
