package transcript

import "strings"

const (
	// WordsPerChunk is the number of words grouped into one synthesized cue.
	WordsPerChunk = 10
	// SecondsPerWord is the synthetic speaking rate used when no timing exists.
	SecondsPerWord = 0.5
)

// SynthesizeChunks splits text on whitespace and groups the words into cues
// of WordsPerChunk words. Timing is derived from word position, so chunk i
// always starts where chunk i-1 ended.
func SynthesizeChunks(text string) []Segment {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	segments := make([]Segment, 0, (len(words)+WordsPerChunk-1)/WordsPerChunk)
	for start := 0; start < len(words); start += WordsPerChunk {
		end := min(start+WordsPerChunk, len(words))
		segments = append(segments, Segment{
			Text:  strings.Join(words[start:end], " "),
			Start: float64(start) * SecondsPerWord,
			End:   float64(end) * SecondsPerWord,
		})
	}
	return segments
}

// SynthesizeSingle turns the whole string into one cue spanning
// [0, wordCount*SecondsPerWord]. This is the legacy VTT behaviour.
func SynthesizeSingle(text string) []Segment {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return []Segment{{
		Text:  strings.Join(words, " "),
		Start: 0,
		End:   float64(len(words)) * SecondsPerWord,
	}}
}
