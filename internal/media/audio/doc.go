// Package audio extracts a speech-ready audio track from uploaded media.
//
// Extraction mirrors what speech-to-text endpoints expect: the first audio
// stream, video dropped, decoded to 16-bit PCM WAV at 16 kHz mono. The ffmpeg
// binary comes from an injected codec.Loader so the process resolves it once.
package audio
