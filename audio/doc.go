// Package audio decodes and encodes the RIFF/WAVE containers handled by the
// local engine. Decoded audio is mono float32 in [-1, 1] at 16 kHz.
package audio
