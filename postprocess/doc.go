// Package postprocess turns raw transcripts into final text: literal word
// replacement followed by optional language-model enhancement.
package postprocess
