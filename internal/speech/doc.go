// Package speech turns dictation text into spoken utterances: voice
// selection, locale wording, and an engine-backed Speaker.
package speech
