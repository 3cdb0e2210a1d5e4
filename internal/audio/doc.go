// Package audio plays 16-bit PCM through the system audio device using
// oto/v3 and converts decoded or synthesized audio to the playback format.
package audio
