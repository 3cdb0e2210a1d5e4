// Package session runs a dictation test: it walks the items, tells the
// speaker what to say, and keeps the item gap, re-read, auto-advance and
// clock timers.
//
// The cadence lives in Transition, a pure function from a Session and an
// Event to the next Session and the Effects to carry out. A Runner owns a
// Session and carries out those effects against a real speaker and clock.
package session
