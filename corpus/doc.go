// Package corpus holds the reference sentences measurements are run against.
//
// A Store keeps the sentences in memory in registration order and persists
// every change through a storage.SentenceRepository on a background worker.
// Saves are coalesced: a save always writes the latest state, so a burst of
// mutations may produce fewer repository writes than mutations.
package corpus
