// Package memory provides the in-memory key-value store for rudis.
//
// A Store is a process-wide shared resource: it is created once at
// startup and handed to every component that needs it.
//
// Thread Safety:
//
// A single exclusive lock serializes every operation. The lock is held
// only for the one map access each method performs, never across I/O,
// decoding or encoding. Concurrent writes to the same key race normally;
// the last writer to take the lock wins.
package memory
