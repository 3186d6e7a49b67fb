package core

// Version identifies the library build, reported by firmware over the
// stats stream and printed by the host monitor.
const Version = "s2timer v1.0.0"
