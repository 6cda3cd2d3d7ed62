// Package fish implements the rules of Fish (also known as Literature), a
// team card game played with a 54-card deck split into nine half-suits.
//
// The same Engine type runs in two modes. An authoritative engine, created
// with New, holds every hand and decides outcomes. A mirror engine, created
// with Restore from a redacted State, replays the same events with partial
// information and skips any check that depends on a hand it cannot see.
package fish
