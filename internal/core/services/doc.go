// Package services holds coursemate's use cases behind the driving ports.
//
// Ingest turns course sources into record files, Embed adds vectors to them
// and Index loads them into a course collection. Chat answers questions from
// retrieved context within a Session, which owns the history and the
// retrieval cache. Eval replays question sets through fresh sessions, and
// Settings maps the config store onto domain.AppSettings.
//
// Services reach infrastructure only through driven ports, so every adapter
// can be swapped for a test double.
package services
