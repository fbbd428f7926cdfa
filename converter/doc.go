// Package converter translates log events to and from documents.
//
// Three codecs are layered on top of each other: FrameCodec handles single call-site
// frames, ErrorCodec handles error chains and uses FrameCodec for their traces, and
// EventCodec handles whole log events using both. Field names written by the codecs are a
// storage contract shared with existing collections and must not change.
//
// Codecs hold no mutable state and are safe for concurrent use.
package converter
