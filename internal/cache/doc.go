// Package cache implements the cross-scan findings cache keyed by
// (frame_id, absolute_path, sha256(content)): an in-memory LRU front
// layer backed by content-hash-addressed JSON entries under
// .warden/findings_cache/<frame_id>/. A cache hit means the frame does
// not run again for that file, so an entry's value is an empty-or-not
// Finding slice rather than a presence flag — an empty slice is a valid
// cached result meaning "frame ran clean".
package cache
