// Package frame defines the Finding/FrameResult data model shared across
// the validation layer, the Frame contract every check implements, the
// CheckRegistry, execution strategies (single/batch/parallel), and the
// per-file dynamic timeout. internal/pipeline drives frames through
// their lifecycle; internal/cache and internal/baseline operate on the
// Finding values frames produce.
package frame
