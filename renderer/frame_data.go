package renderer

// FrameData is whatever a caller keeps per frame-in-flight slot. The orchestrator only
// needs the synchronization bundle.
type FrameData interface {
	Sync() *FrameSync
}

type BaseFrameData struct {
	*FrameSync
}

// CameraFrameData gives each slot its own camera uniform so updating it never races
// a frame the GPU is still reading.
type CameraFrameData struct {
	BaseFrameData
	View *RenderView
}
