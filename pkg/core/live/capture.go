package live

// CaptureSource is a microphone: a stream of mono float32 frames at a fixed
// sample rate. The session resamples to CaptureRate before transmission, so
// sources may run at whatever rate the device prefers. Implementations close
// the Frames channel once Stop has been called and the device is released.
type CaptureSource interface {
	// Frames yields capture buffers in arrival order.
	Frames() <-chan []float32
	// SampleRate is the rate of the frames, in Hz.
	SampleRate() int
	// Stop releases the device. Safe to call more than once.
	Stop()
}

// VideoSource is a camera: sampled on demand by the session's frame ticker.
type VideoSource interface {
	// Frame returns the current camera image as JPEG bytes, or ok=false when
	// no frame is available yet.
	Frame() (jpeg []byte, ok bool)
	// Stop releases the camera. Safe to call more than once.
	Stop()
}
