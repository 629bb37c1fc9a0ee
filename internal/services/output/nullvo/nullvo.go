// Package nullvo is a window-only video output with no rendering
// backend. It satisfies the force-window contract for headless runs and
// keeps the window state machine observable in tests.
package nullvo

import (
	"sync"

	"playercore/internal/domain/ports"
)

// Formats the output claims to support, in preference order.
var supportedFormats = []ports.PixelFormat{1, 2, 3}

type VO struct {
	mu         sync.Mutex
	configOK   bool
	params     ports.ImageParams
	paused     bool
	hasFrame   bool
	wantRedraw bool
	cursor     bool
	fullscreen bool
	events     ports.VOEvents
	redraws    int
}

func New() *VO {
	return &VO{cursor: true}
}

func (v *VO) SetPaused(paused bool) {
	v.mu.Lock()
	v.paused = paused
	v.mu.Unlock()
}

func (v *VO) Redraw() {
	v.mu.Lock()
	v.redraws++
	v.wantRedraw = false
	v.mu.Unlock()
}

func (v *VO) WantRedraw() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wantRedraw
}

func (v *VO) HasFrame() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasFrame
}

func (v *VO) ConfigOK() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.configOK
}

func (v *VO) QueryAndResetEvents() ports.VOEvents {
	v.mu.Lock()
	defer v.mu.Unlock()
	ev := v.events
	v.events = 0
	return ev
}

func (v *VO) QueryFormats() []ports.PixelFormat {
	return append([]ports.PixelFormat(nil), supportedFormats...)
}

func (v *VO) Reconfig(params ports.ImageParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params = params
	v.configOK = true
	return nil
}

func (v *VO) SetCursorVisibility(visible bool) {
	v.mu.Lock()
	v.cursor = visible
	v.mu.Unlock()
}

func (v *VO) InhibitScreensaver(bool) {}

func (v *VO) Fullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fullscreen
}

func (v *VO) Uninit() {
	v.mu.Lock()
	v.configOK = false
	v.hasFrame = false
	v.mu.Unlock()
}
