package cli

import (
	"math"
	"slices"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/navigation"
)

// termRenderer is the preview's stand-in for a panorama renderer. It keeps
// the state a real renderer would draw so the model can print it, and it
// receives the engine's host callbacks.
type termRenderer struct {
	loading  string
	view     domain.View
	hotspots []domain.Hotspot

	rotating bool
	speed    float64

	// loads counts LoadScene calls; the model compares it with the loads
	// it has already answered.
	loads int

	openedURL string
	newWindow bool
	lastFault *navigation.Fault
}

func (r *termRenderer) LoadScene(image string, view domain.View) {
	r.loads++
	r.loading = image
}

func (r *termRenderer) SetCameraView(view domain.View) { r.view = view }

func (r *termRenderer) RenderHotspot(h domain.Hotspot) {
	r.hotspots = append(r.hotspots, h)
}

func (r *termRenderer) RemoveHotspot(id string) {
	r.hotspots = slices.DeleteFunc(r.hotspots, func(h domain.Hotspot) bool { return h.ID == id })
}

func (r *termRenderer) SetAutorotate(active bool, speed float64) {
	r.rotating = active
	r.speed = speed
}

func (r *termRenderer) OpenURL(url string, newWindow bool) {
	r.openedURL = url
	r.newWindow = newWindow
	r.lastFault = nil
}

func (r *termRenderer) Fault(f navigation.Fault) {
	r.lastFault = &f
}

func (r *termRenderer) clearStatus() {
	r.openedURL = ""
	r.newWindow = false
	r.lastFault = nil
}

// rotate advances the displayed yaw by the autorotate speed over dt seconds.
func (r *termRenderer) rotate(dt float64) {
	yaw := math.Round((r.view.Yaw+r.speed*dt)*10) / 10
	r.view.Yaw = domain.NormalizeYaw(yaw)
}
