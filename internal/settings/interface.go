package settings

// Layer identifies which configuration layer a write lands in. Base layer
// values survive Save; current-run values shadow base in memory and are
// dropped on exit, which is how transient thermal overrides stay transient.
type Layer string

const (
	LayerBase       Layer = "base"
	LayerCurrentRun Layer = "current_run"
)

// Store is the narrow write interface the governor and profiles depend on.
// Key namespacing and on-disk format are the store's concern. Writes never
// fail at this layer; only Save touches persistent storage.
type Store interface {
	SetBool(layer Layer, section, key string, value bool)
	SetInt(layer Layer, section, key string, value int)
	SetString(layer Layer, section, key, value string)
	Save() error
}
