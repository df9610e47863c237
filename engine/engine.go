// Package engine exposes the standard operation catalogue of a scene-graph
// engine through a mainthread.Core.
//
// The Engine interface is the privileged capability set: synchronous,
// side-effecting primitives that must only run on the engine's main thread.
// Table wraps an Engine in producer functions that are safe to call from
// any goroutine; each one validates its arguments, fills a pooled command
// record, and enqueues it, and the work itself happens when the owning
// thread drains the core.
package engine

// Object is an opaque handle to an engine-owned entity. Handles may be
// passed freely between goroutines, but only the owning thread ever
// dereferences them.
type Object interface {
	// Name returns the entity's name within the scene graph.
	Name() string
}

// Engine is the set of privileged primitives the dispatcher calls into.
// Implementations must only be invoked from the owning thread; Table
// guarantees that by routing every call through Core.Execute.
type Engine interface {
	// Find looks up an object by name. The second return value reports
	// whether the object exists.
	Find(name string) (Object, bool)

	// Text returns the text content of a text-bearing object.
	Text(obj Object) (string, error)

	// SetText replaces the text content of a text-bearing object.
	SetText(obj Object, text string) error

	// Property returns the named property of obj. The second return value
	// reports whether the property exists.
	Property(obj Object, name string) (any, bool)

	// SetProperty sets the named property of obj.
	SetProperty(obj Object, name string, value any) error

	// Children returns the direct children of obj.
	Children(obj Object) ([]Object, error)

	// Instantiate clones template into the scene and returns the clone.
	Instantiate(template Object) (Object, error)

	// Destroy removes obj from the scene.
	Destroy(obj Object) error

	// SetParent reparents child under parent. A nil parent moves child to
	// the scene root.
	SetParent(child, parent Object) error

	// Translate moves obj by the given delta.
	Translate(obj Object, dx, dy, dz float32) error

	// PlayAudio starts playback on an audio-bearing object.
	PlayAudio(obj Object) error
}
