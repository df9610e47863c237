package engine

import (
	"fmt"

	"github.com/MartenEMD/mainthread"
)

// Table is the registered operation catalogue for one Engine. Every method
// is a producer function: it validates its arguments, enqueues a command on
// the core, and returns without performing any privileged work. Outcomes
// arrive through the supplied results once the owning thread drains the
// core.
//
// An absent required argument never enqueues the intended command; it
// enqueues exactly one escalation instead, and the same error is returned
// synchronously.
type Table struct {
	core *mainthread.Core
	eng  Engine

	find        *mainthread.Op[string, Object]
	text        *mainthread.Op[Object, string]
	setText     *mainthread.VoidOp[textParams]
	instantiate *mainthread.Op[Object, Object]
	destroy     *mainthread.VoidOp[Object]
	setParent   *mainthread.VoidOp[parentParams]
	translate   *mainthread.VoidOp[translateParams]
	playAudio   *mainthread.VoidOp[Object]
	setProperty *mainthread.VoidOp[propertyParams]
}

type textParams struct {
	obj  Object
	text string
}

type parentParams struct {
	child  Object
	parent Object
}

type translateParams struct {
	obj        Object
	dx, dy, dz float32
}

type propertyParams struct {
	obj   Object
	name  string
	value any
}

// New registers the standard operation set on core, bound to eng.
func New(core *mainthread.Core, eng Engine) (*Table, error) {
	if core == nil {
		return nil, fmt.Errorf("engine: core is nil")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine: engine is nil")
	}

	t := &Table{core: core, eng: eng}

	var err error
	if t.find, err = mainthread.Register(core, "engine.find", func(name string) (Object, error) {
		obj, _ := eng.Find(name)
		return obj, nil
	}); err != nil {
		return nil, err
	}

	if t.text, err = mainthread.Register(core, "engine.text", eng.Text); err != nil {
		return nil, err
	}

	if t.setText, err = mainthread.RegisterVoid(core, "engine.set-text", func(p textParams) error {
		return eng.SetText(p.obj, p.text)
	}); err != nil {
		return nil, err
	}

	if t.instantiate, err = mainthread.Register(core, "engine.instantiate", eng.Instantiate); err != nil {
		return nil, err
	}

	if t.destroy, err = mainthread.RegisterVoid(core, "engine.destroy", eng.Destroy); err != nil {
		return nil, err
	}

	if t.setParent, err = mainthread.RegisterVoid(core, "engine.set-parent", func(p parentParams) error {
		return eng.SetParent(p.child, p.parent)
	}); err != nil {
		return nil, err
	}

	if t.translate, err = mainthread.RegisterVoid(core, "engine.translate", func(p translateParams) error {
		return eng.Translate(p.obj, p.dx, p.dy, p.dz)
	}); err != nil {
		return nil, err
	}

	if t.playAudio, err = mainthread.RegisterVoid(core, "engine.play-audio", eng.PlayAudio); err != nil {
		return nil, err
	}

	if t.setProperty, err = mainthread.RegisterVoid(core, "engine.set-property", func(p propertyParams) error {
		return eng.SetProperty(p.obj, p.name, p.value)
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// Find schedules a lookup of the named object. An unknown name publishes a
// nil Object; it is not an error.
func (t *Table) Find(name string, result *mainthread.ResultOf[Object]) error {
	if name == "" {
		return t.precondition("engine.find", "name is empty")
	}
	return t.find.Call(name, result)
}

// Text schedules a read of obj's text content.
func (t *Table) Text(obj Object, result *mainthread.ResultOf[string]) error {
	if obj == nil {
		return t.precondition("engine.text", "object is nil")
	}
	return t.text.Call(obj, result)
}

// SetText schedules a replacement of obj's text content. An empty text is
// valid.
func (t *Table) SetText(obj Object, text string, result *mainthread.Result) error {
	if obj == nil {
		return t.precondition("engine.set-text", "object is nil")
	}
	return t.setText.Call(textParams{obj: obj, text: text}, result)
}

// SetProperty schedules an untyped write of the named property. A nil value
// is valid; use a typed PropertyOp for reads.
func (t *Table) SetProperty(obj Object, name string, value any, result *mainthread.Result) error {
	if obj == nil {
		return t.precondition("engine.set-property", "object is nil")
	}
	if name == "" {
		return t.precondition("engine.set-property", "property name is empty")
	}
	return t.setProperty.Call(propertyParams{obj: obj, name: name, value: value}, result)
}

// Instantiate schedules cloning template into the scene; the clone is
// published through result.
func (t *Table) Instantiate(template Object, result *mainthread.ResultOf[Object]) error {
	if template == nil {
		return t.precondition("engine.instantiate", "template is nil")
	}
	return t.instantiate.Call(template, result)
}

// Destroy schedules removal of obj from the scene.
func (t *Table) Destroy(obj Object, result *mainthread.Result) error {
	if obj == nil {
		return t.precondition("engine.destroy", "object is nil")
	}
	return t.destroy.Call(obj, result)
}

// SetParent schedules reparenting child under parent. A nil parent moves
// child to the scene root.
func (t *Table) SetParent(child, parent Object, result *mainthread.Result) error {
	if child == nil {
		return t.precondition("engine.set-parent", "child is nil")
	}
	return t.setParent.Call(parentParams{child: child, parent: parent}, result)
}

// Translate schedules moving obj by the given delta.
func (t *Table) Translate(obj Object, dx, dy, dz float32, result *mainthread.Result) error {
	if obj == nil {
		return t.precondition("engine.translate", "object is nil")
	}
	return t.translate.Call(translateParams{obj: obj, dx: dx, dy: dy, dz: dz}, result)
}

// PlayAudio schedules starting playback on obj.
func (t *Table) PlayAudio(obj Object, result *mainthread.Result) error {
	if obj == nil {
		return t.precondition("engine.play-audio", "object is nil")
	}
	return t.playAudio.Call(obj, result)
}

// precondition escalates a producer-side validation failure and returns the
// same error to the caller. The intended command is never enqueued.
func (t *Table) precondition(op, msg string) error {
	err := fmt.Errorf("%s: %s: %w", op, msg, mainthread.ErrPrecondition)
	t.core.RaiseError(err)
	return err
}

// PropertyOp reads a named property with the value type fixed at
// registration. Because the result channel is typed, there is no runtime
// switch over requested type names: a stored value of an unexpected dynamic
// type surfaces as an escalated error, not an unimplemented-operation
// crash.
type PropertyOp[T any] struct {
	table    *Table
	property string
	get      *mainthread.Op[Object, T]
	children *mainthread.Op[Object, []T]
}

// RegisterProperty registers a typed getter for the named property,
// together with a variant that collects the property from an object's
// direct children. Registering the same property twice fails with
// mainthread.ErrDuplicateOperation.
//
// Example:
//
//	health, err := engine.RegisterProperty[int](table, "health")
//	...
//	var r mainthread.ResultOf[int]
//	health.Get(boss, &r)
//	hp := r.Get()
func RegisterProperty[T any](t *Table, property string) (*PropertyOp[T], error) {
	if t == nil {
		return nil, fmt.Errorf("engine: table is nil")
	}
	if property == "" {
		return nil, fmt.Errorf("engine: property name is empty")
	}

	p := &PropertyOp[T]{table: t, property: property}

	var err error
	if p.get, err = mainthread.Register(t.core, "engine.property:"+property, func(obj Object) (T, error) {
		return readProperty[T](t.eng, obj, property)
	}); err != nil {
		return nil, err
	}

	if p.children, err = mainthread.Register(t.core, "engine.property-of-children:"+property, func(obj Object) ([]T, error) {
		children, err := t.eng.Children(obj)
		if err != nil {
			return nil, err
		}
		values := make([]T, len(children))
		for i, child := range children {
			if values[i], err = readProperty[T](t.eng, child, property); err != nil {
				return nil, err
			}
		}
		return values, nil
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// Get schedules a typed read of the property on obj.
func (p *PropertyOp[T]) Get(obj Object, result *mainthread.ResultOf[T]) error {
	if obj == nil {
		return p.table.precondition(p.get.Name(), "object is nil")
	}
	return p.get.Call(obj, result)
}

// GetChildren schedules a typed read of the property on every direct child
// of obj, published in child order.
func (p *PropertyOp[T]) GetChildren(obj Object, result *mainthread.ResultOf[[]T]) error {
	if obj == nil {
		return p.table.precondition(p.children.Name(), "object is nil")
	}
	return p.children.Call(obj, result)
}

// readProperty fetches and type-checks a single property value. Runs on the
// owning thread.
func readProperty[T any](eng Engine, obj Object, property string) (T, error) {
	var zero T
	value, ok := eng.Property(obj, property)
	if !ok {
		return zero, fmt.Errorf("object %q has no property %q", obj.Name(), property)
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("property %q of %q: have %T, want %T", property, obj.Name(), value, zero)
	}
	return typed, nil
}
