package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary represents a PDF dictionary object.
type Dictionary interface {
	Object
	Get(key Name) (Object, bool)
	Set(key Name, value Object)
	Keys() []Name
	Len() int
}

// Array represents a PDF array object.
type Array interface {
	Object
	Get(index int) (Object, bool)
	Len() int
	Append(obj Object)
}

// Stream represents a raw (undecoded) PDF stream.
type Stream interface {
	Object
	Dictionary() Dictionary
	RawData() []byte
	Length() int64
}

// Name represents a PDF name object.
type Name interface {
	Object
	Value() string
}

// String represents a PDF literal string.
type String interface {
	Object
	Value() []byte
}

// Number represents a PDF numeric value.
type Number interface {
	Object
	Int() int64
	Float() float64
	IsInteger() bool
}

// Reference represents an indirect object reference.
type Reference interface {
	Object
	Ref() ObjectRef
}

// IndirectObject binds an object body to its number.
type IndirectObject struct {
	Ref  ObjectRef
	Body Object
}

// Document is an ordered list of indirect objects plus the catalog reference.
// Objects are serialized in slice order, which must be ascending by number.
type Document struct {
	Version string // e.g. "1.3"
	Objects []IndirectObject
	Root    ObjectRef
}

// Add appends body as the next indirect object and returns its reference.
func (d *Document) Add(body Object) ObjectRef {
	ref := ObjectRef{Num: len(d.Objects) + 1}
	d.Objects = append(d.Objects, IndirectObject{Ref: ref, Body: body})
	return ref
}

// Size is the trailer /Size value: highest object number plus the free head.
func (d *Document) Size() int { return len(d.Objects) + 1 }
