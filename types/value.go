// Package types defines the value representation shared by the store,
// the scripting language, and the execution engine.
package types

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
	KindObject
	KindDocument
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "datetime"
	case KindObject:
		return "object"
	case KindDocument:
		return "document"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// ObjID is a stable small-integer reference to a GameObject, renderable
// as "#N". It is the dbref from the glossary.
type ObjID int64

// Nothing is the dbref used when no object applies.
const Nothing ObjID = -1

func (id ObjID) String() string {
	return "#" + strconv.FormatInt(int64(id), 10)
}

// Document is an opaque, store-defined structured value (the "document
// value" alternative of the store's TaggedValue contract, §6). The core
// never interprets its contents; it only round-trips it.
type Document struct {
	Raw any
}

// Value is the tagged sum type every property read/write, argument, and
// expression result in the scripting language carries: null | bool |
// int64 | float64 | string | datetime | document | object-reference |
// list. It replaces the dynamic-typing surface the source system used
// (see SPEC_FULL.md's redesign note).
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
	obj  ObjID
	doc  Document
	list []Value
}

// Null is the zero Value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func String(s string) Value          { return Value{kind: KindString, s: s} }
func Time(t time.Time) Value         { return Value{kind: KindTime, t: t} }
func Object(id ObjID) Value          { return Value{kind: KindObject, obj: id} }
func DocumentValue(d Document) Value { return Value{kind: KindDocument, doc: d} }
func List(items []Value) Value       { return Value{kind: KindList, list: items} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool         { return v.b }
func (v Value) Int() int64         { return v.i }
func (v Value) Float() float64     { return v.f }
func (v Value) Str() string        { return v.s }
func (v Value) AsTime() time.Time  { return v.t }
func (v Value) Obj() ObjID         { return v.obj }
func (v Value) Doc() Document      { return v.doc }
func (v Value) List() []Value      { return v.list }

// Truthy applies the language's truthiness rules: false, null, zero,
// empty string and empty list are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) != 0
	default:
		return true
	}
}

// String renders the value the way a script's implicit to-string
// conversion would (used when a verb returns a non-boolean value, §4.6).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindTime:
		return v.t.UTC().Format(time.RFC3339)
	case KindObject:
		return v.obj.String()
	case KindDocument:
		return fmt.Sprintf("%v", v.doc.Raw)
	case KindList:
		out := "{"
		for i, item := range v.list {
			if i > 0 {
				out += ", "
			}
			out += item.String()
		}
		return out + "}"
	default:
		return ""
	}
}

// Equal implements deep equality across the tagged alternatives.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindTime:
		return v.t.Equal(other.t)
	case KindObject:
		return v.obj == other.obj
	case KindDocument:
		return fmt.Sprintf("%v", v.doc.Raw) == fmt.Sprintf("%v", other.doc.Raw)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
