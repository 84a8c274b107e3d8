// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package registry

// Kind is the shape of a type in the portable type registry of the runtime.
type Kind uint8

// Type definition kinds, in the order of their encoding.
const (
	KindComposite Kind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence
)

// Primitive is a primitive type of the registry.
type Primitive uint8

// Primitive types, in the order of their encoding.
const (
	PrimitiveBool Primitive = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

// size returns the encoded size of fixed-width primitives, or zero for the
// ones of variable length.
func (p Primitive) size() int {
	switch p {
	case PrimitiveBool, PrimitiveU8, PrimitiveI8:
		return 1
	case PrimitiveU16, PrimitiveI16:
		return 2
	case PrimitiveChar, PrimitiveU32, PrimitiveI32:
		return 4
	case PrimitiveU64, PrimitiveI64:
		return 8
	case PrimitiveU128, PrimitiveI128:
		return 16
	case PrimitiveU256, PrimitiveI256:
		return 32
	default:
		return 0
	}
}

// Type is one entry of the type registry. Only the members that belong to its
// kind are set: Fields for composites, Variants for variants, Elem for
// sequences, arrays and compacts, Len for arrays, Tuple for tuples and
// Primitive for primitives. Bit sequences keep their store type in Elem.
type Type struct {
	Path      []string
	Kind      Kind
	Fields    []Field
	Variants  []Variant
	Elem      uint32
	Len       uint32
	Tuple     []uint32
	Primitive Primitive
}

// Field is a named or unnamed field of a composite type or variant.
type Field struct {
	Name     string
	Type     uint32
	TypeName string
}

// Variant is one variant of an enum type.
type Variant struct {
	Name   string
	Index  uint8
	Fields []Field
}

// Variant returns the variant with the given index.
func (t Type) Variant(index uint8) (Variant, bool) {
	for _, variant := range t.Variants {
		if variant.Index == index {
			return variant, true
		}
	}
	return Variant{}, false
}

// Field returns the field with the given name.
func (t Type) Field(name string) (Field, bool) {
	for _, field := range t.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
