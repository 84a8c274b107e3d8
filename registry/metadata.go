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

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/optakt/ink-caller/codec/scale"
)

// Version is the only metadata version that can be decoded. It is the version
// that nodes return for `state_getMetadata`.
const Version = 14

var magic = []byte("meta")

// ErrNotFound is returned when a pallet, call, storage entry or error is not
// part of the runtime.
var ErrNotFound = errors.New("not found in runtime metadata")

// Metadata is the decoded runtime metadata of a chain: its type registry and
// the calls, events, errors and storage entries of every pallet.
type Metadata struct {
	types   map[uint32]Type
	pallets []Pallet
}

// Pallet describes one pallet of the runtime. Calls, Event and Error are type
// IDs of variant types and are nil when the pallet has none.
type Pallet struct {
	Name    string
	Index   uint8
	Calls   *uint32
	Event   *uint32
	Error   *uint32
	Storage []Entry
}

// Entry is a storage entry. Plain entries have no key type.
type Entry struct {
	Name  string
	Plain bool
	Key   uint32
	Value uint32
}

// Decode decodes metadata as returned by `state_getMetadata`.
func Decode(data []byte) (*Metadata, error) {

	dec := scale.NewDecoder(data)

	prefix, err := dec.Fixed(len(magic))
	if err != nil {
		return nil, fmt.Errorf("could not decode magic number: %w", err)
	}
	if !bytes.Equal(prefix, magic) {
		return nil, fmt.Errorf("invalid magic number (0x%x)", prefix)
	}
	version, err := dec.U8()
	if err != nil {
		return nil, fmt.Errorf("could not decode version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("unsupported metadata version (have: %d, want: %d)", version, Version)
	}

	m := Metadata{
		types: make(map[uint32]Type),
	}

	count, err := dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode type count: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		id, err := compactID(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode type id (position: %d): %w", i, err)
		}
		typ, err := decodeType(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode type (id: %d): %w", id, err)
		}
		m.types[id] = typ
	}

	count, err = dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode pallet count: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		pallet, err := decodePallet(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode pallet (position: %d): %w", i, err)
		}
		m.pallets = append(m.pallets, pallet)
	}

	// The extrinsic format and the runtime type follow; the client builds its
	// extrinsics by hand and needs neither.

	return &m, nil
}

// Type returns the type with the given ID.
func (m *Metadata) Type(id uint32) (Type, error) {
	typ, ok := m.types[id]
	if !ok {
		return Type{}, fmt.Errorf("unknown type (id: %d)", id)
	}
	return typ, nil
}

// Pallet returns the pallet with the given name.
func (m *Metadata) Pallet(name string) (Pallet, error) {
	for _, pallet := range m.pallets {
		if pallet.Name == name {
			return pallet, nil
		}
	}
	return Pallet{}, fmt.Errorf("pallet %s: %w", name, ErrNotFound)
}

// CallIndex returns the pallet and call indices that prefix the encoded call
// with the given names.
func (m *Metadata) CallIndex(pallet string, call string) (uint8, uint8, error) {

	p, err := m.Pallet(pallet)
	if err != nil {
		return 0, 0, err
	}
	if p.Calls == nil {
		return 0, 0, fmt.Errorf("calls of pallet %s: %w", pallet, ErrNotFound)
	}
	calls, err := m.Type(*p.Calls)
	if err != nil {
		return 0, 0, err
	}

	for _, variant := range calls.Variants {
		if variant.Name == call {
			return p.Index, variant.Index, nil
		}
	}

	return 0, 0, fmt.Errorf("call %s.%s: %w", pallet, call, ErrNotFound)
}

// Entry returns the storage entry of the pallet with the given name.
func (m *Metadata) Entry(pallet string, name string) (Entry, error) {

	p, err := m.Pallet(pallet)
	if err != nil {
		return Entry{}, err
	}
	for _, entry := range p.Storage {
		if entry.Name == name {
			return entry, nil
		}
	}

	return Entry{}, fmt.Errorf("storage entry %s.%s: %w", pallet, name, ErrNotFound)
}

// ModuleError returns the name of the error with the given code in the pallet
// with the given index, e.g. `Contracts.ContractTrapped`.
func (m *Metadata) ModuleError(index uint8, code uint8) (string, error) {

	for _, p := range m.pallets {
		if p.Index != index {
			continue
		}
		if p.Error == nil {
			return "", fmt.Errorf("errors of pallet %s: %w", p.Name, ErrNotFound)
		}
		errs, err := m.Type(*p.Error)
		if err != nil {
			return "", err
		}
		variant, ok := errs.Variant(code)
		if !ok {
			return "", fmt.Errorf("error %d of pallet %s: %w", code, p.Name, ErrNotFound)
		}
		return p.Name + "." + variant.Name, nil
	}

	return "", fmt.Errorf("pallet with index %d: %w", index, ErrNotFound)
}

func decodeType(dec *scale.Decoder) (Type, error) {

	var typ Type

	path, err := strings(dec)
	if err != nil {
		return Type{}, fmt.Errorf("could not decode path: %w", err)
	}
	typ.Path = path

	params, err := dec.Compact()
	if err != nil {
		return Type{}, fmt.Errorf("could not decode type parameter count: %w", err)
	}
	for i := uint64(0); i < params; i++ {
		_, err = dec.Vec()
		if err != nil {
			return Type{}, fmt.Errorf("could not decode type parameter name: %w", err)
		}
		_, err = optionalID(dec)
		if err != nil {
			return Type{}, fmt.Errorf("could not decode type parameter type: %w", err)
		}
	}

	kind, err := dec.U8()
	if err != nil {
		return Type{}, fmt.Errorf("could not decode type kind: %w", err)
	}
	typ.Kind = Kind(kind)

	switch typ.Kind {

	case KindComposite:
		typ.Fields, err = fields(dec)

	case KindVariant:
		typ.Variants, err = variants(dec)

	case KindSequence, KindCompact:
		typ.Elem, err = compactID(dec)

	case KindArray:
		typ.Len, err = dec.U32()
		if err == nil {
			typ.Elem, err = compactID(dec)
		}

	case KindTuple:
		var count uint64
		count, err = dec.Compact()
		for i := uint64(0); err == nil && i < count; i++ {
			var id uint32
			id, err = compactID(dec)
			typ.Tuple = append(typ.Tuple, id)
		}

	case KindPrimitive:
		var primitive uint8
		primitive, err = dec.U8()
		typ.Primitive = Primitive(primitive)
		if err == nil && typ.Primitive > PrimitiveI256 {
			err = fmt.Errorf("unknown primitive (%d)", primitive)
		}

	case KindBitSequence:
		typ.Elem, err = compactID(dec)
		if err == nil {
			_, err = compactID(dec)
		}

	default:
		err = fmt.Errorf("unknown type kind (%d)", kind)
	}
	if err != nil {
		return Type{}, err
	}

	_, err = strings(dec)
	if err != nil {
		return Type{}, fmt.Errorf("could not decode docs: %w", err)
	}

	return typ, nil
}

func fields(dec *scale.Decoder) ([]Field, error) {

	count, err := dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode field count: %w", err)
	}

	fields := make([]Field, 0, count)
	for i := uint64(0); i < count; i++ {
		name, err := optionalString(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode field name: %w", err)
		}
		id, err := compactID(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode field type: %w", err)
		}
		typeName, err := optionalString(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode field type name: %w", err)
		}
		_, err = strings(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode field docs: %w", err)
		}
		fields = append(fields, Field{Name: name, Type: id, TypeName: typeName})
	}

	return fields, nil
}

func variants(dec *scale.Decoder) ([]Variant, error) {

	count, err := dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode variant count: %w", err)
	}

	variants := make([]Variant, 0, count)
	for i := uint64(0); i < count; i++ {
		name, err := dec.Vec()
		if err != nil {
			return nil, fmt.Errorf("could not decode variant name: %w", err)
		}
		fields, err := fields(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode fields of variant %s: %w", name, err)
		}
		index, err := dec.U8()
		if err != nil {
			return nil, fmt.Errorf("could not decode index of variant %s: %w", name, err)
		}
		_, err = strings(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode docs of variant %s: %w", name, err)
		}
		variants = append(variants, Variant{Name: string(name), Index: index, Fields: fields})
	}

	return variants, nil
}

func decodePallet(dec *scale.Decoder) (Pallet, error) {

	var pallet Pallet

	name, err := dec.Vec()
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode name: %w", err)
	}
	pallet.Name = string(name)

	ok, err := dec.Option()
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode storage marker: %w", err)
	}
	if ok {
		pallet.Storage, err = storage(dec)
		if err != nil {
			return Pallet{}, fmt.Errorf("could not decode storage of pallet %s: %w", pallet.Name, err)
		}
	}

	pallet.Calls, err = optionalID(dec)
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode calls of pallet %s: %w", pallet.Name, err)
	}
	pallet.Event, err = optionalID(dec)
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode event of pallet %s: %w", pallet.Name, err)
	}

	constants, err := dec.Compact()
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode constant count of pallet %s: %w", pallet.Name, err)
	}
	for i := uint64(0); i < constants; i++ {
		_, err = dec.Vec()
		if err == nil {
			_, err = compactID(dec)
		}
		if err == nil {
			_, err = dec.Vec()
		}
		if err == nil {
			_, err = strings(dec)
		}
		if err != nil {
			return Pallet{}, fmt.Errorf("could not decode constant of pallet %s: %w", pallet.Name, err)
		}
	}

	pallet.Error, err = optionalID(dec)
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode error of pallet %s: %w", pallet.Name, err)
	}
	pallet.Index, err = dec.U8()
	if err != nil {
		return Pallet{}, fmt.Errorf("could not decode index of pallet %s: %w", pallet.Name, err)
	}

	return pallet, nil
}

func storage(dec *scale.Decoder) ([]Entry, error) {

	_, err := dec.Vec()
	if err != nil {
		return nil, fmt.Errorf("could not decode prefix: %w", err)
	}

	count, err := dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode entry count: %w", err)
	}

	entries := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {

		name, err := dec.Vec()
		if err != nil {
			return nil, fmt.Errorf("could not decode entry name: %w", err)
		}
		entry := Entry{Name: string(name)}

		// Modifier, which only matters for the default value.
		_, err = dec.U8()
		if err != nil {
			return nil, fmt.Errorf("could not decode modifier of entry %s: %w", entry.Name, err)
		}

		kind, err := dec.U8()
		if err != nil {
			return nil, fmt.Errorf("could not decode kind of entry %s: %w", entry.Name, err)
		}
		switch kind {
		case 0:
			entry.Plain = true
			entry.Value, err = compactID(dec)
		case 1:
			_, err = dec.Vec()
			if err == nil {
				entry.Key, err = compactID(dec)
			}
			if err == nil {
				entry.Value, err = compactID(dec)
			}
		default:
			err = fmt.Errorf("unknown storage entry kind (%d)", kind)
		}
		if err != nil {
			return nil, fmt.Errorf("could not decode type of entry %s: %w", entry.Name, err)
		}

		_, err = dec.Vec()
		if err != nil {
			return nil, fmt.Errorf("could not decode default of entry %s: %w", entry.Name, err)
		}
		_, err = strings(dec)
		if err != nil {
			return nil, fmt.Errorf("could not decode docs of entry %s: %w", entry.Name, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func compactID(dec *scale.Decoder) (uint32, error) {
	id, err := dec.Compact()
	if err != nil {
		return 0, err
	}
	if id > uint64(^uint32(0)) {
		return 0, fmt.Errorf("type id out of range (%d)", id)
	}
	return uint32(id), nil
}

func optionalID(dec *scale.Decoder) (*uint32, error) {
	ok, err := dec.Option()
	if err != nil || !ok {
		return nil, err
	}
	id, err := compactID(dec)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalString(dec *scale.Decoder) (string, error) {
	ok, err := dec.Option()
	if err != nil || !ok {
		return "", err
	}
	s, err := dec.Vec()
	return string(s), err
}

func strings(dec *scale.Decoder) ([]string, error) {
	count, err := dec.Compact()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		s, err := dec.Vec()
		if err != nil {
			return nil, err
		}
		out = append(out, string(s))
	}
	return out, nil
}
