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
	"fmt"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

// maxDepth bounds the nesting of values, so that recursive types in broken
// metadata cannot exhaust the stack.
const maxDepth = 64

// Events decodes the value of the `System.Events` storage entry of a block.
func (m *Metadata) Events(data []byte) ([]ink.EventRecord, error) {

	entry, err := m.Entry("System", "Events")
	if err != nil {
		return nil, err
	}
	seq, err := m.Type(entry.Value)
	if err != nil {
		return nil, err
	}
	if seq.Kind != KindSequence {
		return nil, fmt.Errorf("events storage is not a sequence (kind: %d)", seq.Kind)
	}
	record, err := m.Type(seq.Elem)
	if err != nil {
		return nil, err
	}

	dec := scale.NewDecoder(data)
	count, err := dec.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode event count: %w", err)
	}

	records := make([]ink.EventRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		rec, err := m.record(dec, data, record)
		if err != nil {
			return nil, fmt.Errorf("could not decode event record (position: %d): %w", i, err)
		}
		records = append(records, rec)
	}

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("trailing bytes after events (remaining: %d)", dec.Remaining())
	}

	return records, nil
}

func (m *Metadata) record(dec *scale.Decoder, data []byte, record Type) (ink.EventRecord, error) {

	var rec ink.EventRecord
	for _, field := range record.Fields {

		var err error
		switch field.Name {
		case "phase":
			rec.Phase, rec.Extrinsic, err = m.phase(dec, field.Type)
		case "event":
			rec.Event, err = m.event(dec, data, field.Type)
		default:
			err = m.skip(dec, field.Type, 0)
		}
		if err != nil {
			return ink.EventRecord{}, fmt.Errorf("could not decode %s: %w", field.Name, err)
		}
	}

	return rec, nil
}

func (m *Metadata) phase(dec *scale.Decoder, id uint32) (ink.Phase, uint32, error) {

	variant, err := m.variant(dec, id)
	if err != nil {
		return 0, 0, err
	}

	switch variant.Name {
	case "ApplyExtrinsic":
		index, err := dec.U32()
		if err != nil {
			return 0, 0, fmt.Errorf("could not decode extrinsic index: %w", err)
		}
		return ink.PhaseApplyExtrinsic, index, nil
	case "Finalization":
		return ink.PhaseFinalization, 0, nil
	case "Initialization":
		return ink.PhaseInitialization, 0, nil
	default:
		return 0, 0, fmt.Errorf("unknown phase (%s)", variant.Name)
	}
}

// event decodes a runtime event, which wraps the event of one pallet.
func (m *Metadata) event(dec *scale.Decoder, data []byte, id uint32) (ink.Event, error) {

	outer, err := m.variant(dec, id)
	if err != nil {
		return ink.Event{}, err
	}
	if len(outer.Fields) != 1 {
		return ink.Event{}, fmt.Errorf("invalid runtime event variant %s (fields: %d)", outer.Name, len(outer.Fields))
	}
	inner, err := m.variant(dec, outer.Fields[0].Type)
	if err != nil {
		return ink.Event{}, fmt.Errorf("could not decode %s event: %w", outer.Name, err)
	}

	event := ink.Event{
		Pallet: outer.Name,
		Name:   inner.Name,
	}

	start := dec.Offset()
	for _, field := range inner.Fields {

		from := dec.Offset()
		err = m.skip(dec, field.Type, 0)
		if err != nil {
			return ink.Event{}, fmt.Errorf("could not decode field %s of event %s: %w", field.Name, event, err)
		}
		raw := data[from:dec.Offset()]

		switch {
		case event.Pallet == "Contracts" && event.Name == "ContractEmitted" && field.Name == "contract":
			address, err := ink.AddressFromBytes(raw)
			if err != nil {
				return ink.Event{}, fmt.Errorf("invalid emitting contract: %w", err)
			}
			event.Contract = &address
		case event.Pallet == "Contracts" && event.Name == "ContractEmitted" && field.Name == "data":
			event.Data, err = scale.NewDecoder(raw).Vec()
			if err != nil {
				return ink.Event{}, fmt.Errorf("invalid emitted data: %w", err)
			}
		case field.Name == "dispatch_error":
			event.Error = m.dispatchError(raw, field.Type)
		}
	}

	if event.Data == nil && dec.Offset() > start {
		event.Data = data[start:dec.Offset()]
	}

	return event, nil
}

// dispatchError names an encoded dispatch error. Module errors are resolved
// to the name of the error in their pallet.
func (m *Metadata) dispatchError(raw []byte, id uint32) string {

	dec := scale.NewDecoder(raw)
	variant, err := m.variant(dec, id)
	if err != nil {
		return fmt.Sprintf("dispatch error 0x%x", raw)
	}

	switch {
	case variant.Name == "Module":
		// Older runtimes encode the error as one byte, newer ones as four,
		// with the code first.
		index, err := dec.U8()
		if err != nil {
			return fmt.Sprintf("dispatch error 0x%x", raw)
		}
		code, err := dec.U8()
		if err != nil {
			return fmt.Sprintf("dispatch error 0x%x", raw)
		}
		name, err := m.ModuleError(index, code)
		if err != nil {
			return fmt.Sprintf("Module(index: %d, error: %d)", index, code)
		}
		return name

	case len(variant.Fields) == 1:
		typ, err := m.Type(variant.Fields[0].Type)
		if err != nil || typ.Kind != KindVariant {
			return variant.Name
		}
		nested, err := m.variant(dec, variant.Fields[0].Type)
		if err != nil {
			return variant.Name
		}
		return variant.Name + "(" + nested.Name + ")"

	default:
		return variant.Name
	}
}

// variant reads the index of a value of the variant type with the given ID.
func (m *Metadata) variant(dec *scale.Decoder, id uint32) (Variant, error) {

	typ, err := m.Type(id)
	if err != nil {
		return Variant{}, err
	}
	if typ.Kind != KindVariant {
		return Variant{}, fmt.Errorf("type is not a variant (id: %d, kind: %d)", id, typ.Kind)
	}
	index, err := dec.U8()
	if err != nil {
		return Variant{}, fmt.Errorf("could not decode variant index: %w", err)
	}
	variant, ok := typ.Variant(index)
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant (type: %d, index: %d)", id, index)
	}

	return variant, nil
}

// skip consumes one encoded value of the type with the given ID.
func (m *Metadata) skip(dec *scale.Decoder, id uint32, depth int) error {

	if depth > maxDepth {
		return fmt.Errorf("value nested too deeply (type: %d)", id)
	}
	typ, err := m.Type(id)
	if err != nil {
		return err
	}

	switch typ.Kind {

	case KindComposite:
		for _, field := range typ.Fields {
			err = m.skip(dec, field.Type, depth+1)
			if err != nil {
				return err
			}
		}
		return nil

	case KindVariant:
		index, err := dec.U8()
		if err != nil {
			return err
		}
		variant, ok := typ.Variant(index)
		if !ok {
			return fmt.Errorf("unknown variant (type: %d, index: %d)", id, index)
		}
		for _, field := range variant.Fields {
			err = m.skip(dec, field.Type, depth+1)
			if err != nil {
				return err
			}
		}
		return nil

	case KindSequence:
		count, err := dec.Compact()
		if err != nil {
			return err
		}
		return m.repeat(dec, typ.Elem, count, depth)

	case KindArray:
		return m.repeat(dec, typ.Elem, uint64(typ.Len), depth)

	case KindTuple:
		for _, elem := range typ.Tuple {
			err = m.skip(dec, elem, depth+1)
			if err != nil {
				return err
			}
		}
		return nil

	case KindPrimitive:
		if typ.Primitive == PrimitiveStr {
			_, err = dec.Vec()
			return err
		}
		_, err = dec.Fixed(typ.Primitive.size())
		return err

	case KindCompact:
		_, err = dec.CompactInt()
		return err

	case KindBitSequence:
		bits, err := dec.Compact()
		if err != nil {
			return err
		}
		store, err := m.Type(typ.Elem)
		if err != nil {
			return err
		}
		size := uint64(store.Primitive.size())
		if store.Kind != KindPrimitive || size == 0 {
			return fmt.Errorf("invalid bit sequence store (type: %d)", typ.Elem)
		}
		words := (bits + 8*size - 1) / (8 * size)
		if words*size > uint64(dec.Remaining()) {
			return scale.ErrUnexpectedEnd
		}
		_, err = dec.Fixed(int(words * size))
		return err

	default:
		return fmt.Errorf("unknown type kind (%d)", typ.Kind)
	}
}

// repeat skips count values of the element type, reading fixed-width
// primitives in one go.
func (m *Metadata) repeat(dec *scale.Decoder, elem uint32, count uint64, depth int) error {

	typ, err := m.Type(elem)
	if err != nil {
		return err
	}
	if typ.Kind == KindPrimitive && typ.Primitive.size() > 0 {
		size := uint64(typ.Primitive.size())
		if count > uint64(dec.Remaining())/size {
			return scale.ErrUnexpectedEnd
		}
		_, err = dec.Fixed(int(count * size))
		return err
	}

	for i := uint64(0); i < count; i++ {
		err = m.skip(dec, elem, depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}
