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

package ink

import (
	"encoding/hex"
	"fmt"
)

// Scheme is a signature scheme. Its value is the variant index of the
// `MultiSignature` enum on the ledger.
type Scheme uint8

// Supported signature schemes.
const (
	SchemeEd25519 Scheme = 0
	SchemeSr25519 Scheme = 1
	SchemeEcdsa   Scheme = 2
)

// Signature lengths per scheme.
const (
	Ed25519SignatureLength = 64
	Sr25519SignatureLength = 64
	EcdsaSignatureLength   = 65
)

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeSr25519:
		return "sr25519"
	case SchemeEcdsa:
		return "ecdsa"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseScheme parses the lower-case scheme name.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "ed25519":
		return SchemeEd25519, nil
	case "sr25519":
		return SchemeSr25519, nil
	case "ecdsa":
		return SchemeEcdsa, nil
	default:
		return 0, fmt.Errorf("unknown signature scheme (%s)", name)
	}
}

// Length returns the expected signature length for the scheme.
func (s Scheme) Length() int {
	switch s {
	case SchemeEd25519:
		return Ed25519SignatureLength
	case SchemeSr25519:
		return Sr25519SignatureLength
	case SchemeEcdsa:
		return EcdsaSignatureLength
	default:
		return 0
	}
}

// Signature is raw signature data tagged with its scheme.
type Signature struct {
	Scheme Scheme
	Data   []byte
}

// Multi returns the `MultiSignature` encoding: the scheme tag followed by the
// raw signature bytes.
func (s Signature) Multi() []byte {
	out := make([]byte, 0, 1+len(s.Data))
	out = append(out, byte(s.Scheme))
	out = append(out, s.Data...)
	return out
}

func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s.Multi())
}

// DecodeSignature decodes a `MultiSignature` encoded signature.
func DecodeSignature(multi []byte) (Signature, error) {
	if len(multi) == 0 {
		return Signature{}, fmt.Errorf("empty signature")
	}
	scheme := Scheme(multi[0])
	want := scheme.Length()
	if want == 0 {
		return Signature{}, fmt.Errorf("unknown signature scheme tag (%d)", multi[0])
	}
	if len(multi)-1 != want {
		return Signature{}, fmt.Errorf("invalid %s signature length (have: %d, want: %d)", scheme, len(multi)-1, want)
	}
	data := make([]byte, want)
	copy(data, multi[1:])
	sig := Signature{
		Scheme: scheme,
		Data:   data,
	}
	return sig, nil
}
