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

// OriginKind says how an account was obtained and therefore which signer
// variant can produce its signatures.
type OriginKind uint8

// Account origins.
const (
	OriginLocal OriginKind = iota + 1
	OriginAgent
)

func (k OriginKind) String() string {
	switch k {
	case OriginLocal:
		return "local"
	case OriginAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Origin identifies the holder of an account's key material. For accounts
// held by an external agent, Agent names that agent (e.g. the wallet
// extension source).
type Origin struct {
	Kind  OriginKind `json:"kind"`
	Agent string     `json:"agent,omitempty"`
}

// LocalOrigin is the origin of accounts whose key is held in-process.
var LocalOrigin = Origin{Kind: OriginLocal}

// AgentOrigin creates the origin for accounts held by the named agent.
func AgentOrigin(agent string) Origin {
	return Origin{Kind: OriginAgent, Agent: agent}
}

func (o Origin) String() string {
	if o.Kind == OriginAgent {
		return o.Kind.String() + ":" + o.Agent
	}
	return o.Kind.String()
}

// Account is an account that can act as the sender of contract calls.
type Account struct {
	Address Address `json:"address"`
	Name    string  `json:"name"`
	Source  string  `json:"source"`
	Type    string  `json:"type"`
	Origin  Origin  `json:"origin"`
}

// SigningRequest asks a signer for a signature over an unsigned transaction.
// It is created per submission attempt and consumed by exactly one signer.
// Type is the key type declared for the signer account, if any.
type SigningRequest struct {
	Call     CallPayload
	Signer   Address
	Type     string
	Origin   Origin
	Unsigned Unsigned
}
