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

package stage

import (
	"github.com/optakt/ink-caller/models/ink"
)

// valid lists the stages in which each event may apply. An event arriving in
// any other stage is ignored. Contract and account changes do not apply while
// Submitting: a broadcast transaction is followed until its terminal outcome.
var valid = map[string][]Stage{
	ContractChanged{}.Name():   {EnteringContract, EnteringAccount, AwaitingAccountSelection, Signing, AwaitingBalance, DisplayingResult},
	AccountsRequested{}.Name(): {EnteringAccount, AwaitingAccountSelection, DisplayingResult},
	AccountsReceived{}.Name():  {EnteringAccount},
	AccountChosen{}.Name():     {AwaitingAccountSelection, Signing, AwaitingBalance, DisplayingResult},
	TransferRequested{}.Name(): {DisplayingResult},
	SignatureObtained{}.Name(): {Signing},
	OutcomeReceived{}.Name():   {Submitting},
	BalanceRequested{}.Name():  {DisplayingResult},
	BalanceReceived{}.Name():   {AwaitingBalance},
	ErrorOccurred{}.Name():     {EnteringContract, EnteringAccount, AwaitingAccountSelection, Signing, Submitting, AwaitingBalance, DisplayingResult},
	Reset{}.Name():             {Error},
}

// Valid reports whether the event may apply in the given stage.
func Valid(stage Stage, ev Event) bool {
	for _, s := range valid[ev.Name()] {
		if s == stage {
			return true
		}
	}
	return false
}

// Machine is the call-stage state machine. It is not safe for concurrent
// use; the controller applies one event at a time.
type Machine struct {
	state State
	tag   uint64
}

// NewMachine creates a machine in the initial stage.
func NewMachine() *Machine {
	m := Machine{
		state: State{Stage: EnteringContract},
	}
	return &m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.copy()
}

// Tag returns the tag of the latest command.
func (m *Machine) Tag() uint64 {
	return m.tag
}

// Apply applies the event and returns the commands to run. Events that are
// not valid in the current stage, or that carry the tag of an abandoned
// command, leave the machine unchanged and return applied as false.
func (m *Machine) Apply(ev Event) (applied bool, commands []Command) {

	if !Valid(m.state.Stage, ev) {
		return false, nil
	}

	switch e := ev.(type) {

	case ContractChanged:
		if e.Contract.IsZero() {
			return false, nil
		}
		commands = m.abandon()
		m.state.Contract = e.Contract
		m.state.Selected = nil
		m.state.Outcome = nil
		m.state.Balance = nil
		m.state.Supply = nil
		m.state.Stage = EnteringAccount
		if len(m.state.Accounts) > 0 {
			m.state.Stage = AwaitingAccountSelection
		}
		return true, commands

	case AccountsRequested:
		m.next()
		m.state.Selected = nil
		m.state.Stage = EnteringAccount
		return true, []Command{ListAccounts{Tag: m.tag}}

	case AccountsReceived:
		if e.Tag != m.tag {
			return false, nil
		}
		if len(e.Accounts) == 0 {
			m.fail("no accounts available")
			return true, nil
		}
		m.state.Accounts = append([]ink.Account(nil), e.Accounts...)
		m.state.Stage = AwaitingAccountSelection
		return true, nil

	case AccountChosen:
		if e.Index < 0 || e.Index >= len(m.state.Accounts) {
			return false, nil
		}
		commands = m.abandon()
		m.next()
		selected := m.state.Accounts[e.Index]
		m.state.Selected = &selected
		m.state.Balance = nil
		m.state.Supply = nil
		m.state.Stage = AwaitingBalance
		return true, append(commands, m.query())

	case TransferRequested:
		if m.state.Selected == nil || e.To.IsZero() {
			return false, nil
		}
		m.next()
		m.state.Outcome = nil
		m.state.Stage = Signing
		sign := Sign{
			Tag:      m.tag,
			Account:  *m.state.Selected,
			Contract: m.state.Contract,
			To:       e.To,
			Amount:   e.Amount,
		}
		return true, []Command{sign}

	case SignatureObtained:
		if e.Tag != m.tag {
			return false, nil
		}
		m.state.Stage = Submitting
		submit := Submit{
			Tag:       m.tag,
			Request:   e.Request,
			Signature: e.Signature,
		}
		return true, []Command{submit}

	case OutcomeReceived:
		if e.Tag != m.tag {
			return false, nil
		}
		outcome := e.Outcome
		m.state.Outcome = &outcome
		switch outcome.Kind {
		case ink.OutcomeFinalized:
			m.next()
			m.state.Stage = AwaitingBalance
			return true, []Command{m.query()}
		case ink.OutcomeRejected:
			m.next()
			m.fail(outcome.Reason)
			return true, nil
		case ink.OutcomeFinalizationFailed:
			m.next()
			m.fail("finalization failed: " + outcome.Reason)
			return true, nil
		default:
			return true, nil
		}

	case BalanceRequested:
		m.next()
		m.state.Stage = AwaitingBalance
		return true, []Command{m.query()}

	case BalanceReceived:
		if e.Tag != m.tag {
			return false, nil
		}
		balance := e.Snapshot.Balance
		supply := e.Snapshot.Supply
		m.state.Balance = &balance
		m.state.Supply = &supply
		m.state.Stage = DisplayingResult
		return true, nil

	case ErrorOccurred:
		if e.Tag != m.tag {
			return false, nil
		}
		commands = m.abandon()
		m.next()
		m.fail(e.Message)
		return true, commands

	case Reset:
		m.next()
		m.state = State{Stage: EnteringContract}
		return true, nil

	default:
		return false, nil
	}
}

// next starts a new command, which makes the results of all earlier commands
// stale.
func (m *Machine) next() {
	m.tag++
}

func (m *Machine) query() Command {
	return QueryBalance{
		Tag:      m.tag,
		Contract: m.state.Contract,
		Owner:    m.state.Selected.Address,
	}
}

// abandon discards a pending signature or submission.
func (m *Machine) abandon() []Command {
	if !m.state.Stage.busy() {
		return nil
	}
	m.next()
	return []Command{Cancel{}}
}

func (m *Machine) fail(message string) {
	m.state.Stage = Error
	m.state.Error = message
}
