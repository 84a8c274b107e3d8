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

package rest

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/stage"
)

// Controller exposes the call flow over HTTP. Every POST endpoint posts one
// event and answers with the state at the time of the request; the effect of
// the event is observed through GET /state.
type Controller struct {
	flow     Flow
	prefix   uint16
	validate *validator.Validate
}

// NewController creates a controller for the flow. Addresses are rendered
// with the given SS58 prefix.
func NewController(flow Flow, prefix uint16) *Controller {

	c := Controller{
		flow:     flow,
		prefix:   prefix,
		validate: newValidator(),
	}

	return &c
}

// Register adds the routes of the controller to the server.
func (c *Controller) Register(server *echo.Echo) {
	server.GET("/state", c.GetState)
	server.POST("/contract", c.SetContract)
	server.POST("/accounts", c.ListAccounts)
	server.POST("/accounts/select", c.SelectAccount)
	server.POST("/transfer", c.Transfer)
	server.POST("/balance", c.RefreshBalance)
	server.POST("/reset", c.Reset)
}

// GetState returns the current state of the call flow.
func (c *Controller) GetState(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, stateResponse(c.flow.State(), c.prefix))
}

// SetContract sets the token contract.
func (c *Controller) SetContract(ctx echo.Context) error {

	var req ContractRequest
	err := c.bind(ctx, &req)
	if err != nil {
		return err
	}

	contract, _, err := ink.ParseAddress(req.Contract)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.post(ctx, stage.ContractChanged{Contract: contract})
}

// ListAccounts requests the list of available accounts.
func (c *Controller) ListAccounts(ctx echo.Context) error {
	return c.post(ctx, stage.AccountsRequested{})
}

// SelectAccount selects the acting account.
func (c *Controller) SelectAccount(ctx echo.Context) error {

	var req SelectRequest
	err := c.bind(ctx, &req)
	if err != nil {
		return err
	}

	return c.post(ctx, stage.AccountChosen{Index: *req.Index})
}

// Transfer requests a token transfer from the selected account.
func (c *Controller) Transfer(ctx echo.Context) error {

	var req TransferRequest
	err := c.bind(ctx, &req)
	if err != nil {
		return err
	}

	to, _, err := ink.ParseAddress(req.To)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	amount, err := ink.ParseBalance(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !amount.Fits() {
		return echo.NewHTTPError(http.StatusBadRequest, "amount exceeds the ledger's balance width")
	}

	return c.post(ctx, stage.TransferRequested{To: to, Amount: amount})
}

// RefreshBalance requests a new balance query.
func (c *Controller) RefreshBalance(ctx echo.Context) error {
	return c.post(ctx, stage.BalanceRequested{})
}

// Reset leaves the error stage.
func (c *Controller) Reset(ctx echo.Context) error {
	return c.post(ctx, stage.Reset{})
}

func (c *Controller) bind(ctx echo.Context, req interface{}) error {
	err := ctx.Bind(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

func (c *Controller) post(ctx echo.Context, ev stage.Event) error {
	state := c.flow.State()
	if !stage.Valid(state.Stage, ev) {
		return echo.NewHTTPError(http.StatusConflict, "event "+ev.Name()+" not accepted in stage "+state.Stage.String())
	}
	c.flow.Post(ev)
	return ctx.JSON(http.StatusAccepted, stateResponse(state, c.prefix))
}
