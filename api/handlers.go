// Package api exposes the command and query dispatchers over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"banking-service/cqrs"
	"banking-service/domain"
)

// CommandDispatcher is the write-side dispatch entry point the API needs.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd cqrs.Command) error
}

// QueryDispatcher is the read-side counterpart.
type QueryDispatcher interface {
	Dispatch(ctx context.Context, q cqrs.Query) (any, error)
}

// Authenticator validates the Authorization header of a request.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Register wires the account endpoints onto the Echo instance. auth may be
// nil, in which case requests are not authenticated.
func Register(e *echo.Echo, cmds CommandDispatcher, queries QueryDispatcher, auth Authenticator) {
	g := e.Group("")
	if auth != nil {
		g.Use(authMiddleware(auth))
	}
	g.POST("/account/open", openAccount(cmds))
	g.POST("/account/close", closeAccount(cmds))
	g.POST("/account/withdraw", withdrawFunds(cmds))
	g.POST("/account/deposit", depositFunds(cmds))
	g.POST("/account/transfer", transferFunds(cmds))
	g.GET("/account/:accountId/transactions", accountTransactions(queries))
}

func authMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody(err.Error()))
			}
			return next(c)
		}
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func messageBody(msg string) map[string]string {
	return map[string]string{"message": msg}
}

type openAccountRequest struct {
	AccountID      string   `json:"accountId"`
	InitialDeposit *float64 `json:"initialDeposit"`
}

func openAccount(cmds CommandDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req openAccountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		}
		if req.AccountID == "" || req.InitialDeposit == nil {
			return c.JSON(http.StatusBadRequest, errorBody("accountId and initialDeposit are required"))
		}
		if err := cmds.Dispatch(c.Request().Context(), domain.NewOpenAccountCommand(req.AccountID, *req.InitialDeposit)); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, messageBody("Account opened successfully"))
	}
}

type closeAccountRequest struct {
	AccountID string `json:"accountId"`
}

func closeAccount(cmds CommandDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req closeAccountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		}
		if req.AccountID == "" {
			return c.JSON(http.StatusBadRequest, errorBody("accountId is required"))
		}
		if err := cmds.Dispatch(c.Request().Context(), domain.NewCloseAccountCommand(req.AccountID)); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, messageBody("Account closed successfully"))
	}
}

type amountRequest struct {
	AccountID string   `json:"accountId"`
	Amount    *float64 `json:"amount"`
}

func withdrawFunds(cmds CommandDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req amountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		}
		if req.AccountID == "" || req.Amount == nil {
			return c.JSON(http.StatusBadRequest, errorBody("accountId and amount are required"))
		}
		if err := cmds.Dispatch(c.Request().Context(), domain.NewWithdrawFundsCommand(req.AccountID, *req.Amount)); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, messageBody("Withdrawal successful"))
	}
}

func depositFunds(cmds CommandDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req amountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		}
		if req.AccountID == "" || req.Amount == nil {
			return c.JSON(http.StatusBadRequest, errorBody("accountId and amount are required"))
		}
		if err := cmds.Dispatch(c.Request().Context(), domain.NewDepositFundsCommand(req.AccountID, *req.Amount)); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, messageBody("Deposit successful"))
	}
}

type transferRequest struct {
	FromAccountID string   `json:"fromAccountId"`
	ToAccountID   string   `json:"toAccountId"`
	Amount        *float64 `json:"amount"`
}

func transferFunds(cmds CommandDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req transferRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		}
		if req.FromAccountID == "" || req.ToAccountID == "" || req.Amount == nil {
			return c.JSON(http.StatusBadRequest, errorBody("fromAccountId, toAccountId and amount are required"))
		}
		if err := cmds.Dispatch(c.Request().Context(), domain.NewTransferFundsCommand(req.FromAccountID, req.ToAccountID, *req.Amount)); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, messageBody("Transfer successful"))
	}
}

func accountTransactions(queries QueryDispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID := c.Param("accountId")
		result, err := queries.Dispatch(c.Request().Context(), domain.NewGetAllTransactionsQuery(accountID))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusOK, map[string]any{
			"accountId":    accountID,
			"transactions": result,
		})
	}
}
