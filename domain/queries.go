package domain

import (
	"github.com/bytedance/sonic"

	"banking-service/cqrs"
)

const QueryGetAllTransactions = "GetAllTransactionsQuery"

type GetAllTransactionsPayload struct {
	AccountID string `json:"accountId"`
}

func NewGetAllTransactionsQuery(accountID string) cqrs.Query {
	payload, _ := sonic.Marshal(GetAllTransactionsPayload{AccountID: accountID})
	return cqrs.NewQuery(QueryGetAllTransactions, source, payload)
}
