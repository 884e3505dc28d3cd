// Package storage persists bank accounts in a document table, one row per
// account. It implements the account repository contract; the write side
// stays unaware of which back-end it talks to.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"banking-service/cqrs"
	"banking-service/domain"
)

const accountPartition = "account"

// Storage provides access to the accounts table.
type Storage struct {
	table *aztables.Client
}

// New creates a Storage instance from the given connection string.
func New(connStr, accountsTable string) (*Storage, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{table: svc.NewClient(accountsTable)}, nil
}

type accountEntity struct {
	aztables.Entity
	Balance      float64 `json:"Balance"`
	IsClosed     bool    `json:"IsClosed"`
	Transactions string  `json:"Transactions"`
}

func toEntity(account *domain.BankAccount) (accountEntity, error) {
	history, err := json.Marshal(account.Transactions)
	if err != nil {
		return accountEntity{}, err
	}
	return accountEntity{
		Entity:       aztables.Entity{PartitionKey: accountPartition, RowKey: account.AccountID},
		Balance:      account.Balance,
		IsClosed:     account.IsClosed,
		Transactions: string(history),
	}, nil
}

func fromEntity(ent accountEntity) (*domain.BankAccount, error) {
	var history []domain.Transaction
	if ent.Transactions != "" {
		if err := json.Unmarshal([]byte(ent.Transactions), &history); err != nil {
			return nil, err
		}
	}
	return &domain.BankAccount{
		AccountID:    ent.RowKey,
		Balance:      ent.Balance,
		IsClosed:     ent.IsClosed,
		Transactions: history,
	}, nil
}

func isStatus(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}

func (s *Storage) Create(ctx context.Context, account *domain.BankAccount) error {
	ent, err := toEntity(account)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.table.AddEntity(ctx, payload, nil)
	return err
}

// FindByID returns nil without error when the account does not exist.
func (s *Storage) FindByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	resp, err := s.table.GetEntity(ctx, accountPartition, id, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var ent accountEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	return fromEntity(ent)
}

func (s *Storage) FindAll(ctx context.Context) ([]*domain.BankAccount, error) {
	filter := "PartitionKey eq '" + accountPartition + "'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	accounts := []*domain.BankAccount{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent accountEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			account, err := fromEntity(ent)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (s *Storage) Update(ctx context.Context, account *domain.BankAccount) error {
	ent, err := toEntity(account)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil && isStatus(err, http.StatusNotFound) {
		return cqrs.ErrEntityNotFound
	}
	return err
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	_, err := s.table.DeleteEntity(ctx, accountPartition, id, nil)
	if err != nil && isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}
