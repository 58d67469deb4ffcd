package client

import (
	"context"
	"fmt"

	"github.com/feedbackdesk/feedback-backend/models/roster"
	"github.com/feedbackdesk/feedback-backend/types"
)

// ListOp is a single index-based edit of a roster list.
type ListOp string

const (
	ListAdd    ListOp = "add"
	ListUpdate ListOp = "update"
	ListDelete ListOp = "delete"
)

// ListEdit describes one edit. Index is ignored for ListAdd and Value for ListDelete.
type ListEdit[T any] struct {
	Op    ListOp
	Index int
	Value T
}

func (e ListEdit[T]) apply(list []T) ([]T, error) {
	switch e.Op {
	case ListAdd:
		return roster.Add(list, e.Value), nil
	case ListUpdate:
		return roster.Update(list, e.Index, e.Value)
	case ListDelete:
		return roster.Delete(list, e.Index)
	default:
		return nil, fmt.Errorf("unknown list operation %q", e.Op)
	}
}

// EditIndividuals fetches the current individuals list, applies edit and
// saves the whole list back.
func (c *Client) EditIndividuals(ctx context.Context, edit ListEdit[types.Individual]) ([]types.Individual, error) {
	lists, err := c.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := edit.apply(lists.IndividualsList)
	if err != nil {
		return nil, err
	}
	return c.UpdateIndividuals(ctx, updated)
}

// EditServices is EditIndividuals for the services list.
func (c *Client) EditServices(ctx context.Context, edit ListEdit[string]) ([]string, error) {
	lists, err := c.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := edit.apply(lists.ServicesList)
	if err != nil {
		return nil, err
	}
	return c.UpdateServices(ctx, updated)
}
