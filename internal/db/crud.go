package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

var _ store.Store = (*Client)(nil)

// Implements a Store interface
func (client *Client) Get(ctx context.Context) (*shortcut.Entries, error) {
	proj := expression.NamesList(expression.Name("id"), expression.Name("entries"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection expression: %w", err)
	}

	result, err := client.DDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(client.Table),
		Key:                      recordKey(),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	// Nothing persisted yet
	if result.Item == nil {
		return shortcut.NewEntries(), nil
	}

	var item EntriesItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return fromItem(item), nil
}

func (client *Client) Set(ctx context.Context, entries *shortcut.Entries) error {
	av, err := attributevalue.MarshalMap(toItem(entries, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	// PutItem replaces the whole item in one write
	_, err = client.DDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(client.Table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	if client.DebugMode {
		client.Logger.Debug().Int("entries", entries.Len()).Msg("Stored shortcut entries")
	}

	return nil
}

func recordKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: store.RecordName},
	}
}

func toItem(entries *shortcut.Entries, now time.Time) EntriesItem {
	all := entries.All()
	items := make([]EntryItem, len(all))
	for i, e := range all {
		items[i] = EntryItem{Keyword: e.Keyword, URL: e.URL}
	}
	return EntriesItem{
		ID:        store.RecordName,
		Entries:   items,
		UpdatedAt: now.Unix(),
	}
}

func fromItem(item EntriesItem) *shortcut.Entries {
	entries := shortcut.NewEntries()
	for _, e := range item.Entries {
		entries.Set(e.Keyword, e.URL)
	}
	return entries
}
