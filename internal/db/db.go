package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

type Client struct {
	DebugMode   bool
	Client      aws.Config
	Table       string
	Region      string
	DDBEndpoint string
	DDB         *dynamodb.Client
	Logger      *zerolog.Logger
}

// EntriesItem is the single DynamoDB item holding the whole shortcut mapping.
// Entries is stored as a list so iteration order survives a round trip.
type EntriesItem struct {
	ID        string      `dynamodbav:"id"`         // Always store.RecordName (partition key)
	Entries   []EntryItem `dynamodbav:"entries"`    // Ordered keyword -> url pairs
	UpdatedAt int64       `dynamodbav:"updated_at"` // Unix timestamp of the last write
}

type EntryItem struct {
	Keyword string `dynamodbav:"keyword"`
	URL     string `dynamodbav:"url"`
}

func SetupDB(ctx context.Context, c *Client) error {
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}

	cfg, err := config.LoadDefaultConfig(ctx, func(o *config.LoadOptions) error {
		o.Region = c.Region

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	c.Client = cfg
	if c.DDBEndpoint != "" {
		// Local endpoints (dynamodb-local, localstack) accept any static credentials
		c.Client.Credentials = credentials.NewStaticCredentialsProvider("dummy1", "dummy2", "dummy3")
		c.DDB = dynamodb.NewFromConfig(c.Client, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(c.DDBEndpoint)
		})
		c.Logger.Info().Str("endpoint", c.DDBEndpoint).Msg("Using custom DynamoDB endpoint")
	} else {
		c.DDB = dynamodb.NewFromConfig(c.Client)
	}

	_, err = c.DDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.Table),
	})
	if err == nil {
		c.Logger.Debug().Str("table", c.Table).Msg("Connected to DynamoDB table")
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	c.Logger.Info().Str("table", c.Table).Msg("Table doesn't exist, creating")

	// Only the key attribute needs to be declared; entries and updated_at
	// are written as regular attributes.
	_, err = c.DDB.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.Table),
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeHash,
			},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	c.Logger.Info().Str("table", c.Table).Msg("Table created")

	return nil
}
