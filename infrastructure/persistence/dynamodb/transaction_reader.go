package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/domain/records"
)

// TransactionReader reads transaction records from DynamoDB. The table is
// keyed by institutionId with createdAt as the sort key, so user-level
// reads fan out across the user's institutions.
type TransactionReader struct {
	client       *dynamodb.Client
	tableName    string
	institutions ports.InstitutionReader
	logger       *zap.Logger
}

// NewTransactionReader creates a new TransactionReader
func NewTransactionReader(
	client *dynamodb.Client,
	tableName string,
	institutions ports.InstitutionReader,
	logger *zap.Logger,
) ports.TransactionReader {
	return &TransactionReader{
		client:       client,
		tableName:    tableName,
		institutions: institutions,
		logger:       logger,
	}
}

// GetByInstitution returns one institution's transactions newest first,
// optionally bounded by an inclusive time window
func (r *TransactionReader) GetByInstitution(ctx context.Context, userID, institutionID string, start, end *time.Time) ([]records.Transaction, error) {
	keyCond := expression.Key("institutionId").Equal(expression.Value(institutionID))
	switch {
	case start != nil && end != nil:
		keyCond = keyCond.And(expression.Key("createdAt").Between(
			expression.Value(start.Unix()), expression.Value(end.Unix())))
	case start != nil:
		keyCond = keyCond.And(expression.Key("createdAt").GreaterThanEqual(expression.Value(start.Unix())))
	case end != nil:
		keyCond = keyCond.And(expression.Key("createdAt").LessThanEqual(expression.Value(end.Unix())))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if userID != "" {
		builder = builder.WithFilter(expression.Name("userId").Equal(expression.Value(userID)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	var transactions []records.Transaction
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to query transactions",
				zap.Error(err),
				zap.String("institutionID", institutionID),
			)
			return nil, fmt.Errorf("failed to query transactions: %w", err)
		}

		var batch []records.Transaction
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		transactions = append(transactions, batch...)
	}

	// Older items predate the transactionDate attribute
	for i := range transactions {
		if transactions[i].TransactionDate == 0 {
			transactions[i].TransactionDate = transactions[i].CreatedAt
		}
	}

	r.logger.Debug("Retrieved transactions",
		zap.String("institutionID", institutionID),
		zap.Int("count", len(transactions)),
	)

	return transactions, nil
}

// GetAllUserTransactions returns every transaction for a user across all
// their institutions, sorted by transaction date descending
func (r *TransactionReader) GetAllUserTransactions(ctx context.Context, userID string, start, end *time.Time) ([]records.Transaction, error) {
	institutions, err := r.institutions.GetInstitutions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var all []records.Transaction
	for _, inst := range institutions {
		transactions, err := r.GetByInstitution(ctx, userID, inst.InstitutionID, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, transactions...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TransactionDate > all[j].TransactionDate
	})

	r.logger.Debug("Retrieved all user transactions",
		zap.String("userID", userID),
		zap.Int("count", len(all)),
	)

	return all, nil
}
