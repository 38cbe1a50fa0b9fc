package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/domain/records"
)

// GoalReader reads goal records from DynamoDB
type GoalReader struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewGoalReader creates a new GoalReader
func NewGoalReader(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.GoalReader {
	return &GoalReader{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetGoals returns all goals for a user
func (r *GoalReader) GetGoals(ctx context.Context, userID string) ([]records.Goal, error) {
	keyCond := expression.Key("userId").Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build goal query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var goals []records.Goal
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to query goals",
				zap.Error(err),
				zap.String("userID", userID),
			)
			return nil, fmt.Errorf("failed to query goals: %w", err)
		}

		var batch []records.Goal
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal goals: %w", err)
		}
		goals = append(goals, batch...)
	}

	r.logger.Debug("Retrieved goals",
		zap.String("userID", userID),
		zap.Int("count", len(goals)),
	)

	return goals, nil
}
