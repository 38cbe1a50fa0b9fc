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

// InstitutionReader reads institution records from DynamoDB. The table is
// keyed by userId so one query returns every institution a user holds.
type InstitutionReader struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInstitutionReader creates a new InstitutionReader
func NewInstitutionReader(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InstitutionReader {
	return &InstitutionReader{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetInstitutions returns all institutions for a user
func (r *InstitutionReader) GetInstitutions(ctx context.Context, userID string) ([]records.Institution, error) {
	keyCond := expression.Key("userId").Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build institution query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var institutions []records.Institution
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to query institutions",
				zap.Error(err),
				zap.String("userID", userID),
			)
			return nil, fmt.Errorf("failed to query institutions: %w", err)
		}

		var batch []records.Institution
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal institutions: %w", err)
		}
		institutions = append(institutions, batch...)
	}

	r.logger.Debug("Retrieved institutions",
		zap.String("userID", userID),
		zap.Int("count", len(institutions)),
	)

	return institutions, nil
}
