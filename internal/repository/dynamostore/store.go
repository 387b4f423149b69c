package dynamostore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	emailIndex = "cliente_email-index"
	codeIndex  = "codigo_recogida-index"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Store persists apartados in a DynamoDB table keyed by id, with global
// secondary indexes on cliente_email and codigo_recogida.
type Store struct {
	ddb       API
	tableName string
}

func New(ddb API, tableName string) *Store {
	return &Store{ddb: ddb, tableName: tableName}
}

// EnsureTable creates the table and its indexes when it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return errors.Wrap(err, "describe table")
	}

	gsi := func(name, attr string) types.GlobalSecondaryIndex {
		return types.GlobalSecondaryIndex{
			IndexName:  aws.String(name),
			KeySchema:  []types.KeySchemaElement{{AttributeName: aws.String(attr), KeyType: types.KeyTypeHash}},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		}
	}
	_, err = s.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("cliente_email"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("codigo_recogida"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(emailIndex, "cliente_email"),
			gsi(codeIndex, "codigo_recogida"),
		},
	})
	if err != nil {
		return errors.Wrap(err, "create table")
	}
	return nil
}

func (s *Store) Create(ctx context.Context, a *domain.Apartado) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	av, err := attributevalue.MarshalMap(toItem(a))
	if err != nil {
		return errors.Wrap(err, "marshal apartado")
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return errors.Wrap(err, "put apartado")
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Apartado, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "get apartado")
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}
	return unmarshalApartado(out.Item)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*domain.Apartado, error) {
	list, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(codeIndex),
		KeyConditionExpression:    aws.String("#codigo = :codigo"),
		ExpressionAttributeNames:  map[string]string{"#codigo": "codigo_recogida"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":codigo": &types.AttributeValueMemberS{Value: code}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "get apartado by code")
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	sortNewestFirst(list)
	return &list[0], nil
}

func (s *Store) ListActiveByEmail(ctx context.Context, email string) ([]domain.Apartado, error) {
	list, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.tableName),
		IndexName:                aws.String(emailIndex),
		KeyConditionExpression:   aws.String("#email = :email"),
		FilterExpression:         aws.String("#estado = :estado"),
		ExpressionAttributeNames: map[string]string{"#email": "cliente_email", "#estado": "estado"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email":  &types.AttributeValueMemberS{Value: email},
			":estado": &types.AttributeValueMemberS{Value: string(domain.ApartadoStatusActive)},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list apartados by email")
	}
	sortNewestFirst(list)
	return list, nil
}

func (s *Store) ListAll(ctx context.Context) ([]domain.Apartado, error) {
	list, err := s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return nil, errors.Wrap(err, "list apartados")
	}
	sortNewestFirst(list)
	return list, nil
}

func (s *Store) ListOverdue(ctx context.Context, now time.Time) ([]domain.Apartado, error) {
	list, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(s.tableName),
		FilterExpression:         aws.String("#estado = :estado AND #exp < :now"),
		ExpressionAttributeNames: map[string]string{"#estado": "estado", "#exp": "fecha_expiracion"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":estado": &types.AttributeValueMemberS{Value: string(domain.ApartadoStatusActive)},
			":now":    &types.AttributeValueMemberS{Value: formatTime(now)},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list overdue apartados")
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	return list, nil
}

func (s *Store) Transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (*domain.Apartado, error) {
	update, condition, names, values := transitionExpression(from, to, at)

	out, err := s.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.tableName),
		Key:                                 idKey(id),
		UpdateExpression:                    aws.String(update),
		ConditionExpression:                 aws.String(condition),
		ExpressionAttributeNames:            names,
		ExpressionAttributeValues:           values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			if len(cfe.Item) == 0 {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrAlreadyProcessed
		}
		return nil, errors.Wrapf(err, "transition apartado to %s", to)
	}
	return unmarshalApartado(out.Attributes)
}

func transitionExpression(from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (string, string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{"#id": "id", "#estado": "estado", "#updated_at": "updated_at"}
	values := map[string]types.AttributeValue{
		":to": &types.AttributeValueMemberS{Value: string(to)},
		":at": &types.AttributeValueMemberS{Value: formatTime(at)},
	}

	update := "SET #estado = :to, #updated_at = :at"
	if to == domain.ApartadoStatusPickedUp {
		names["#recogida"] = "fecha_recogida"
		update += ", #recogida = :at"
	}

	condition := "attribute_exists(#id)"
	if len(from) > 0 {
		placeholders := make([]string, 0, len(from))
		for i, st := range repository.StatusStrings(from) {
			key := fmt.Sprintf(":from%d", i)
			values[key] = &types.AttributeValueMemberS{Value: st}
			placeholders = append(placeholders, key)
		}
		condition += " AND #estado IN (" + strings.Join(placeholders, ", ") + ")"
	}
	return update, condition, names, values
}

func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	list, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.tableName),
		IndexName:                aws.String(codeIndex),
		KeyConditionExpression:   aws.String("#codigo = :codigo"),
		FilterExpression:         aws.String("#estado IN (:active, :validado)"),
		ExpressionAttributeNames: map[string]string{"#codigo": "codigo_recogida", "#estado": "estado"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":codigo":   &types.AttributeValueMemberS{Value: code},
			":active":   &types.AttributeValueMemberS{Value: string(domain.ApartadoStatusActive)},
			":validado": &types.AttributeValueMemberS{Value: string(domain.ApartadoStatusValidated)},
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "check pickup code")
	}
	return len(list) > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	return err
}

func (s *Store) query(ctx context.Context, in *dynamodb.QueryInput) ([]domain.Apartado, error) {
	out := make([]domain.Apartado, 0)
	p := dynamodb.NewQueryPaginator(s.ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items, err := unmarshalApartados(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Store) scan(ctx context.Context, in *dynamodb.ScanInput) ([]domain.Apartado, error) {
	out := make([]domain.Apartado, 0)
	p := dynamodb.NewScanPaginator(s.ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items, err := unmarshalApartados(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func unmarshalApartado(av map[string]types.AttributeValue) (*domain.Apartado, error) {
	var it apartadoItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, errors.Wrap(err, "unmarshal apartado")
	}
	a := fromItem(it)
	return &a, nil
}

func unmarshalApartados(items []map[string]types.AttributeValue) ([]domain.Apartado, error) {
	var raw []apartadoItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal apartados")
	}
	out := make([]domain.Apartado, 0, len(raw))
	for _, it := range raw {
		out = append(out, fromItem(it))
	}
	return out, nil
}

func sortNewestFirst(list []domain.Apartado) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}

var _ repository.ApartadoRepository = (*Store)(nil)
