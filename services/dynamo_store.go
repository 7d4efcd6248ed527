package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"aura_server/models"
	"aura_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableNames lets deployments point at prefixed or per-stage tables
type TableNames struct {
	Users    string
	Chats    string
	Messages string
}

// DefaultTableNames are the production table names
var DefaultTableNames = TableNames{
	Users:    models.UsersTable,
	Chats:    models.ChatsTable,
	Messages: models.MessagesTable,
}

// DynamoService is the DynamoDB implementation of Store
type DynamoService struct {
	Client      DynamoAPI
	Tables      TableNames
	MaxAttempts int // bound for append and batch-write retries
	now         func() time.Time
}

func NewDynamoService(client DynamoAPI, tables TableNames) *DynamoService {
	return &DynamoService{Client: client, Tables: tables, MaxAttempts: 5, now: time.Now}
}

func (ds *DynamoService) attempts() int {
	if ds.MaxAttempts <= 0 {
		return 1
	}
	return ds.MaxAttempts
}

func (ds *DynamoService) clock() time.Time {
	if ds.now == nil {
		return time.Now()
	}
	return ds.now()
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"userId": &types.AttributeValueMemberS{Value: userID}}
}

func chatKey(chatID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"chatId": &types.AttributeValueMemberS{Value: chatID}}
}

func (ds *DynamoService) CreateUser(ctx context.Context, user *models.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	utils.StripNullAttributes(item, "liked", "passed", "matched", "blocked")

	err = ds.PutItem(ctx, ds.Tables.Users, item, "attribute_not_exists(userId)")
	var condition *types.ConditionalCheckFailedException
	if errors.As(err, &condition) {
		return ErrUserExists
	}
	return err
}

func (ds *DynamoService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	item, err := ds.GetItem(ctx, ds.Tables.Users, userKey(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user %s: %w", userID, err)
	}
	user.EnsureSets()
	return &user, nil
}

func (ds *DynamoService) QueryUsers(ctx context.Context, q UserQuery) ([]models.User, error) {
	equals := map[string]string{}
	if q.Campus != "" {
		equals["campus"] = q.Campus
	}
	if q.Mode != "" {
		equals["mode"] = q.Mode
	}
	if q.Gender != "" {
		equals["gender"] = q.Gender
	}
	if q.Status != "" {
		equals["status"] = q.Status
	}

	var users []models.User
	if err := ds.ScanWithFilter(ctx, ds.Tables.Users, equals, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].EnsureSets()
	}
	// scan order depends on partition layout; give callers a stable base
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (ds *DynamoService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	item, err := ds.GetItem(ctx, ds.Tables.Chats, chatKey(chatID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
		}
		return nil, err
	}
	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse chat %s: %w", chatID, err)
	}
	if chat.UnreadBy == nil {
		chat.UnreadBy = models.IDSet{}
	}
	return &chat, nil
}

func (ds *DynamoService) ListChats(ctx context.Context, chatIDs []string) ([]models.Chat, error) {
	var chats []models.Chat
	for _, id := range chatIDs {
		chat, err := ds.GetChat(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

func (ds *DynamoService) Transact(ctx context.Context, txn *models.Txn) error {
	now := ds.clock().UnixNano()
	var items []types.TransactWriteItem

	for _, w := range txn.Users {
		update, names, values := buildUserUpdate(w, now)
		items = append(items, types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(ds.Tables.Users),
			Key:                       userKey(w.UserID),
			UpdateExpression:          aws.String(update),
			ConditionExpression:       aws.String(userCondition(w.RequireStatus)),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		}})
	}
	for _, c := range txn.Checks {
		items = append(items, types.TransactWriteItem{ConditionCheck: &types.ConditionCheck{
			TableName:                aws.String(ds.Tables.Users),
			Key:                      userKey(c.UserID),
			ConditionExpression:      aws.String("#version = :expectedVersion"),
			ExpressionAttributeNames: map[string]string{"#version": "version"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expectedVersion": utils.NumberValue(c.ExpectedVersion),
			},
		}})
	}
	if txn.Chat != nil && txn.Chat.Create != nil {
		item, err := attributevalue.MarshalMap(txn.Chat.Create)
		if err != nil {
			return fmt.Errorf("failed to marshal chat: %w", err)
		}
		utils.StripNullAttributes(item, "unreadBy")
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(ds.Tables.Chats),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(chatId)"),
		}})
	}
	if txn.Chat != nil && txn.Chat.DeleteID != "" {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName:                aws.String(ds.Tables.Chats),
			Key:                      chatKey(txn.Chat.DeleteID),
			ConditionExpression:      aws.String("#version = :expectedVersion"),
			ExpressionAttributeNames: map[string]string{"#version": "version"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expectedVersion": utils.NumberValue(txn.Chat.DeleteVersion),
			},
		}})
	}

	return ds.TransactWriteItems(ctx, items)
}

func userCondition(requireStatus string) string {
	if requireStatus == "" {
		return "#version = :expectedVersion"
	}
	return "#version = :expectedVersion AND #status = :requireStatus"
}

// buildUserUpdate renders a UserWrite as one update expression. Sets are
// changed with ADD / DELETE so concurrent writers never rewrite whole lists.
func buildUserUpdate(w *models.UserWrite, now int64) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{"#version": "version"}
	values := map[string]types.AttributeValue{
		":expectedVersion": utils.NumberValue(w.ExpectedVersion),
		":nextVersion":     utils.NumberValue(w.ExpectedVersion + 1),
		":now":             utils.NumberValue(now),
	}
	sets := []string{"#version = :nextVersion", "updatedAt = :now"}
	if w.Status != "" || w.RequireStatus != "" {
		names["#status"] = "status"
	}
	if w.Status != "" {
		values[":status"] = &types.AttributeValueMemberS{Value: w.Status}
		sets = append(sets, "#status = :status")
	}
	if w.RequireStatus != "" {
		values[":requireStatus"] = &types.AttributeValueMemberS{Value: w.RequireStatus}
	}

	var adds, deletes, removes []string
	for _, set := range models.RelationSets {
		// aliased: MATCHED is a DynamoDB reserved word
		attr := string(set)
		alias := "#" + attr
		if w.Cleared(set) {
			names[alias] = attr
			removes = append(removes, alias)
			continue
		}
		if ids := dedupe(w.Add[set]); len(ids) > 0 {
			names[alias] = attr
			values[":add_"+attr] = utils.StringSet(ids...)
			adds = append(adds, fmt.Sprintf("%s :add_%s", alias, attr))
		}
		if ids := dedupe(w.Remove[set]); len(ids) > 0 {
			names[alias] = attr
			values[":del_"+attr] = utils.StringSet(ids...)
			deletes = append(deletes, fmt.Sprintf("%s :del_%s", alias, attr))
		}
	}

	expr := "SET " + strings.Join(sets, ", ")
	if len(adds) > 0 {
		expr += " ADD " + strings.Join(adds, ", ")
	}
	if len(deletes) > 0 {
		expr += " DELETE " + strings.Join(deletes, ", ")
	}
	if len(removes) > 0 {
		expr += " REMOVE " + strings.Join(removes, ", ")
	}
	return expr, names, values
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return models.NewIDSet(ids...).Sorted()
}

func (ds *DynamoService) AppendMessage(ctx context.Context, chatID string, msg *models.Message) (*models.Message, error) {
	for attempt := 0; attempt < ds.attempts(); attempt++ {
		chat, err := ds.GetChat(ctx, chatID)
		if err != nil {
			return nil, err
		}

		stored := *msg
		stored.ChatID = chatID
		stored.Timestamp = nextTimestamp(ds.clock().UnixNano(), chat.LastMessageAt)

		item, err := attributevalue.MarshalMap(stored)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message: %w", err)
		}

		err = ds.TransactWriteItems(ctx, []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(ds.Tables.Messages),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(messageId)"),
			}},
			{Update: &types.Update{
				TableName:                aws.String(ds.Tables.Chats),
				Key:                      chatKey(chatID),
				UpdateExpression:         aws.String("SET lastMessageAt = :ts, #version = #version + :one ADD unreadBy :recipient"),
				ConditionExpression:      aws.String("attribute_exists(chatId) AND lastMessageAt = :prev"),
				ExpressionAttributeNames: map[string]string{"#version": "version"},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":ts":        utils.NumberValue(stored.Timestamp),
					":prev":      utils.NumberValue(chat.LastMessageAt),
					":one":       utils.NumberValue(1),
					":recipient": utils.StringSet(chat.Other(stored.SenderID)),
				},
			}},
		})
		if errors.Is(err, ErrTxnConflict) {
			log.Printf("🔁 Append to chat %s lost a race (attempt %d), retrying", chatID, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, ErrTxnConflict
}

func (ds *DynamoService) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	if _, err := ds.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	items, err := ds.QueryAll(ctx, ds.messagesQuery(chatID, ""))
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

func (ds *DynamoService) messagesQuery(chatID, projection string) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(ds.Tables.Messages),
		KeyConditionExpression:   aws.String("#chatId = :chatId"),
		ExpressionAttributeNames: map[string]string{"#chatId": "chatId"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":chatId": &types.AttributeValueMemberS{Value: chatID},
		},
		ScanIndexForward: aws.Bool(true), // oldest first
		ConsistentRead:   aws.Bool(true),
	}
	if projection != "" {
		input.ProjectionExpression = aws.String(projection)
		input.ExpressionAttributeNames["#ts"] = "timestamp"
	}
	return input
}

func (ds *DynamoService) MarkRead(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	attrs, err := ds.UpdateItem(ctx, ds.Tables.Chats,
		"DELETE unreadBy :reader",
		"attribute_exists(chatId)",
		chatKey(chatID),
		map[string]types.AttributeValue{":reader": utils.StringSet(userID)},
		nil,
	)
	var condition *types.ConditionalCheckFailedException
	if errors.As(err, &condition) {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var chat models.Chat
	if err := attributevalue.UnmarshalMap(attrs, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse chat %s: %w", chatID, err)
	}
	if chat.UnreadBy == nil {
		chat.UnreadBy = models.IDSet{}
	}
	return &chat, nil
}

func (ds *DynamoService) DeleteMessages(ctx context.Context, chatID string) error {
	items, err := ds.QueryAll(ctx, ds.messagesQuery(chatID, "#chatId, #ts"))
	if err != nil {
		return err
	}
	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: item}})
	}
	return ds.BatchWriteItems(ctx, ds.Tables.Messages, requests)
}
