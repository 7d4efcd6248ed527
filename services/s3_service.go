package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"aura_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

// MediaPrefix is the key prefix of every chat image
const MediaPrefix = "chat-media/"

// Presigner is the subset of *s3.PresignClient the media service uses
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// MediaService hands out presigned S3 URLs for chat images. The object key
// doubles as the image reference stored on the message.
type MediaService struct {
	Presigner Presigner
	Store     Store
	Bucket    string
	Expiry    time.Duration
	now       func() time.Time
}

// NewS3Presigner builds a presign client for the region
func NewS3Presigner(ctx context.Context, region string) (*s3.PresignClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewPresignClient(s3.NewFromConfig(cfg)), nil
}

func NewMediaService(presigner Presigner, store Store, bucket string) *MediaService {
	return &MediaService{Presigner: presigner, Store: store, Bucket: bucket, Expiry: 5 * time.Minute, now: time.Now}
}

func (m *MediaService) authorize(ctx context.Context, chatID, userID string) error {
	chat, err := m.Store.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return ErrUnauthorized
	}
	return nil
}

// MediaKey builds the object key for an upload into a chat
func MediaKey(chatID, fileName string, at time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := slug.Make(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if base == "" {
		base = "image"
	}
	return MediaPrefix + chatID + "/" + at.UTC().Format("20060102150405") + "-" + base + ext
}

// chatOfKey extracts the chat id from a key built by MediaKey
func chatOfKey(key string) (string, bool) {
	if !strings.HasPrefix(key, MediaPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(key, MediaPrefix)
	chatID, _, ok := strings.Cut(rest, "/")
	return chatID, ok && chatID != ""
}

// UploadURL generates a presigned PUT for an image in the chat
func (m *MediaService) UploadURL(ctx context.Context, chatID, userID, fileName, fileType string) (string, string, error) {
	if fileName == "" || !strings.HasPrefix(fileType, "image/") {
		return "", "", fmt.Errorf("an image file name and type are required: %w", ErrInvalidPayload)
	}
	if err := m.authorize(ctx, chatID, userID); err != nil {
		return "", "", err
	}

	key := MediaKey(chatID, fileName, m.now())
	if len(key) > models.MaxImageRefLength {
		return "", "", fmt.Errorf("file name too long: %w", ErrInvalidPayload)
	}
	req, err := m.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(m.Expiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, key, nil
}

// ReadURL generates a presigned GET for an image reference the user can see
func (m *MediaService) ReadURL(ctx context.Context, userID, key string) (string, error) {
	chatID, ok := chatOfKey(key)
	if !ok {
		return "", fmt.Errorf("not a chat media key: %w", ErrInvalidPayload)
	}
	if err := m.authorize(ctx, chatID, userID); err != nil {
		return "", err
	}
	req, err := m.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(m.Expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return req.URL, nil
}
