package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Presigner signs S3 uploads
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectHeader reads object metadata, used to confirm an upload landed
type ObjectHeader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// AvatarOptions configures the avatar bucket
type AvatarOptions struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Endpoint     string
	PublicURL    string
	PresignedTTL time.Duration
}

// AvatarService hands out pre-signed upload URLs for profile pictures. The
// user's avatar only changes once the client confirms the object exists.
type AvatarService struct {
	users     UserStore
	presigner Presigner
	objects   ObjectHeader
	bucket    string
	publicURL string
	ttl       time.Duration
}

// AvatarUpload is returned to the client, which PUTs the image to UploadURL
type AvatarUpload struct {
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
	ExpiresIn int    `json:"expires_in"`
}

// NewAvatarService creates a new avatar service backed by S3
func NewAvatarService(ctx context.Context, users UserStore, opts AvatarOptions) (*AvatarService, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(opts.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return newAvatarService(users, s3.NewPresignClient(s3Client), s3Client, opts.Bucket, publicURL, opts.PresignedTTL), nil
}

func newAvatarService(users UserStore, presigner Presigner, objects ObjectHeader, bucket, publicURL string, ttl time.Duration) *AvatarService {
	return &AvatarService{
		users:     users,
		presigner: presigner,
		objects:   objects,
		bucket:    bucket,
		publicURL: publicURL,
		ttl:       ttl,
	}
}

// CreateUpload presigns an upload for a new avatar. The profile is left
// unchanged until ConfirmUpload.
func (s *AvatarService) CreateUpload(ctx context.Context, username string, req AvatarUploadRequest) (*AvatarUpload, error) {
	ext, ok := avatarExtensions[req.ContentType]
	if !ok {
		return nil, apperror.BadRequest("Unsupported content type: %s", req.ContentType)
	}
	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}

	// avatars/{username}/{uuid}.{ext}
	key := fmt.Sprintf("%s%s.%s", avatarPrefix(username), uuid.New().String(), ext)

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.ttl
	})
	if err != nil {
		return nil, apperror.Wrap(err, "failed to generate pre-signed URL")
	}

	return &AvatarUpload{
		UploadURL: request.URL,
		AvatarURL: s.publicURL + "/" + key,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

// ConfirmUpload points the user's avatar at an uploaded object once it exists
// in the bucket
func (s *AvatarService) ConfirmUpload(ctx context.Context, username string, req AvatarConfirmRequest) (string, error) {
	key, ok := strings.CutPrefix(req.AvatarURL, s.publicURL+"/")
	name, inPrefix := strings.CutPrefix(key, avatarPrefix(username))
	if !ok || !inPrefix || name == "" || strings.Contains(name, "/") {
		return "", apperror.BadRequest("Avatar URL is not an upload for %s", username)
	}
	if err := ensureUser(ctx, s.users, username); err != nil {
		return "", err
	}

	_, err := s.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return "", apperror.BadRequest("No uploaded avatar at %s", req.AvatarURL)
		}
		return "", apperror.Wrap(err, "failed to check avatar upload")
	}

	_, err = s.users.Update(ctx, username, models.UserUpdate{Avatar: &req.AvatarURL})
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperror.NotFound("No user: %s", username)
	}
	if err != nil {
		return "", apperror.Wrap(err, "failed to update avatar")
	}
	return req.AvatarURL, nil
}

func avatarPrefix(username string) string {
	return "avatars/" + username + "/"
}
