package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"scholar-hand/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NewS3Client erstellt den S3-Client für den Dokument-Store.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.DocStoreS3URL,
				SigningRegion:     cfg.DocStoreS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.DocStoreS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.DocStoreS3Key, cfg.DocStoreS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// DocumentStore legt extrahierte Publikations-Volltexte als S3-Objekte ab.
type DocumentStore struct {
	Client *s3.Client
	Bucket string
}

// NewDocumentStore erstellt einen DocumentStore über dem gegebenen Bucket.
func NewDocumentStore(client *s3.Client, bucket string) *DocumentStore {
	return &DocumentStore{Client: client, Bucket: bucket}
}

// TextKey liefert den Objekt-Schlüssel für den Volltext einer Publikation.
func TextKey(publicationID uint) string {
	return fmt.Sprintf("fulltext/%d.txt", publicationID)
}

// PutText speichert den Volltext unter dem gegebenen Schlüssel.
func (d *DocumentStore) PutText(ctx context.Context, key, text string) error {
	_, err := d.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	return err
}

// FetchText holt den Volltext. Ein fehlendes Objekt ist kein Fehler,
// sondern "kein Text vorhanden".
func (d *DocumentStore) FetchText(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	out, err := d.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", false, nil
		}
		return "", false, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
